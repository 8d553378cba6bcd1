// Package dispatch turns requests into protocol payloads and delivers them.
//
// Format looks up the (request kind, protocol) pair in a single table; a
// missing entry yields NOT_IMPLEMENTED, e.g. status updates over UDP. Each
// Dispatcher then performs exactly one delivery attempt:
//
//   - UDPDispatcher: one JSON datagram, no acknowledgement
//   - HTTPDispatcher: PUT to the REST API, optional bearer token
//   - CLIDispatcher: runs ecflow_client and reports its exit code
//   - RedisDispatcher: publishes the JSON envelope on a channel
//   - PhonyDispatcher: does nothing
package dispatch
