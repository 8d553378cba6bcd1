// Package request defines the notification model of ecflow-light.
//
// A Request pairs a snapshot of the task Environment (ECF_NAME, ECF_PASS,
// ECF_RID, ECF_TRYNO …) with the Options describing one change to the task's
// node. The two variants, KindUpdateNodeAttribute and KindUpdateNodeStatus,
// are distinguished by Kind; the dispatch package turns a (Kind, protocol)
// pair into a wire format.
//
// Environment and Options are value types: With returns a modified copy and
// never mutates the receiver, so a Request can be shared freely between
// goroutines.
package request
