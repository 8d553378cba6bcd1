package request

import "fmt"

// Response statuses.
const (
	StatusOK      = "OK"
	StatusFailed  = "FAILED"
	StatusSpawned = "SPAWNED"
)

// Response reports the outcome of one dispatch to one endpoint.
type Response struct {
	// Endpoint identifies the client configuration, e.g. "library/udp@host:8080".
	Endpoint string `json:"endpoint"`
	Protocol string `json:"protocol"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	// ExitCode is the ecflow_client exit status; -1 when not observed.
	ExitCode   int `json:"exit_code,omitempty"`
	HTTPStatus int `json:"http_status,omitempty"`
	// Bytes is the size of the payload put on the wire.
	Bytes int `json:"bytes,omitempty"`
}

// OK reports whether the dispatch succeeded.
func (r Response) OK() bool {
	return r.Status == StatusOK || r.Status == StatusSpawned
}

func (r Response) String() string {
	if r.Detail == "" {
		return fmt.Sprintf("{%s %s}", r.Endpoint, r.Status)
	}
	return fmt.Sprintf("{%s %s: %s}", r.Endpoint, r.Status, r.Detail)
}
