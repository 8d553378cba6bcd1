package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// MaxDatagramSize is the largest UDP payload deliverable over IPv4.
const MaxDatagramSize = 65507

// Payload is a request rendered for one protocol. Only the fields relevant
// to that protocol are set.
type Payload struct {
	// Body is the datagram, HTTP body or published message.
	Body []byte
	// Method and Target locate the HTTP resource, e.g. PUT /v1/suites/s/t/status.
	Method string
	Target string
	Header http.Header
	// Command is the ecflow_client command line as logged; Args is what runs.
	Command string
	Args    []string
}

type route struct {
	kind     request.Kind
	protocol string
}

type formatter func(cfg config.ClientCfg, req request.Request) (Payload, error)

// formatters is the single (request kind × protocol) table. A missing cell
// means the protocol cannot carry that kind of request.
var formatters = map[route]formatter{
	{request.KindUpdateNodeAttribute, config.ProtocolUDP}:   formatDatagram,
	{request.KindUpdateNodeAttribute, config.ProtocolTCP}:   formatCommand,
	{request.KindUpdateNodeAttribute, config.ProtocolHTTP}:  formatAttributePut,
	{request.KindUpdateNodeStatus, config.ProtocolHTTP}:     formatStatusPut,
	{request.KindUpdateNodeAttribute, config.ProtocolRedis}: formatAttributeEnvelope,
	{request.KindUpdateNodeStatus, config.ProtocolRedis}:    formatStatusEnvelope,
}

// Format renders req for the protocol of cfg.
func Format(cfg config.ClientCfg, req request.Request) (Payload, error) {
	f, ok := formatters[route{req.Kind(), cfg.Protocol}]
	if !ok {
		return Payload{}, types.Errorf(types.ErrNotImplemented,
			"%s not supported over %s", req.Kind(), cfg.Protocol)
	}
	return f(cfg, req)
}

// =============================================================================
// UDP / Redis envelope
// =============================================================================

type envelopeHeader struct {
	TaskRID      string      `json:"task_rid"`
	TaskPassword string      `json:"task_password"`
	TaskTryNo    json.Number `json:"task_try_no"`
}

type attributePayload struct {
	Command string `json:"command"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Value   string `json:"value"`
}

type statusPayload struct {
	Command        string  `json:"command"`
	Path           string  `json:"path"`
	Action         string  `json:"action"`
	AbortWhy       *string `json:"abort_why,omitempty"`
	WaitExpression *string `json:"wait_expression,omitempty"`
}

type envelope struct {
	Method  string         `json:"method"`
	Version string         `json:"version"`
	Header  envelopeHeader `json:"header"`
	Payload any            `json:"payload"`
}

func newEnvelope(cfg config.ClientCfg, id request.TaskIdentity, payload any) (envelope, error) {
	if _, err := strconv.ParseInt(id.TryNo, 10, 64); err != nil {
		return envelope{}, types.Errorf(types.ErrBadValue,
			"ECF_TRYNO must be an integer, got %q", id.TryNo)
	}
	return envelope{
		Method:  "put",
		Version: cfg.Version,
		Header: envelopeHeader{
			TaskRID:      id.RID,
			TaskPassword: id.Password,
			TaskTryNo:    json.Number(id.TryNo),
		},
		Payload: payload,
	}, nil
}

func formatAttributeEnvelope(cfg config.ClientCfg, req request.Request) (Payload, error) {
	id, err := req.Environment().Identity()
	if err != nil {
		return Payload{}, err
	}
	p := attributePayload{Path: id.Name}
	if p.Command, err = req.Option(request.OptCommand); err != nil {
		return Payload{}, err
	}
	if p.Name, err = req.Option(request.OptName); err != nil {
		return Payload{}, err
	}
	if p.Value, err = req.Option(request.OptValue); err != nil {
		return Payload{}, err
	}

	env, err := newEnvelope(cfg, id, p)
	if err != nil {
		return Payload{}, err
	}
	body, err := encodeJSON(env)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Body: body}, nil
}

func formatStatusEnvelope(cfg config.ClientCfg, req request.Request) (Payload, error) {
	id, err := req.Environment().Identity()
	if err != nil {
		return Payload{}, err
	}
	action, err := req.Option(request.OptAction)
	if err != nil {
		return Payload{}, err
	}
	p := statusPayload{Command: "status", Path: id.Name, Action: action}
	p.AbortWhy, p.WaitExpression = statusDetails(req, action)

	env, err := newEnvelope(cfg, id, p)
	if err != nil {
		return Payload{}, err
	}
	body, err := encodeJSON(env)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Body: body}, nil
}

// formatDatagram renders the envelope followed by a NUL terminator and
// rejects packets that cannot fit one UDP datagram.
func formatDatagram(cfg config.ClientCfg, req request.Request) (Payload, error) {
	p, err := formatAttributeEnvelope(cfg, req)
	if err != nil {
		return Payload{}, err
	}
	if size := len(p.Body) + 1; size > MaxDatagramSize {
		return Payload{}, types.Errorf(types.ErrInvalidRequest,
			"UDP packet of %d bytes exceeds the %d byte limit", size, MaxDatagramSize)
	}
	p.Body = append(p.Body, 0)
	return p, nil
}

// =============================================================================
// ecflow_client command line
// =============================================================================

func formatCommand(cfg config.ClientCfg, req request.Request) (Payload, error) {
	command, err := req.Option(request.OptCommand)
	if err != nil {
		return Payload{}, err
	}
	name, err := req.Option(request.OptName)
	if err != nil {
		return Payload{}, err
	}

	var values []string
	switch command {
	case request.CommandQueue:
		action, err := req.Option(request.OptQueueAction)
		if err != nil {
			return Payload{}, err
		}
		values = append(values, action)
		for _, opt := range []string{request.OptQueueStep, request.OptQueuePath} {
			if v, ok := req.Options().Lookup(opt); ok {
				values = append(values, v.Value)
			}
		}
	case request.CommandEvent:
		raw, err := req.Option(request.OptValue)
		if err != nil {
			return Payload{}, err
		}
		value, err := eventState(raw)
		if err != nil {
			return Payload{}, err
		}
		values = append(values, value)
	default:
		value, err := req.Option(request.OptValue)
		if err != nil {
			return Payload{}, err
		}
		values = append(values, value)
	}

	executable := cfg.Executable
	if executable == "" {
		executable = config.DefaultExecutable
	}

	flag := fmt.Sprintf("--%s=%s", command, name)

	var line strings.Builder
	line.WriteString(executable + " " + flag)
	for _, v := range values {
		line.WriteString(` "` + v + `"`)
	}
	line.WriteString(" &")

	return Payload{
		Command: line.String(),
		Args:    append([]string{flag}, values...),
	}, nil
}

// eventState maps an event value onto ecflow_client's set/clear.
func eventState(value string) (string, error) {
	switch strings.ToLower(value) {
	case "1", "true", "set":
		return "set", nil
	case "0", "false", "clear":
		return "clear", nil
	default:
		return "", types.Errorf(types.ErrBadValue, "invalid event value %q, expected set or clear", value)
	}
}

// =============================================================================
// HTTP REST
// =============================================================================

type attributeBody struct {
	TaskName     string  `json:"ECF_NAME"`
	TaskPassword string  `json:"ECF_PASS"`
	TaskRID      string  `json:"ECF_RID"`
	TaskTryNo    string  `json:"ECF_TRYNO"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	QueueAction  *string `json:"queue_action,omitempty"`
	QueueStep    *string `json:"queue_step,omitempty"`
	QueuePath    *string `json:"queue_path,omitempty"`
	Value        *string `json:"value,omitempty"`
}

type statusBody struct {
	TaskName       string  `json:"ECF_NAME"`
	TaskPassword   string  `json:"ECF_PASS"`
	TaskRID        string  `json:"ECF_RID"`
	TaskTryNo      string  `json:"ECF_TRYNO"`
	Action         string  `json:"action"`
	AbortWhy       *string `json:"abort_why,omitempty"`
	WaitExpression *string `json:"wait_expression,omitempty"`
}

func formatAttributePut(_ config.ClientCfg, req request.Request) (Payload, error) {
	id, err := req.Environment().Identity()
	if err != nil {
		return Payload{}, err
	}
	body := attributeBody{
		TaskName:     id.Name,
		TaskPassword: id.Password,
		TaskRID:      id.RID,
		TaskTryNo:    id.TryNo,
		QueueAction:  optional(req, request.OptQueueAction),
		QueueStep:    optional(req, request.OptQueueStep),
		QueuePath:    optional(req, request.OptQueuePath),
		Value:        optional(req, request.OptValue),
	}
	if body.Type, err = req.Option(request.OptCommand); err != nil {
		return Payload{}, err
	}
	if body.Name, err = req.Option(request.OptName); err != nil {
		return Payload{}, err
	}
	return jsonPut("/v1/suites"+id.Name+"/attributes", body)
}

func formatStatusPut(_ config.ClientCfg, req request.Request) (Payload, error) {
	id, err := req.Environment().Identity()
	if err != nil {
		return Payload{}, err
	}
	action, err := req.Option(request.OptAction)
	if err != nil {
		return Payload{}, err
	}
	body := statusBody{
		TaskName:     id.Name,
		TaskPassword: id.Password,
		TaskRID:      id.RID,
		TaskTryNo:    id.TryNo,
		Action:       action,
	}
	body.AbortWhy, body.WaitExpression = statusDetails(req, action)
	return jsonPut("/v1/suites"+id.Name+"/status", body)
}

func jsonPut(target string, body any) (Payload, error) {
	data, err := encodeJSON(body)
	if err != nil {
		return Payload{}, err
	}
	header := make(http.Header)
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/json")
	header.Set("charsets", "utf-8")
	return Payload{
		Body:   data,
		Method: http.MethodPut,
		Target: target,
		Header: header,
	}, nil
}

// =============================================================================
// helpers
// =============================================================================

// statusDetails returns abort_why for abort and wait_expression for wait.
func statusDetails(req request.Request, action string) (abortWhy, waitExpression *string) {
	switch action {
	case request.ActionAbort:
		v := req.OptionOr(request.OptAbortReason, "")
		return &v, nil
	case request.ActionWait:
		v := req.OptionOr(request.OptWaitExpression, "")
		return nil, &v
	}
	return nil, nil
}

func optional(req request.Request, name string) *string {
	if opt, ok := req.Options().Lookup(name); ok {
		v := opt.Value
		return &v
	}
	return nil
}

// encodeJSON marshals v on a single line without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "unable to encode request").WithCause(err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
