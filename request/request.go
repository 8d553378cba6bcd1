package request

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Kind tags the variant carried by a Request.
type Kind int

const (
	// KindUpdateNodeAttribute changes a meter, label, event or queue of a node.
	KindUpdateNodeAttribute Kind = iota + 1
	// KindUpdateNodeStatus changes the status of a node (init, complete, abort, wait).
	KindUpdateNodeStatus
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindUpdateNodeAttribute:
		return "UpdateNodeAttribute"
	case KindUpdateNodeStatus:
		return "UpdateNodeStatus"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Attribute commands understood by ecFlow.
const (
	CommandMeter = "meter"
	CommandLabel = "label"
	CommandEvent = "event"
	CommandQueue = "queue"
)

// Status actions understood by ecFlow.
const (
	ActionInit     = "init"
	ActionComplete = "complete"
	ActionAbort    = "abort"
	ActionWait     = "wait"
)

// Request is an immutable notification addressed to the task's node.
type Request struct {
	id   uuid.UUID
	kind Kind
	env  Environment
	opts Options
}

// New creates a Request of the given kind.
func New(kind Kind, env Environment, opts Options) Request {
	return Request{id: uuid.New(), kind: kind, env: env, opts: opts}
}

// NewUpdateNodeAttribute creates an attribute update request.
func NewUpdateNodeAttribute(env Environment, opts Options) Request {
	return New(KindUpdateNodeAttribute, env, opts)
}

// NewUpdateNodeStatus creates a status update request.
func NewUpdateNodeStatus(env Environment, opts Options) Request {
	return New(KindUpdateNodeStatus, env, opts)
}

// MeterUpdate sets meter name to value.
func MeterUpdate(env Environment, name string, value int) Request {
	return NewUpdateNodeAttribute(env, NewOptions().
		With(OptCommand, CommandMeter).
		With(OptName, name).
		With(OptValue, strconv.Itoa(value)))
}

// LabelUpdate sets label name to value.
func LabelUpdate(env Environment, name, value string) Request {
	return NewUpdateNodeAttribute(env, NewOptions().
		With(OptCommand, CommandLabel).
		With(OptName, name).
		With(OptValue, value))
}

// EventUpdate sets ("1") or clears ("0") event name.
func EventUpdate(env Environment, name string, value bool) Request {
	v := "0"
	if value {
		v = "1"
	}
	return NewUpdateNodeAttribute(env, NewOptions().
		With(OptCommand, CommandEvent).
		With(OptName, name).
		With(OptValue, v))
}

// QueueUpdate applies action to queue name. Empty step and path are omitted.
func QueueUpdate(env Environment, name, action, step, path string) Request {
	opts := NewOptions().
		With(OptCommand, CommandQueue).
		With(OptName, name).
		With(OptQueueAction, action)
	if step != "" {
		opts = opts.With(OptQueueStep, step)
	}
	if path != "" {
		opts = opts.With(OptQueuePath, path)
	}
	return NewUpdateNodeAttribute(env, opts)
}

// InitStatus marks the task as started.
func InitStatus(env Environment) Request {
	return NewUpdateNodeStatus(env, NewOptions().With(OptAction, ActionInit))
}

// CompleteStatus marks the task as complete.
func CompleteStatus(env Environment) Request {
	return NewUpdateNodeStatus(env, NewOptions().With(OptAction, ActionComplete))
}

// AbortStatus marks the task as aborted for reason.
func AbortStatus(env Environment, reason string) Request {
	return NewUpdateNodeStatus(env, NewOptions().
		With(OptAction, ActionAbort).
		With(OptAbortReason, reason))
}

// WaitStatus blocks the task until expression holds.
func WaitStatus(env Environment, expression string) Request {
	return NewUpdateNodeStatus(env, NewOptions().
		With(OptAction, ActionWait).
		With(OptWaitExpression, expression))
}

// ID returns the correlation id assigned at construction.
func (r Request) ID() uuid.UUID { return r.id }

// Kind returns the request variant.
func (r Request) Kind() Kind { return r.kind }

// Environment returns the task environment the request was built from.
func (r Request) Environment() Environment { return r.env }

// Options returns the request parameters.
func (r Request) Options() Options { return r.opts }

// Env returns the value of a required environment variable.
func (r Request) Env(name string) (string, error) {
	v, err := r.env.Get(name)
	if err != nil {
		return "", err
	}
	return v.Value, nil
}

// Option returns the value of a required option.
func (r Request) Option(name string) (string, error) {
	opt, err := r.opts.Get(name)
	if err != nil {
		return "", err
	}
	return opt.Value, nil
}

// OptionOr returns the value of an option, or fallback when absent.
func (r Request) OptionOr(name, fallback string) string {
	if opt, ok := r.opts.Lookup(name); ok {
		return opt.Value
	}
	return fallback
}

// Description renders a human-readable summary used in logs only.
func (r Request) Description() string {
	node := "?"
	if v, ok := r.env.Lookup(EnvTaskName); ok {
		node = v.Value
	}
	switch r.kind {
	case KindUpdateNodeAttribute:
		return fmt.Sprintf("UpdateNodeAttribute: name=%s, value=%s, at node=%s",
			r.OptionOr(OptName, "?"), r.OptionOr(OptValue, "?"), node)
	case KindUpdateNodeStatus:
		return fmt.Sprintf("UpdateNodeStatus: new_status=%s, at node=%s",
			r.OptionOr(OptAction, "?"), node)
	default:
		return fmt.Sprintf("%s: at node=%s", r.kind, node)
	}
}
