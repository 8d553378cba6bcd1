package request

import (
	"maps"

	"github.com/ecmwf/ecflow-light/types"
)

// Well-known option names.
const (
	OptCommand        = "command"
	OptName           = "name"
	OptValue          = "value"
	OptAction         = "action"
	OptAbortReason    = "abort_why"
	OptWaitExpression = "wait_expression"
	OptQueueAction    = "queue_action"
	OptQueueStep      = "queue_step"
	OptQueuePath      = "queue_path"
)

// Option is one named request parameter.
type Option struct {
	Name  string
	Value string
}

// Options is an immutable name → Option map built fluently with With.
type Options struct {
	opts map[string]Option
}

// NewOptions returns an empty Options.
func NewOptions() Options {
	return Options{}
}

// With returns a copy of o with name set to value.
func (o Options) With(name, value string) Options {
	opts := make(map[string]Option, len(o.opts)+1)
	maps.Copy(opts, o.opts)
	opts[name] = Option{Name: name, Value: value}
	return Options{opts: opts}
}

// Get returns the named option or an OPTION_NOT_FOUND error.
func (o Options) Get(name string) (Option, error) {
	if opt, ok := o.opts[name]; ok {
		return opt, nil
	}
	return Option{}, types.Errorf(types.ErrOptionNotFound, "option %q not found", name)
}

// Lookup returns the named option, if present.
func (o Options) Lookup(name string) (Option, bool) {
	opt, ok := o.opts[name]
	return opt, ok
}

// Len returns the number of options held.
func (o Options) Len() int {
	return len(o.opts)
}
