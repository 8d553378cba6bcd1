package client

import (
	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/dispatch"
	"github.com/ecmwf/ecflow-light/internal/metrics"
)

// DispatcherFactory builds the dispatcher serving one endpoint.
type DispatcherFactory func(cfg config.ClientCfg, opts ...dispatch.Option) (dispatch.Dispatcher, error)

// Option configures endpoints and clients.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	metrics      *metrics.Collector
	factory      DispatcherFactory
	dispatchOpts []dispatch.Option
	tokens       dispatch.TokenSource
}

func newOptions(opts []Option) options {
	o := options{
		logger:  zap.NewNop(),
		factory: dispatch.New,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records every dispatch on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) { o.metrics = collector }
}

// WithDispatcherFactory replaces dispatch.New.
func WithDispatcherFactory(factory DispatcherFactory) Option {
	return func(o *options) { o.factory = factory }
}

// WithDispatchOptions passes opts to every dispatcher built.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(o *options) { o.dispatchOpts = append(o.dispatchOpts, opts...) }
}

// WithTokens sets the bearer token source. ConfiguredClient otherwise
// reads $HOME/.ecflowrc/ssl/api-tokens.json.
func WithTokens(src dispatch.TokenSource) Option {
	return func(o *options) { o.tokens = src }
}
