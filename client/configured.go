package client

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/internal/tokens"
	"github.com/ecmwf/ecflow-light/request"
)

// ConfiguredClient is the CompositeClient described by a task environment.
//
// The configuration is resolved on the first request and the outcome,
// success or failure, is kept for the lifetime of the client. Calls are
// serialised: at most one dispatch sequence is in flight at any time.
type ConfiguredClient struct {
	mu   sync.Mutex
	env  request.Environment
	opts options

	resolved      bool
	configuration *config.Configuration
	composite     *CompositeClient
	err           error
}

// NewConfigured creates a client for the task described by env. Nothing
// is read until the first request.
func NewConfigured(env request.Environment, opts ...Option) *ConfiguredClient {
	o := newOptions(opts)
	if o.tokens == nil {
		o.tokens = tokens.NewStore(tokens.DefaultPath(env), o.logger)
	}
	return &ConfiguredClient{env: env, opts: o}
}

// Environment returns the environment requests are built from.
func (c *ConfiguredClient) Environment() request.Environment { return c.env }

// Configuration resolves the configuration if needed and returns it.
func (c *ConfiguredClient) Configuration() (*config.Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolve()
	return c.configuration, c.err
}

// resolve must be called with mu held.
func (c *ConfiguredClient) resolve() {
	if c.resolved {
		return
	}
	c.resolved = true

	logger := c.opts.logger
	cfg, err := config.Resolve(c.env, logger)
	if err != nil {
		logger.Error("unable to resolve configuration", zap.Error(err))
		if c.opts.metrics != nil {
			c.opts.metrics.RecordConfigurationError()
		}
		c.err = err
		return
	}

	composite := NewCompositeClient(logger)
	for _, clientCfg := range cfg.Clients {
		e, err := buildEndpoint(clientCfg, c.opts)
		if err != nil {
			logger.Error("unable to create endpoint, ignoring",
				zap.Stringer("client", clientCfg), zap.Error(err))
			continue
		}
		composite.Add(e)
	}
	if c.opts.metrics != nil {
		c.opts.metrics.RecordEndpoints(composite.Len())
	}
	logger.Debug("configuration resolved",
		zap.String("source", cfg.Source),
		zap.Bool("skip", cfg.Skip),
		zap.Int("endpoints", composite.Len()))

	c.configuration = cfg
	c.composite = composite
}

// Process sends req to every configured endpoint.
func (c *ConfiguredClient) Process(ctx context.Context, req request.Request) (CompositeResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resolve()
	if c.err != nil {
		return CompositeResponse{}, c.err
	}
	return c.composite.Process(ctx, req)
}

// UpdateMeter sets meter name to value.
func (c *ConfiguredClient) UpdateMeter(ctx context.Context, name string, value int) (CompositeResponse, error) {
	return c.Process(ctx, request.MeterUpdate(c.env, name, value))
}

// UpdateLabel sets label name to value.
func (c *ConfiguredClient) UpdateLabel(ctx context.Context, name, value string) (CompositeResponse, error) {
	return c.Process(ctx, request.LabelUpdate(c.env, name, value))
}

// UpdateEvent sets or clears event name.
func (c *ConfiguredClient) UpdateEvent(ctx context.Context, name string, value bool) (CompositeResponse, error) {
	return c.Process(ctx, request.EventUpdate(c.env, name, value))
}

// UpdateQueue applies action to queue name.
func (c *ConfiguredClient) UpdateQueue(ctx context.Context, name, action, step, path string) (CompositeResponse, error) {
	return c.Process(ctx, request.QueueUpdate(c.env, name, action, step, path))
}

// Init signals that the task has started.
func (c *ConfiguredClient) Init(ctx context.Context) (CompositeResponse, error) {
	return c.Process(ctx, request.InitStatus(c.env))
}

// Complete signals that the task has finished.
func (c *ConfiguredClient) Complete(ctx context.Context) (CompositeResponse, error) {
	return c.Process(ctx, request.CompleteStatus(c.env))
}

// Abort signals that the task has failed for reason.
func (c *ConfiguredClient) Abort(ctx context.Context, reason string) (CompositeResponse, error) {
	return c.Process(ctx, request.AbortStatus(c.env, reason))
}

// Wait asks the server to hold the task until expression holds.
func (c *ConfiguredClient) Wait(ctx context.Context, expression string) (CompositeResponse, error) {
	return c.Process(ctx, request.WaitStatus(c.env, expression))
}

// Close releases the endpoints. The client must not be used afterwards.
func (c *ConfiguredClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.composite == nil {
		return nil
	}
	return c.composite.Close()
}

// String describes the client for logs.
func (c *ConfiguredClient) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resolved {
		return "ConfiguredClient{unresolved}"
	}
	if c.err != nil {
		return "ConfiguredClient{error}"
	}
	return "ConfiguredClient{endpoints=" + strconv.Itoa(c.composite.Len()) + "}"
}
