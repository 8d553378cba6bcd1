package client

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/dispatch"
	"github.com/ecmwf/ecflow-light/internal/metrics"
	"github.com/ecmwf/ecflow-light/internal/telemetry"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// Endpoint is one configured destination for requests.
type Endpoint struct {
	cfg        config.ClientCfg
	dispatcher dispatch.Dispatcher
	limiter    *rate.Limiter
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// NewEndpoint builds the dispatcher for cfg and wraps it.
func NewEndpoint(cfg config.ClientCfg, opts ...Option) (*Endpoint, error) {
	return buildEndpoint(cfg, newOptions(opts))
}

func buildEndpoint(cfg config.ClientCfg, o options) (*Endpoint, error) {
	dopts := append([]dispatch.Option{dispatch.WithLogger(o.logger)}, o.dispatchOpts...)
	if o.tokens != nil {
		dopts = append(dopts, dispatch.WithTokens(o.tokens))
	}
	d, err := o.factory(cfg, dopts...)
	if err != nil {
		return nil, err
	}
	return newEndpoint(cfg, d, o), nil
}

// WrapDispatcher wraps an existing dispatcher as the endpoint for cfg.
func WrapDispatcher(cfg config.ClientCfg, d dispatch.Dispatcher, opts ...Option) *Endpoint {
	return newEndpoint(cfg, d, newOptions(opts))
}

func newEndpoint(cfg config.ClientCfg, d dispatch.Dispatcher, o options) *Endpoint {
	e := &Endpoint{
		cfg:        cfg,
		dispatcher: d,
		metrics:    o.metrics,
		logger:     o.logger.With(zap.String("endpoint", cfg.Name())),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return e
}

// Config returns the endpoint configuration.
func (e *Endpoint) Config() config.ClientCfg { return e.cfg }

// Name identifies the endpoint in logs and results.
func (e *Endpoint) Name() string { return e.cfg.Name() }

// Dispatch makes one attempt to deliver req.
func (e *Endpoint) Dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	info := telemetry.DispatchInfo{
		RequestID:   req.ID().String(),
		Kind:        req.Kind().String(),
		Endpoint:    e.cfg.Name(),
		Protocol:    e.cfg.Protocol,
		Description: req.Description(),
	}
	ctx, span := telemetry.StartDispatch(ctx, info)

	start := time.Now()
	resp, err := e.dispatch(ctx, req)
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.RecordDispatch(e.cfg.Protocol, info.Kind, err, elapsed, resp.Bytes)
	}
	telemetry.EndDispatch(ctx, span, info, err)

	if err != nil {
		e.logger.Error("request failed",
			zap.String("request_id", info.RequestID),
			zap.String("description", info.Description),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		e.logger.Debug("request delivered",
			zap.String("request_id", info.RequestID),
			zap.Stringer("response", resp),
			zap.Duration("elapsed", elapsed))
	}
	return resp, err
}

func (e *Endpoint) dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return request.Response{}, types.NewError(types.ErrTransport, "rate limit wait aborted").
				WithEndpoint(e.cfg.Name()).
				WithCause(err)
		}
	}
	return e.dispatcher.Dispatch(ctx, req)
}

// Close releases the dispatcher when it holds resources.
func (e *Endpoint) Close() error {
	if c, ok := e.dispatcher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
