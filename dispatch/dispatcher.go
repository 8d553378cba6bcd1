package dispatch

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/internal/tlsutil"
	"github.com/ecmwf/ecflow-light/internal/tokens"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// Dispatcher delivers a request to one endpoint. Implementations never
// retry; one call is one attempt.
type Dispatcher interface {
	Dispatch(ctx context.Context, req request.Request) (request.Response, error)
}

// TokenSource resolves the bearer token for a server base URL.
type TokenSource interface {
	Secret(url string) (tokens.Token, bool)
}

// Option customises the dispatchers built by New.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	tokens     TokenSource
	httpClient *http.Client
	redis      redis.UniversalClient
	send       SendFunc
	run        RunFunc
}

// WithLogger sets the logger; zap.NewNop is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTokens sets the bearer token source used by HTTP dispatchers.
func WithTokens(src TokenSource) Option {
	return func(o *options) { o.tokens = src }
}

// WithHTTPClient replaces the client built from the endpoint's TLS settings.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithRedisClient replaces the client built from the endpoint address.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(o *options) { o.redis = client }
}

// WithSendFunc replaces the UDP datagram sender.
func WithSendFunc(send SendFunc) Option {
	return func(o *options) { o.send = send }
}

// WithRunFunc replaces the ecflow_client runner.
func WithRunFunc(run RunFunc) Option {
	return func(o *options) { o.run = run }
}

// New builds the dispatcher serving cfg.
func New(cfg config.ClientCfg, opts ...Option) (Dispatcher, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(zap.String("endpoint", cfg.Name()))

	switch {
	case cfg.Kind == config.KindPhony:
		return NewPhonyDispatcher(cfg, logger), nil
	case cfg.Kind == config.KindCLI && cfg.Protocol == config.ProtocolTCP:
		return NewCLIDispatcher(cfg, o.run, logger), nil
	case cfg.Kind == config.KindLibrary && cfg.Protocol == config.ProtocolUDP:
		return NewUDPDispatcher(cfg, o.send, logger), nil
	case cfg.Kind == config.KindLibrary && cfg.Protocol == config.ProtocolHTTP:
		client := o.httpClient
		if client == nil {
			client = tlsutil.HTTPClient(tlsutil.Options{Timeout: cfg.Timeout, Insecure: cfg.Insecure})
		}
		if cfg.Insecure {
			logger.Warn("TLS certificate verification disabled for endpoint")
		}
		return NewHTTPDispatcher(cfg, client, o.tokens, logger), nil
	case cfg.Kind == config.KindLibrary && cfg.Protocol == config.ProtocolRedis:
		return NewRedisDispatcher(cfg, o.redis, logger), nil
	}
	return nil, types.Errorf(types.ErrInvalidConfiguration,
		"no dispatcher for kind %q and protocol %q", cfg.Kind, cfg.Protocol)
}

func logDispatch(logger *zap.Logger, msg string, req request.Request) {
	logger.Info(msg,
		zap.Stringer("request_id", req.ID()),
		zap.String("description", req.Description()))
}
