package dispatch

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// RedisDispatcher publishes the JSON envelope of every request on a Redis
// channel, for dashboards and relays that mirror task progress.
type RedisDispatcher struct {
	cfg    config.ClientCfg
	client redis.UniversalClient
	owned  bool
	logger *zap.Logger
}

// NewRedisDispatcher creates a RedisDispatcher. A nil client is replaced by
// one connected to the endpoint address and closed by Close.
func NewRedisDispatcher(cfg config.ClientCfg, client redis.UniversalClient, logger *zap.Logger) *RedisDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Channel == "" {
		cfg.Channel = config.DefaultRedisChannel
	}
	owned := false
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:        cfg.Address(),
			MaxRetries:  -1,
			DialTimeout: cfg.Timeout,
		})
		owned = true
	}
	return &RedisDispatcher{cfg: cfg, client: client, owned: owned, logger: logger}
}

// Dispatch implements Dispatcher.
func (d *RedisDispatcher) Dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	payload, err := Format(d.cfg, req)
	if err != nil {
		return request.Response{}, err
	}

	logDispatch(d.logger, "publishing request", req)
	receivers, err := d.client.Publish(ctx, d.cfg.Channel, payload.Body).Result()
	if err != nil {
		return request.Response{}, types.NewError(types.ErrTransport, "unable to publish to "+d.cfg.Channel).
			WithEndpoint(d.cfg.Name()).
			WithCause(err)
	}

	return request.Response{
		Endpoint: d.cfg.Name(),
		Protocol: d.cfg.Protocol,
		Status:   request.StatusOK,
		Detail:   "receivers=" + strconv.FormatInt(receivers, 10),
		Bytes:    len(payload.Body),
	}, nil
}

// Close closes the Redis client when the dispatcher created it.
func (d *RedisDispatcher) Close() error {
	if !d.owned {
		return nil
	}
	return d.client.Close()
}
