package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
)

// PhonyDispatcher accepts every request and sends nothing. It stands in
// for all endpoints when notifications are switched off with NO_ECF.
type PhonyDispatcher struct {
	cfg    config.ClientCfg
	logger *zap.Logger
}

// NewPhonyDispatcher creates a PhonyDispatcher.
func NewPhonyDispatcher(cfg config.ClientCfg, logger *zap.Logger) *PhonyDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhonyDispatcher{cfg: cfg, logger: logger}
}

// Dispatch implements Dispatcher.
func (d *PhonyDispatcher) Dispatch(_ context.Context, req request.Request) (request.Response, error) {
	d.logger.Debug("skipping request", zap.String("description", req.Description()))
	return request.Response{
		Endpoint: d.cfg.Name(),
		Protocol: d.cfg.Protocol,
		Status:   request.StatusOK,
		Detail:   "phony",
	}, nil
}
