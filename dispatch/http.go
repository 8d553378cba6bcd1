package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

const maxResponseDetail = 4 << 10

// HTTPDispatcher delivers requests to the ecFlow REST API.
type HTTPDispatcher struct {
	cfg    config.ClientCfg
	client *http.Client
	tokens TokenSource
	logger *zap.Logger
}

// NewHTTPDispatcher creates an HTTPDispatcher. tokens may be nil, in which
// case no Authorization header is sent.
func NewHTTPDispatcher(cfg config.ClientCfg, client *http.Client, tokens TokenSource, logger *zap.Logger) *HTTPDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPDispatcher{cfg: cfg, client: client, tokens: tokens, logger: logger}
}

// BaseURL returns scheme://host:port.
func (d *HTTPDispatcher) BaseURL() string {
	scheme := d.cfg.Scheme
	if scheme == "" {
		scheme = config.DefaultScheme
	}
	return scheme + "://" + d.cfg.Address()
}

// Dispatch implements Dispatcher. Any non-2xx status is a transport error.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	payload, err := Format(d.cfg, req)
	if err != nil {
		return request.Response{}, err
	}

	base := d.BaseURL()
	httpReq, err := http.NewRequestWithContext(ctx, payload.Method, base+payload.Target, bytes.NewReader(payload.Body))
	if err != nil {
		return request.Response{}, types.NewError(types.ErrInvalidRequest, "unable to build HTTP request").
			WithEndpoint(d.cfg.Name()).
			WithCause(err)
	}
	for k, vs := range payload.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if d.tokens != nil {
		if token, ok := d.tokens.Secret(base + "/v1"); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token.Key)
		}
	}

	logDispatch(d.logger, "dispatching HTTP request", req)
	d.logger.Debug("HTTP request", zap.String("method", payload.Method), zap.String("url", httpReq.URL.String()))

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return request.Response{}, types.NewError(types.ErrTransport, "HTTP request failed").
			WithEndpoint(d.cfg.Name()).
			WithCause(err)
	}
	defer resp.Body.Close()

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseDetail))
	out := request.Response{
		Endpoint:   d.cfg.Name(),
		Protocol:   d.cfg.Protocol,
		Status:     request.StatusOK,
		Detail:     strings.TrimSpace(string(detail)),
		HTTPStatus: resp.StatusCode,
		Bytes:      len(payload.Body),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Status = request.StatusFailed
		return out, types.NewError(types.ErrTransport, fmt.Sprintf("HTTP %s", resp.Status)).
			WithEndpoint(d.cfg.Name()).
			WithHTTPStatus(resp.StatusCode)
	}
	return out, nil
}
