package dispatch

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// SendFunc writes one datagram to address.
type SendFunc func(ctx context.Context, address string, packet []byte) error

// UDPDispatcher sends attribute updates as single fire-and-forget
// datagrams. No acknowledgement is read.
type UDPDispatcher struct {
	cfg    config.ClientCfg
	send   SendFunc
	logger *zap.Logger
}

// NewUDPDispatcher creates a UDPDispatcher; a nil send uses a real socket.
func NewUDPDispatcher(cfg config.ClientCfg, send SendFunc, logger *zap.Logger) *UDPDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if send == nil {
		send = sendDatagram
	}
	return &UDPDispatcher{cfg: cfg, send: send, logger: logger}
}

// Dispatch implements Dispatcher.
func (d *UDPDispatcher) Dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	payload, err := Format(d.cfg, req)
	if err != nil {
		return request.Response{}, err
	}

	logDispatch(d.logger, "dispatching UDP request", req)
	if err := d.send(ctx, d.cfg.Address(), payload.Body); err != nil {
		return request.Response{}, types.NewError(types.ErrTransport, "unable to send UDP datagram").
			WithEndpoint(d.cfg.Name()).
			WithCause(err)
	}

	return request.Response{
		Endpoint: d.cfg.Name(),
		Protocol: d.cfg.Protocol,
		Status:   request.StatusOK,
		Bytes:    len(payload.Body),
	}, nil
}

func sendDatagram(ctx context.Context, address string, packet []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", address)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write(packet)
	return err
}
