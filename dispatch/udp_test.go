package dispatch

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/testutil"
	"github.com/ecmwf/ecflow-light/testutil/fixtures"
	"github.com/ecmwf/ecflow-light/types"
)

func TestUDPDispatcher_Loopback(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	port := pc.LocalAddr().(*net.UDPAddr).Port
	cfg := config.ClientCfg{
		Kind:     config.KindLibrary,
		Protocol: config.ProtocolUDP,
		Host:     "127.0.0.1",
		Port:     strconv.Itoa(port),
		Version:  "1.0",
	}
	d := NewUDPDispatcher(cfg, nil, nil)

	resp, err := d.Dispatch(testutil.TestContext(t), request.MeterUpdate(fixtures.TaskEnvironment(), "step", 7))
	require.NoError(t, err)
	assert.Equal(t, request.StatusOK, resp.Status)
	assert.Equal(t, cfg.Name(), resp.Endpoint)

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, MaxDatagramSize)
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	assert.Equal(t, resp.Bytes, n)
	assert.Equal(t, byte(0), buf[n-1])
	assert.True(t, strings.HasPrefix(string(buf[:n]), `{"method":"put","version":"1.0",`))
	assert.Contains(t, string(buf[:n]), `"payload":{"command":"meter","path":"/path/to/task","name":"step","value":"7"}`)

	decoded := testutil.MustParseJSON[map[string]any](string(buf[:n-1]))
	header, ok := decoded["header"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), header["task_try_no"])
	assert.Equal(t, fixtures.TaskRID, header["task_rid"])
}

func TestUDPDispatcher_OversizeNeverSent(t *testing.T) {
	var sent atomic.Int32
	send := func(context.Context, string, []byte) error {
		sent.Add(1)
		return nil
	}
	d := NewUDPDispatcher(udpCfg("1.0"), send, nil)

	_, err := d.Dispatch(context.Background(),
		request.LabelUpdate(fixtures.TaskEnvironment(), "big", strings.Repeat("y", MaxDatagramSize)))
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	assert.Zero(t, sent.Load())
}

func TestUDPDispatcher_SendError(t *testing.T) {
	send := func(context.Context, string, []byte) error { return errors.New("network unreachable") }
	d := NewUDPDispatcher(udpCfg("1.0"), send, nil)

	_, err := d.Dispatch(context.Background(), request.MeterUpdate(fixtures.TaskEnvironment(), "m", 1))
	require.Error(t, err)

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrTransport, e.Code)
	assert.Equal(t, "library/udp@localhost:8080", e.Endpoint)
	assert.ErrorContains(t, err, "network unreachable")
}

func TestUDPDispatcher_Address(t *testing.T) {
	var got string
	send := func(_ context.Context, address string, _ []byte) error {
		got = address
		return nil
	}
	d := NewUDPDispatcher(udpCfg("1.0"), send, nil)

	_, err := d.Dispatch(context.Background(), request.EventUpdate(fixtures.TaskEnvironment(), "e", false))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", got)
}
