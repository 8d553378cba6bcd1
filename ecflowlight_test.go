package ecflowlight

import (
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/testutil"
	"github.com/ecmwf/ecflow-light/testutil/fixtures"
)

func setTaskEnv(t *testing.T) {
	t.Helper()
	t.Setenv(request.EnvTaskName, fixtures.TaskName)
	t.Setenv(request.EnvTaskPassword, fixtures.TaskPassword)
	t.Setenv(request.EnvTaskRID, fixtures.TaskRID)
	t.Setenv(request.EnvTaskTryNo, fixtures.TaskTryNo)
	t.Cleanup(func() { _ = Close() })
}

func TestPhonyEnvironmentSucceeds(t *testing.T) {
	setTaskEnv(t)
	t.Setenv("NO_ECF", "1")

	assert.Equal(t, ExitSuccess, Init())
	assert.Equal(t, ExitSuccess, UpdateMeter("m", 1))
	assert.Equal(t, ExitSuccess, UpdateLabel("l", "v"))
	assert.Equal(t, ExitSuccess, UpdateEvent("e", true))
	assert.Equal(t, ExitSuccess, UpdateQueue("q", "active", "", ""))
	assert.Equal(t, ExitSuccess, Wait("/s == complete"))
	assert.Equal(t, ExitSuccess, Abort("reason"))
	assert.Equal(t, ExitSuccess, Complete())
}

func TestEmptyNamesFail(t *testing.T) {
	setTaskEnv(t)
	t.Setenv("NO_ECF", "1")

	core, logs := observer.New(zap.ErrorLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	assert.Equal(t, ExitFailure, UpdateMeter("", 1))
	assert.Equal(t, ExitFailure, UpdateLabel("", "v"))
	assert.Equal(t, ExitFailure, UpdateEvent("", false))
	assert.Equal(t, ExitFailure, UpdateQueue("q", "", "", ""))
	assert.Equal(t, ExitFailure, Wait(""))
	assert.Equal(t, 5, logs.FilterMessage("notification rejected, empty name").Len())
}

func TestEmptyOptOutVariableSkips(t *testing.T) {
	setTaskEnv(t)
	t.Setenv("NO_ECF", "")
	t.Setenv(request.EnvConfigPath, "/nonexistent/ecflow_light.yaml")

	// NO_ECF is defined, even empty, so notifications are skipped
	assert.Equal(t, ExitSuccess, Complete())
}

func TestUnreadableConfigurationFails(t *testing.T) {
	setTaskEnv(t)
	t.Setenv(request.EnvConfigPath, "/nonexistent/ecflow_light.yaml")

	assert.Equal(t, ExitFailure, Complete())
	assert.Equal(t, ExitFailure, UpdateMeter("m", 2))
}

func TestUpdateMeterOverUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()
	port := strconv.Itoa(pc.LocalAddr().(*net.UDPAddr).Port)

	setTaskEnv(t)
	t.Setenv(request.EnvHost, "127.0.0.1")
	path := testutil.WriteFile(t, "ecflow_light.yaml", fixtures.ClientsYAML("library", "udp", "$ENV{ECF_HOST}", port))
	t.Setenv(request.EnvConfigPath, path)

	require.Equal(t, ExitSuccess, UpdateMeter("progress", 42))

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 4096)
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	datagram := strings.TrimSuffix(string(buf[:n]), "\x00")
	assert.Equal(t,
		`{"method":"put","version":"1.0","header":{"task_rid":"12345","task_password":"qwerty","task_try_no":0},"payload":{"command":"meter","path":"/path/to/task","name":"progress","value":"42"}}`,
		datagram)
}
