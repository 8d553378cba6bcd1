package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/testutil"
	"github.com/ecmwf/ecflow-light/testutil/fixtures"
)

func TestStart_Defaults(t *testing.T) {
	rt, err := Start(fixtures.TaskEnvironment())
	require.NoError(t, err)
	defer rt.Close(context.Background())

	assert.Equal(t, "ecflow_light", rt.Settings.Metrics.Namespace)
	assert.NotNil(t, rt.Metrics)
	assert.Len(t, rt.ClientOptions(), 2)
}

func TestStart_InvalidSettingsFallBack(t *testing.T) {
	path := testutil.WriteFile(t, "ecflow_light.yaml", "log:\n  level: loud\n")
	rt, err := Start(fixtures.TaskEnvironment().With(request.EnvConfigPath, path))
	require.NoError(t, err)
	defer rt.Close(context.Background())

	assert.Equal(t, "info", rt.Settings.Log.Level)
}

func TestClose_WritesTextfile(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "ecflow_light.prom")
	path := testutil.WriteFile(t, "ecflow_light.yaml",
		"log:\n  level: error\nmetrics:\n  textfile: "+textfile+"\n")

	rt, err := Start(fixtures.TaskEnvironment().With(request.EnvConfigPath, path))
	require.NoError(t, err)

	rt.Metrics.RecordEndpoints(2)
	require.NoError(t, rt.Close(context.Background()))

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ecflow_light_endpoints_configured 2")
}

func TestClose_ClosesLogFiles(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "ecflow_light.log")
	path := testutil.WriteFile(t, "ecflow_light.yaml",
		"log:\n  level: info\n  output_paths: ["+logfile+"]\n")

	rt, err := Start(fixtures.TaskEnvironment().With(request.EnvConfigPath, path))
	require.NoError(t, err)

	rt.Logger.Info("task started")
	require.NoError(t, rt.Close(context.Background()))

	rt.Logger.Info("after close")
	assert.Error(t, rt.Logger.Sync())

	data, err := os.ReadFile(logfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "task started")
	assert.NotContains(t, string(data), "after close")
}
