package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollector("test", reg, zap.NewNop()), reg
}

func TestNewCollector(t *testing.T) {
	collector, _ := newTestCollector(t)

	assert.NotNil(t, collector.dispatchTotal)
	assert.NotNil(t, collector.dispatchDuration)
	assert.NotNil(t, collector.payloadSize)
	assert.NotNil(t, collector.endpointsConfigured)
}

func TestCollector_RecordDispatch(t *testing.T) {
	collector, _ := newTestCollector(t)

	collector.RecordDispatch("udp", "UpdateNodeAttribute", nil, 2*time.Millisecond, 180)
	collector.RecordDispatch("udp", "UpdateNodeAttribute", nil, time.Millisecond, 180)
	collector.RecordDispatch("http", "UpdateNodeStatus", errors.New("502"), 40*time.Millisecond, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.dispatchTotal.WithLabelValues("udp", "UpdateNodeAttribute", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.dispatchTotal.WithLabelValues("http", "UpdateNodeStatus", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.dispatchDuration))
	// 未发送负载时不记录大小
	assert.Equal(t, 1, testutil.CollectAndCount(collector.payloadSize))
}

func TestCollector_RecordEndpoints(t *testing.T) {
	collector, _ := newTestCollector(t)

	collector.RecordEndpoints(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.endpointsConfigured))

	collector.RecordConfigurationError()
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.configurationErrors))
}

func TestCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector("dup", reg, nil)
	assert.Panics(t, func() { NewCollector("dup", reg, nil) })
}

func TestWriteTextfile(t *testing.T) {
	collector, reg := newTestCollector(t)
	collector.RecordEndpoints(2)

	path := filepath.Join(t.TempDir(), "ecflow_light.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "test_endpoints_configured 2"))
}
