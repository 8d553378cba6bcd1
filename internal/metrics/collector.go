// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 分发指标
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	payloadSize      *prometheus.HistogramVec

	// 端点指标
	endpointsConfigured prometheus.Gauge
	configurationErrors prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器，指标注册到 reg
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.dispatchTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of requests dispatched to an endpoint",
		},
		[]string{"protocol", "kind", "status"},
	)

	c.dispatchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching one request to one endpoint",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"protocol"},
	)

	c.payloadSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_size_bytes",
			Help:      "Size of the payload put on the wire",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"protocol"},
	)

	c.endpointsConfigured = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoints_configured",
			Help:      "Number of endpoints resolved from the configuration",
		},
	)

	c.configurationErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "configuration_errors_total",
			Help:      "Total number of failed configuration resolutions",
		},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 分发指标记录
// =============================================================================

// RecordDispatch 记录一次端点分发
func (c *Collector) RecordDispatch(protocol, kind string, err error, duration time.Duration, bytes int) {
	c.dispatchTotal.WithLabelValues(protocol, kind, status(err)).Inc()
	c.dispatchDuration.WithLabelValues(protocol).Observe(duration.Seconds())
	if bytes > 0 {
		c.payloadSize.WithLabelValues(protocol).Observe(float64(bytes))
	}
}

// RecordEndpoints 记录解析出的端点数量
func (c *Collector) RecordEndpoints(n int) {
	c.endpointsConfigured.Set(float64(n))
}

// RecordConfigurationError 记录配置解析失败
func (c *Collector) RecordConfigurationError() {
	c.configurationErrors.Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// WriteTextfile 将 g 中的指标写入 node_exporter textfile 格式文件
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
