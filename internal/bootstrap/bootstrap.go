// Package bootstrap wires the ambient services shared by the ecflow-light
// command line tools: settings, logging, metrics and tracing.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/client"
	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/internal/logging"
	"github.com/ecmwf/ecflow-light/internal/metrics"
	"github.com/ecmwf/ecflow-light/internal/telemetry"
	"github.com/ecmwf/ecflow-light/request"
)

// Runtime holds the services of one tool invocation.
type Runtime struct {
	Settings *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	telemetry *telemetry.Providers
	closeLogs func() error
}

// Start reads the settings from the file named by IFS_ECF_CONFIG_PATH,
// falling back to defaults when it cannot be read, and starts logging,
// metrics and tracing.
func Start(env request.Environment) (*Runtime, error) {
	settings := config.DefaultConfig()
	var settingsErr error
	if path, ok := env.Lookup(request.EnvConfigPath); ok {
		loaded, err := config.LoadSettings(path.Value)
		if err != nil {
			settingsErr = err
		} else {
			settings = loaded
		}
	}

	logger, closeLogs, err := logging.New(settings.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if settingsErr != nil {
		logger.Warn("unable to load settings, using defaults", zap.Error(settingsErr))
	}

	reg := prometheus.NewRegistry()
	rt := &Runtime{
		Settings: settings,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics.NewCollector(settings.Metrics.Namespace, reg, logger),

		closeLogs: closeLogs,
	}

	rt.telemetry, err = telemetry.Init(settings.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	return rt, nil
}

// ClientOptions returns the options that attach this runtime to a client.
func (r *Runtime) ClientOptions() []client.Option {
	return []client.Option{client.WithLogger(r.Logger), client.WithMetrics(r.Metrics)}
}

// Close writes the metrics textfile when configured, flushes tracing and
// closes the log files. The logger must not be used afterwards.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if path := r.Settings.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, r.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	if err := r.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	_ = r.Logger.Sync()
	if err := r.closeLogs(); err != nil {
		errs = append(errs, fmt.Errorf("close log files: %w", err))
	}
	return errors.Join(errs...)
}
