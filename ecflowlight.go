// Package ecflowlight notifies an ecFlow server about the progress of the
// task running in the current process.
//
// The task is identified by ECF_NAME, ECF_PASS, ECF_RID and ECF_TRYNO and
// the endpoints are read from the YAML file named by IFS_ECF_CONFIG_PATH.
// Setting NO_ECF (or NO_SMS, NOECF, NOSMS) turns every call into a no-op.
//
// Usage:
//
//	import ecflowlight "github.com/ecmwf/ecflow-light"
//
//	ecflowlight.Init()
//	ecflowlight.UpdateMeter("progress", 50)
//	ecflowlight.UpdateLabel("info", "half way")
//	ecflowlight.Complete()
//
// Every function returns ExitSuccess or ExitFailure; failures are logged
// and never panic. Use package client for error values and responses.
package ecflowlight

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/client"
	"github.com/ecmwf/ecflow-light/request"
)

// Status codes returned by the functions of this package.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

var (
	mu            sync.Mutex
	defaultClient *client.ConfiguredClient
	logger        = zap.NewNop()
	clientOpts    []client.Option
)

// SetLogger sets the logger used by the default client. It takes effect
// for a client not yet created.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Configure sets extra options for the default client. Like SetLogger it
// must be called before the first notification.
func Configure(opts ...client.Option) {
	mu.Lock()
	defer mu.Unlock()
	clientOpts = append(clientOpts, opts...)
}

// Client returns the default client, built on first use from the process
// environment.
func Client() *client.ConfiguredClient {
	mu.Lock()
	defer mu.Unlock()
	if defaultClient == nil {
		opts := append([]client.Option{client.WithLogger(logger)}, clientOpts...)
		defaultClient = client.NewConfigured(request.LoadEnvironment(), opts...)
	}
	return defaultClient
}

// Close releases the default client. A later call builds a new one.
func Close() error {
	mu.Lock()
	c := defaultClient
	defaultClient = nil
	mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func currentLogger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func outcome(op string, name string, err error) int {
	if err != nil {
		currentLogger().Error("notification failed",
			zap.String("operation", op),
			zap.String("name", name),
			zap.Error(err))
		return ExitFailure
	}
	return ExitSuccess
}

func rejectEmpty(op, name string) bool {
	if name == "" {
		currentLogger().Error("notification rejected, empty name", zap.String("operation", op))
		return true
	}
	return false
}

// UpdateMeter sets meter name to value.
func UpdateMeter(name string, value int) int {
	if rejectEmpty("update_meter", name) {
		return ExitFailure
	}
	_, err := Client().UpdateMeter(context.Background(), name, value)
	return outcome("update_meter", name, err)
}

// UpdateLabel sets label name to value.
func UpdateLabel(name, value string) int {
	if rejectEmpty("update_label", name) {
		return ExitFailure
	}
	_, err := Client().UpdateLabel(context.Background(), name, value)
	return outcome("update_label", name, err)
}

// UpdateEvent sets or clears event name.
func UpdateEvent(name string, value bool) int {
	if rejectEmpty("update_event", name) {
		return ExitFailure
	}
	_, err := Client().UpdateEvent(context.Background(), name, value)
	return outcome("update_event", name, err)
}

// UpdateQueue applies action to queue name. step and path may be empty.
func UpdateQueue(name, action, step, path string) int {
	if rejectEmpty("update_queue", name) || rejectEmpty("update_queue", action) {
		return ExitFailure
	}
	_, err := Client().UpdateQueue(context.Background(), name, action, step, path)
	return outcome("update_queue", name, err)
}

// Init signals that the task has started.
func Init() int {
	_, err := Client().Init(context.Background())
	return outcome("init", "", err)
}

// Complete signals that the task has finished.
func Complete() int {
	_, err := Client().Complete(context.Background())
	return outcome("complete", "", err)
}

// Abort signals that the task failed for reason.
func Abort(reason string) int {
	_, err := Client().Abort(context.Background(), reason)
	return outcome("abort", "", err)
}

// Wait holds the task until expression holds on the server.
func Wait(expression string) int {
	if rejectEmpty("wait", expression) {
		return ExitFailure
	}
	_, err := Client().Wait(context.Background(), expression)
	return outcome("wait", "", err)
}
