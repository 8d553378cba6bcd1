// Package client delivers requests to the endpoints of a task.
//
// An Endpoint pairs one resolved config.ClientCfg with its dispatcher and
// adds rate limiting, tracing and metrics around every attempt. A
// CompositeClient fans a request out to all of its endpoints. A
// ConfiguredClient resolves the endpoints from the task environment on
// first use and serialises every dispatch sequence.
//
// Typical use inside a task:
//
//	c := client.NewConfigured(request.LoadEnvironment(), client.WithLogger(logger))
//	defer c.Close()
//	if _, err := c.UpdateMeter(ctx, "progress", 42); err != nil {
//		logger.Error("meter update failed", zap.Error(err))
//	}
package client
