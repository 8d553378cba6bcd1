package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/request"
)

// Result is the outcome of one endpoint attempt.
type Result struct {
	Endpoint string
	Response request.Response
	Err      error
}

// CompositeResponse collects one Result per endpoint, in registration order.
type CompositeResponse struct {
	Results []Result
}

// Last returns the response of the last endpoint attempted.
func (r CompositeResponse) Last() request.Response {
	if len(r.Results) == 0 {
		return request.Response{}
	}
	return r.Results[len(r.Results)-1].Response
}

// OK reports whether every endpoint succeeded.
func (r CompositeResponse) OK() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the results that carry an error.
func (r CompositeResponse) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// CompositeClient sends every request to all of its endpoints.
type CompositeClient struct {
	mu        sync.RWMutex
	endpoints []*Endpoint
	logger    *zap.Logger
}

// NewCompositeClient creates an empty CompositeClient.
func NewCompositeClient(logger *zap.Logger) *CompositeClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompositeClient{logger: logger.With(zap.String("component", "composite_client"))}
}

// Add registers an endpoint. Endpoints are attempted in the order added.
func (c *CompositeClient) Add(e *Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoints = append(c.endpoints, e)
}

// Len returns the number of endpoints.
func (c *CompositeClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.endpoints)
}

// Process attempts req on every endpoint exactly once, even after a
// failure. The error joins every endpoint failure and is nil only when
// all endpoints succeeded.
func (c *CompositeClient) Process(ctx context.Context, req request.Request) (CompositeResponse, error) {
	c.mu.RLock()
	endpoints := make([]*Endpoint, len(c.endpoints))
	copy(endpoints, c.endpoints)
	c.mu.RUnlock()

	if len(endpoints) == 0 {
		c.logger.Warn("no endpoints configured, request dropped",
			zap.String("description", req.Description()))
		return CompositeResponse{}, nil
	}

	out := CompositeResponse{Results: make([]Result, 0, len(endpoints))}
	var errs []error
	for _, e := range endpoints {
		resp, err := e.Dispatch(ctx, req)
		out.Results = append(out.Results, Result{Endpoint: e.Name(), Response: resp, Err: err})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

// Close closes every endpoint and joins their errors.
func (c *CompositeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, e := range c.endpoints {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
