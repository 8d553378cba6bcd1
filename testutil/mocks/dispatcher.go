// Package mocks 提供 Dispatcher 的测试模拟实现。
//
// 支持固定响应、错误注入、调用记录与并发检测。
package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ecmwf/ecflow-light/request"
)

// Dispatcher 记录收到的请求，可注入错误与延迟
type Dispatcher struct {
	mu       sync.Mutex
	name     string
	err      error
	delay    time.Duration
	requests []request.Request

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	onDispatch  func(request.Request)
}

// NewDispatcher 创建名为 name 的模拟 Dispatcher
func NewDispatcher(name string) *Dispatcher {
	return &Dispatcher{name: name}
}

// WithError 让每次分发返回 err
func (d *Dispatcher) WithError(err error) *Dispatcher {
	d.err = err
	return d
}

// WithDelay 让每次分发阻塞 delay
func (d *Dispatcher) WithDelay(delay time.Duration) *Dispatcher {
	d.delay = delay
	return d
}

// OnDispatch 在每次分发时回调 fn
func (d *Dispatcher) OnDispatch(fn func(request.Request)) *Dispatcher {
	d.onDispatch = fn
	return d
}

// Dispatch 实现 dispatch.Dispatcher
func (d *Dispatcher) Dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	n := d.inFlight.Add(1)
	defer d.inFlight.Add(-1)
	for {
		cur := d.maxInFlight.Load()
		if n <= cur || d.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if d.onDispatch != nil {
		d.onDispatch(req)
	}
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return request.Response{}, ctx.Err()
		}
	}

	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()

	if d.err != nil {
		return request.Response{Endpoint: d.name, Status: request.StatusFailed}, d.err
	}
	return request.Response{Endpoint: d.name, Protocol: "mock", Status: request.StatusOK}, nil
}

// Requests 返回已收到请求的副本
func (d *Dispatcher) Requests() []request.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]request.Request, len(d.requests))
	copy(out, d.requests)
	return out
}

// Calls 返回分发次数
func (d *Dispatcher) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

// MaxInFlight 返回观察到的最大并发分发数
func (d *Dispatcher) MaxInFlight() int {
	return int(d.maxInFlight.Load())
}
