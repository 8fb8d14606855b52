package plugin

import (
	"context"
	"sync"

	"github.com/ayusman/mudra/internal/logger"
)

// DefaultQueueSize bounds the number of pending gesture requests.
const DefaultQueueSize = 32

// Result is the outcome of running one plugin for one request.
type Result struct {
	Plugin   string
	Response *Response
	Err      error
}

// Dispatcher fans stable gesture requests out to subscribed plugins on a
// background goroutine so the frame loop never waits on a plugin process.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan Request

	mu       sync.Mutex
	dropped  int
	onResult func(Request, Result)
}

// NewDispatcher creates a Dispatcher. queueSize <= 0 selects DefaultQueueSize.
func NewDispatcher(manager *Manager, executor *Executor, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		queue:    make(chan Request, queueSize),
	}
}

// OnResult registers a callback invoked after every plugin run.
func (d *Dispatcher) OnResult(fn func(Request, Result)) {
	d.mu.Lock()
	d.onResult = fn
	d.mu.Unlock()
}

// Submit queues req. It returns false and drops the request when the queue is full.
func (d *Dispatcher) Submit(req Request) bool {
	select {
	case d.queue <- req:
		return true
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		logger.S().Warnf("Plugin queue full, dropping %s", req.Gesture)
		return false
	}
}

// Dropped returns how many requests Submit rejected.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Dispatch runs every plugin subscribed to req.Gesture, in name order.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) []Result {
	plugins := d.manager.Subscribers(req.Gesture)
	results := make([]Result, 0, len(plugins))

	d.mu.Lock()
	onResult := d.onResult
	d.mu.Unlock()

	for _, p := range plugins {
		resp, err := d.executor.Execute(ctx, p, &req)
		switch {
		case err != nil:
			logger.S().Errorf("Plugin %s failed for %s: %v", p.Manifest.Name, req.Gesture, err)
		case !resp.Success:
			logger.S().Warnf("Plugin %s rejected %s: %s", p.Manifest.Name, req.Gesture, resp.Error)
		default:
			logger.S().Debugf("Plugin %s handled %s", p.Manifest.Name, req.Gesture)
		}

		r := Result{Plugin: p.Manifest.Name, Response: resp, Err: err}
		results = append(results, r)
		if onResult != nil {
			onResult(req, r)
		}
	}
	return results
}

// Run processes queued requests until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			d.Dispatch(ctx, req)
		}
	}
}
