package plugin

import (
	"context"
	"fmt"
	"sync"
)

// HaltError is the cancellation cause a plugin uses when it halts an
// invocation that is already past the chain, e.g. on a wall-clock deadline.
type HaltError struct {
	Plugin string
	Reason string
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halted by %s: %s", e.Plugin, e.Reason)
}

// Controller is handed to every plugin of one invocation.
type Controller struct {
	mu       sync.Mutex
	ctx      context.Context
	deferred []func()
	panics   []func(v any) bool
}

func newController(ctx context.Context) *Controller {
	return &Controller{ctx: ctx}
}

// Next lets the chain continue.
func (c *Controller) Next() Result { return Next }

// Stop halts the chain; the command does not run.
func (c *Controller) Stop() Result { return Stop }

// Context is the context the rest of the chain and the command will receive.
func (c *Controller) Context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// SetContext replaces the context passed downstream.
func (c *Controller) SetContext(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// Defer registers fn to run when the invocation finishes, whether the command
// ran, a plugin halted, or something panicked. Deferred functions run LIFO.
func (c *Controller) Defer(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred = append(c.deferred, fn)
}

// OnPanic registers a handler for panics raised later in this invocation.
// A handler returning true swallows the panic.
func (c *Controller) OnPanic(fn func(v any) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics = append(c.panics, fn)
}

func (c *Controller) handlePanic(v any) bool {
	c.mu.Lock()
	handlers := append([]func(any) bool(nil), c.panics...)
	c.mu.Unlock()

	handled := false
	for _, h := range handlers {
		if h(v) {
			handled = true
		}
	}
	return handled
}

func (c *Controller) finish() {
	c.mu.Lock()
	deferred := c.deferred
	c.deferred = nil
	c.mu.Unlock()

	for i := len(deferred) - 1; i >= 0; i-- {
		deferred[i]()
	}
}
