// Package keepalive keeps the bot running through crashes in command code by
// routing panics and failed background work to a fallback instead of letting
// them take the process down.
package keepalive

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Source tells a fallback where a failure came from.
type Source string

const (
	// SourcePanic is a recovered panic.
	SourcePanic Source = "exception"
	// SourceGoroutine is an error returned by work started with Guard.Go.
	SourceGoroutine Source = "promise"
)

// Fallback handles a failure the guard intercepted.
type Fallback func(src Source, v any)

// Guard owns the process's crash fallback. At most one fallback is installed
// at a time, and installation is gated by an arming window.
type Guard struct {
	mu        sync.Mutex
	armed     bool
	gen       uint64
	timer     *time.Timer
	fallback  Fallback
	afterFunc func(time.Duration, func()) *time.Timer
}

func New() *Guard {
	return &Guard{afterFunc: time.AfterFunc}
}

// Arm opens an arming window of ttl and reports whether the caller won it.
// While armed, further calls return false. ttl <= 0 never expires.
func (g *Guard) Arm(ttl time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.armed {
		return false
	}
	g.armed = true
	g.gen++
	if ttl > 0 {
		gen := g.gen
		g.timer = g.afterFunc(ttl, func() { g.expire(gen) })
	}
	return true
}

func (g *Guard) expire(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen == gen {
		g.armed = false
		g.timer = nil
	}
}

func (g *Guard) IsArmed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Disarm closes the arming window and removes the fallback.
func (g *Guard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.armed = false
	g.gen++
	g.fallback = nil
}

// Install replaces the fallback. A nil fallback swallows failures silently.
func (g *Guard) Install(fb Fallback) {
	if fb == nil {
		fb = func(Source, any) {}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallback = fb
}

// Dispatch hands v to the installed fallback and reports whether one was
// installed. A fallback that panics itself is logged and treated as handled.
func (g *Guard) Dispatch(src Source, v any) (handled bool) {
	g.mu.Lock()
	fb := g.fallback
	g.mu.Unlock()
	if fb == nil {
		return false
	}

	log.Error().Str("source", string(src)).Str("value", fmt.Sprint(v)).Msg("keep-alive intercepted failure")
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("source", string(src)).Str("value", fmt.Sprint(r)).Msg("keep-alive fallback panicked")
		}
	}()
	handled = true
	fb(src, v)
	return handled
}

// Recover is meant to be deferred. It routes a panic to the fallback and
// re-panics when none is installed.
func (g *Guard) Recover() {
	if r := recover(); r != nil {
		if !g.Dispatch(SourcePanic, r) {
			panic(r)
		}
	}
}

// Go runs fn on a new goroutine. Panics and returned errors go to the
// fallback; without one, errors are logged and panics crash the process.
func (g *Guard) Go(fn func() error) {
	go func() {
		defer g.Recover()
		if err := fn(); err != nil && !g.Dispatch(SourceGoroutine, err) {
			log.Error().Err(err).Msg("background task failed")
		}
	}()
}
