// Package timeout puts a wall-clock limit on an invocation.
package timeout

import (
	"context"
	"sync/atomic"
	"time"

	"command-plugins/internal/command"
	"command-plugins/internal/plugin"

	"github.com/rs/zerolog/log"
)

// Handler is told that an invocation ran out of time.
type Handler func(ev command.Context)

type timeoutPlugin struct {
	limit     time.Duration
	onTimeout Handler
	afterFunc func(time.Duration, func()) *time.Timer
}

// Plugin lets the invocation proceed and halts it once limit elapses. On
// expiry onTimeout runs first, then the invocation context is cancelled with
// a *plugin.HaltError cause. The timer is stopped when the invocation ends.
func Plugin(limit time.Duration, onTimeout Handler) plugin.Plugin {
	return &timeoutPlugin{limit: limit, onTimeout: onTimeout, afterFunc: time.AfterFunc}
}

func (p *timeoutPlugin) Name() string        { return "timeout" }
func (p *timeoutPlugin) Description() string { return "sets a wall time limit for a command" }
func (p *timeoutPlugin) Kind() plugin.Kind   { return plugin.KindEvent }

func (p *timeoutPlugin) Execute(ev command.Context, ctrl *plugin.Controller) (plugin.Result, error) {
	ctx, cancel := context.WithCancelCause(ctrl.Context())
	ctrl.SetContext(ctx)

	var done atomic.Bool
	timer := p.afterFunc(p.limit, func() {
		if done.Load() {
			return
		}
		log.Debug().Str("channel", ev.ChannelID()).Dur("limit", p.limit).Msg("invocation timed out")
		if p.onTimeout != nil {
			p.onTimeout(ev)
		}
		cancel(&plugin.HaltError{Plugin: p.Name(), Reason: "exceeded " + p.limit.String()})
	})

	ctrl.Defer(func() {
		done.Store(true)
		timer.Stop()
		cancel(nil)
	})
	return ctrl.Next(), nil
}
