package keepalive

import (
	"time"

	"command-plugins/internal/command"
	"command-plugins/internal/plugin"
)

type keepAlivePlugin struct {
	guard    *Guard
	ttl      time.Duration
	fallback Fallback
}

// Plugin installs fallback on g the first time it runs in each arming window
// of ttl, and routes panics from the rest of the invocation to g.
func Plugin(g *Guard, ttl time.Duration, fallback Fallback) plugin.Plugin {
	return &keepAlivePlugin{guard: g, ttl: ttl, fallback: fallback}
}

func (p *keepAlivePlugin) Name() string        { return "keep-alive" }
func (p *keepAlivePlugin) Description() string { return "keeps the bot alive through crashes" }
func (p *keepAlivePlugin) Kind() plugin.Kind   { return plugin.KindEvent }

func (p *keepAlivePlugin) Execute(_ command.Context, ctrl *plugin.Controller) (plugin.Result, error) {
	ctrl.OnPanic(func(v any) bool {
		return p.guard.Dispatch(SourcePanic, v)
	})
	if p.guard.Arm(p.ttl) {
		p.guard.Install(p.fallback)
	}
	return ctrl.Next(), nil
}
