// Package plugin defines the contract every command plugin follows: it is
// handed the invocation context and a controller and must answer with exactly
// one terminal result, Next (let the chain continue) or Stop (halt it).
package plugin

import (
	"command-plugins/internal/command"
)

// Kind tells the host when a plugin runs.
type Kind int

const (
	// KindEvent plugins run on every invocation, before the command.
	KindEvent Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Result is the terminal signal a plugin returns.
type Result int

const (
	Next Result = iota
	Stop
)

func (r Result) String() string {
	if r == Stop {
		return "stop"
	}
	return "next"
}

// Plugin is one step of a command's chain. A non-nil error is a fatal
// invocation error and is surfaced to the caller; recoverable conditions
// (cooldown, unmet criteria) are reported by returning Stop.
type Plugin interface {
	Name() string
	Description() string
	Kind() Kind
	Execute(ev command.Context, ctrl *Controller) (Result, error)
}

// ExecuteFunc is the body of an ad-hoc plugin.
type ExecuteFunc func(ev command.Context, ctrl *Controller) (Result, error)

type funcPlugin struct {
	name        string
	description string
	fn          ExecuteFunc
}

// New wraps fn as an event plugin.
func New(name, description string, fn ExecuteFunc) Plugin {
	return &funcPlugin{name: name, description: description, fn: fn}
}

func (p *funcPlugin) Name() string        { return p.name }
func (p *funcPlugin) Description() string { return p.description }
func (p *funcPlugin) Kind() Kind          { return KindEvent }
func (p *funcPlugin) Execute(ev command.Context, ctrl *Controller) (Result, error) {
	return p.fn(ev, ctrl)
}

// GuildOnly halts invocations that do not come from a guild member.
func GuildOnly() Plugin {
	return New("guild-only", "halts outside of guilds", func(ev command.Context, ctrl *Controller) (Result, error) {
		if command.InGuild(ev) {
			return ctrl.Next(), nil
		}
		return ctrl.Stop(), nil
	})
}
