package cooldown

import (
	"context"
	"fmt"

	"command-plugins/internal/command"
	"command-plugins/internal/plugin"

	"github.com/rs/zerolog/log"
)

// Notifier is told about a trip before the invocation halts.
type Notifier func(ctx context.Context, ev command.Context, trip Trip) error

// PluginOption configures a cooldown plugin.
type PluginOption func(*cooldownPlugin)

// WithNotifier sets the trip notifier. Its error is logged; the invocation
// halts either way.
func WithNotifier(n Notifier) PluginOption {
	return func(p *cooldownPlugin) { p.notify = n }
}

// ReplyNotifier answers the caller with a short ephemeral cooldown notice.
func ReplyNotifier(ctx context.Context, ev command.Context, trip Trip) error {
	return ev.Reply(ctx, fmt.Sprintf(
		"Slow down: %d/%d actions per %ds in this %s.",
		trip.Actions, trip.MaxActions, trip.Seconds, trip.Location,
	), true)
}

type cooldownPlugin struct {
	tracker *Tracker
	rules   []Rule
	notify  Notifier
}

// Plugin returns a plugin recording one action per invocation against rules.
func (t *Tracker) Plugin(rules []Rule, opts ...PluginOption) plugin.Plugin {
	p := &cooldownPlugin{tracker: t, rules: append([]Rule(nil), rules...)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel limits actions per channel, e.g. Channel("1/4").
func (t *Tracker) Channel(value string, opts ...PluginOption) (plugin.Plugin, error) {
	return t.single(LocationChannel, value, opts)
}

// User limits actions per guild member.
func (t *Tracker) User(value string, opts ...PluginOption) (plugin.Plugin, error) {
	return t.single(LocationUser, value, opts)
}

// Guild limits actions per guild.
func (t *Tracker) Guild(value string, opts ...PluginOption) (plugin.Plugin, error) {
	return t.single(LocationGuild, value, opts)
}

func (t *Tracker) single(loc Location, value string, opts []PluginOption) (plugin.Plugin, error) {
	r, err := Parse(loc, value)
	if err != nil {
		return nil, err
	}
	return t.Plugin([]Rule{r}, opts...), nil
}

func (p *cooldownPlugin) Name() string        { return "cooldown" }
func (p *cooldownPlugin) Description() string { return "limits user/channel/guild actions" }
func (p *cooldownPlugin) Kind() plugin.Kind   { return plugin.KindEvent }

func (p *cooldownPlugin) Execute(ev command.Context, ctrl *plugin.Controller) (plugin.Result, error) {
	out, err := p.tracker.Record(p.rules, func(loc Location) (string, error) {
		return Resolve(ev, loc)
	})
	if err != nil {
		return ctrl.Stop(), err
	}
	if !out.Tripped {
		return ctrl.Next(), nil
	}

	log.Debug().
		Str("location", string(out.Trip.Location)).
		Int("actions", out.Trip.Actions).
		Int("max_actions", out.Trip.MaxActions).
		Int("seconds", out.Trip.Seconds).
		Msg("cooldown tripped")

	if p.notify != nil {
		if err := p.notify(ctrl.Context(), ev, out.Trip); err != nil {
			log.Warn().Err(err).Str("channel", ev.ChannelID()).Msg("cooldown notifier failed")
		}
	}
	return ctrl.Stop(), nil
}
