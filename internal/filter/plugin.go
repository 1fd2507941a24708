package filter

import (
	"strings"

	"command-plugins/internal/command"
	"command-plugins/internal/plugin"

	"github.com/rs/zerolog/log"
)

// RejectionHeader starts every rejection reply.
const RejectionHeader = "you do not match the criteria for this command:"

// Evaluate tests criteria as one left-to-right And. On rejection it returns the
// non-empty explanations of the given top-level criteria, in order.
func Evaluate(criteria []Criterion, ev command.Context) (bool, []string) {
	if And(criteria...).Test(ev) {
		return true, nil
	}
	var reasons []string
	for _, c := range criteria {
		if c.message != "" {
			reasons = append(reasons, c.message)
		}
	}
	return false, reasons
}

type filterPlugin struct {
	criteria []Criterion
}

// Make returns a plugin that halts invocations not matching every criterion
// and tells the caller which criteria apply.
func Make(criteria ...Criterion) plugin.Plugin {
	return &filterPlugin{criteria: append([]Criterion(nil), criteria...)}
}

func (p *filterPlugin) Name() string        { return "filter" }
func (p *filterPlugin) Description() string { return "filters commands based on criteria" }
func (p *filterPlugin) Kind() plugin.Kind   { return plugin.KindEvent }

func (p *filterPlugin) Execute(ev command.Context, ctrl *plugin.Controller) (plugin.Result, error) {
	ok, reasons := Evaluate(p.criteria, ev)
	if ok {
		return ctrl.Next(), nil
	}
	msg := RejectionHeader
	if len(reasons) > 0 {
		msg += "\n" + strings.Join(reasons, "\n")
	}
	if err := ev.Reply(ctrl.Context(), msg, true); err != nil {
		log.Warn().Err(err).Str("channel", ev.ChannelID()).Msg("filter rejection reply failed")
	}
	return ctrl.Stop(), nil
}
