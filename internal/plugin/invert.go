package plugin

import (
	"command-plugins/internal/command"
)

type inverted struct {
	inner Plugin
}

// Invert runs p and flips its result: Next becomes Stop and Stop becomes Next.
// Errors pass through untouched. Do not invert plugins with side effects
// (replies, counters); those happen whichever way the result is flipped.
func Invert(p Plugin) Plugin {
	return &inverted{inner: p}
}

func (i *inverted) Name() string        { return "not(" + i.inner.Name() + ")" }
func (i *inverted) Description() string { return i.inner.Description() }
func (i *inverted) Kind() Kind          { return i.inner.Kind() }

func (i *inverted) Execute(ev command.Context, ctrl *Controller) (Result, error) {
	res, err := i.inner.Execute(ev, ctrl)
	if err != nil {
		return res, err
	}
	if res == Next {
		return ctrl.Stop(), nil
	}
	return ctrl.Next(), nil
}
