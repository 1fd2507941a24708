package args

import (
	"errors"
	"fmt"

	"command-plugins/internal/command"
	"command-plugins/internal/plugin"

	"github.com/mitchellh/mapstructure"
)

// ErrorHandler is told which argument failed before the invocation halts.
type ErrorHandler func(ev command.Context, err *ConversionError)

type argsPlugin struct {
	fields  []Field
	onError ErrorHandler
}

// Plugin converts the invocation's arguments and attaches them to the context
// as command.Values. A conversion failure halts the invocation.
func Plugin(fields []Field, onError ErrorHandler) plugin.Plugin {
	return &argsPlugin{fields: append([]Field(nil), fields...), onError: onError}
}

func (p *argsPlugin) Name() string        { return "args" }
func (p *argsPlugin) Description() string { return "converts args to an object" }
func (p *argsPlugin) Kind() plugin.Kind   { return plugin.KindEvent }

func (p *argsPlugin) Execute(ev command.Context, ctrl *plugin.Controller) (plugin.Result, error) {
	var (
		values command.Values
		err    error
	)
	if ev.IsSlash() {
		values, err = convert(p.fields, func(_ int, key string) (string, bool) {
			return ev.Option(key)
		})
	} else {
		values, err = Convert(ev.Args(), p.fields)
	}
	if err != nil {
		var convErr *ConversionError
		if p.onError != nil && errors.As(err, &convErr) {
			p.onError(ev, convErr)
		}
		return ctrl.Stop(), nil
	}
	ev.SetValues(values)
	return ctrl.Next(), nil
}

// Decode copies converted values into the struct pointed to by dst, matching
// keys against `arg` struct tags.
func Decode(values command.Values, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "arg",
		Result:  dst,
	})
	if err != nil {
		return fmt.Errorf("args decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(values)); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}
