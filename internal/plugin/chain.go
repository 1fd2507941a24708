package plugin

import (
	"context"
	"errors"
	"fmt"

	"command-plugins/internal/command"
	"command-plugins/pkg/cmd"

	"github.com/rs/zerolog/log"
)

// Outcome describes how a chain ended.
type Outcome struct {
	// HaltedBy is the plugin that stopped the invocation, empty if the command ran.
	HaltedBy string
}

// Run executes plugins in declaration order against ev, stopping at the first
// Stop. When every plugin returns Next, next runs with the context the
// plugins left on the controller.
func Run(ctx context.Context, ev command.Context, plugins []Plugin, next func(ctx context.Context) error) (out Outcome, err error) {
	ctrl := newController(ctx)
	defer ctrl.finish()
	defer func() {
		if r := recover(); r != nil {
			if !ctrl.handlePanic(r) {
				panic(r)
			}
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()

	for _, p := range plugins {
		if halt := haltCause(ctrl.Context()); halt != nil {
			return Outcome{HaltedBy: halt.Plugin}, nil
		}

		res, err := p.Execute(ev, ctrl)
		if err != nil {
			return Outcome{HaltedBy: p.Name()}, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		if res == Stop {
			log.Debug().Str("plugin", p.Name()).Str("channel", ev.ChannelID()).Msg("plugin halted invocation")
			return Outcome{HaltedBy: p.Name()}, nil
		}
	}

	runCtx := ctrl.Context()
	if halt := haltCause(runCtx); halt != nil {
		return Outcome{HaltedBy: halt.Plugin}, nil
	}
	if next == nil {
		return Outcome{}, nil
	}

	err = next(runCtx)
	if halt := haltCause(runCtx); halt != nil {
		return Outcome{HaltedBy: halt.Plugin}, err
	}
	return Outcome{}, err
}

func haltCause(ctx context.Context) *HaltError {
	var halt *HaltError
	if errors.As(context.Cause(ctx), &halt) {
		return halt
	}
	return nil
}

// Use binds a plugin chain to a command. Invocations whose data is not a
// command.Context bypass the chain.
func Use(plugins ...Plugin) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			ev, ok := command.FromInvocation(inv)
			if !ok {
				return c.Run(ctx, inv)
			}
			out, err := Run(ctx, ev, plugins, func(ctx context.Context) error {
				return c.Run(ctx, inv)
			})
			if out.HaltedBy != "" && inv.Halted == "" {
				inv.Halted = out.HaltedBy
			}
			return err
		})
	}
}
