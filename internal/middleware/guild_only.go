package middleware

import (
	"context"

	"command-plugins/internal/command"
	"command-plugins/pkg/cmd"
)

// WithGuildOnly refuses to run the command outside a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			ev, ok := command.FromInvocation(inv)
			if ok && !command.InGuild(ev) {
				return halt(ctx, ev, inv, "guild-only", "This command can only be used in a server.")
			}
			return c.Run(ctx, inv)
		})
	}
}
