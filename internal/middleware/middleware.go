// Package middleware holds cross-cutting cmd.Middleware for Discord commands.
// Middleware that declines to run a command replies to the caller, records
// itself in inv.Halted and returns nil.
package middleware

import (
	"context"

	"command-plugins/internal/command"
	"command-plugins/pkg/cmd"

	"github.com/rs/zerolog/log"
)

func halt(ctx context.Context, c command.Context, inv *cmd.Invocation, name, msg string) error {
	inv.Halted = name
	if err := c.Reply(ctx, msg, true); err != nil {
		log.Warn().Err(err).Str("middleware", name).Msg("Failed to reply")
	}
	return nil
}

// category returns the category of the adapter at the root of c.
func category(c cmd.Command) string {
	if meta, ok := cmd.Root(c).(command.DiscordMeta); ok {
		return meta.Category()
	}
	return ""
}
