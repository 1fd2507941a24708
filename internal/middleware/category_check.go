package middleware

import (
	"context"

	"command-plugins/internal/command"
	"command-plugins/internal/storage"
	"command-plugins/pkg/cmd"

	"github.com/rs/zerolog/log"
)

// WithCategoryCheck refuses to run commands whose category the guild disabled.
func WithCategoryCheck(store *storage.Storage) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		cat := category(c)
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			ev, ok := command.FromInvocation(inv)
			if !ok || cat == "" || ev.GuildID() == "" {
				return c.Run(ctx, inv)
			}
			disabled, err := store.IsCategoryDisabled(ev.GuildID(), cat)
			if err != nil {
				log.Warn().Err(err).Str("guild", ev.GuildID()).Msg("Failed to check category")
				return c.Run(ctx, inv)
			}
			if disabled {
				return halt(ctx, ev, inv, "category",
					"This command is disabled on this server.\nUse `/toggle` to enable its category again.")
			}
			return c.Run(ctx, inv)
		})
	}
}
