package middleware

import (
	"context"
	"time"

	"command-plugins/internal/command"
	"command-plugins/internal/storage"
	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// WithCommandLogger logs every invocation and appends guild invocations to
// the history in store. It should be the outermost middleware so it sees
// which plugin or middleware halted the command.
func WithCommandLogger(store *storage.Storage) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			id := uuid.NewString()
			err := c.Run(ctx, inv)

			ev, ok := command.FromInvocation(inv)
			if !ok {
				return err
			}
			user := ev.Author()
			if user == nil {
				user = &discordgo.User{Username: "unknown"}
			}

			var entry *zerolog.Event
			if err != nil {
				entry = log.Error().Err(err)
			} else {
				entry = log.Info()
			}
			entry.
				Str("invocation", id).
				Str("command", c.Name()).
				Str("user", user.Username).
				Str("guild", ev.GuildID()).
				Str("channel", ev.ChannelID()).
				Bool("slash", ev.IsSlash()).
				Str("halted_by", inv.Halted).
				Dur("took", time.Since(start)).
				Msg("Command invoked")

			if store == nil || ev.GuildID() == "" {
				return err
			}
			rec := storage.InvocationRecord{
				ID:        id,
				ChannelID: ev.ChannelID(),
				UserID:    user.ID,
				Username:  user.Username,
				Command:   c.Name(),
				Slash:     ev.IsSlash(),
				HaltedBy:  inv.Halted,
				Datetime:  start.UTC(),
			}
			if err != nil {
				rec.Error = err.Error()
			}
			if e := store.AppendInvocation(ev.GuildID(), rec); e != nil {
				log.Warn().Err(e).Str("command", c.Name()).Msg("Failed to record command")
			}
			return err
		})
	}
}
