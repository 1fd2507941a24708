package commands

import (
	"context"
	"fmt"
	"strings"

	"command-plugins/internal/command"
	"command-plugins/internal/filter"
	"command-plugins/internal/plugin"
	"command-plugins/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const discordMessageLimit = 2000

func historyFilter() plugin.Plugin {
	return filter.Make(
		filter.WithCustomMessage(
			filter.Or(filter.IsAdministrator(), filter.CanManageGuild()),
			"is an administrator or can manage the server",
		),
	)
}

type HistoryCommand struct {
	store *storage.Storage
}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Show recent command usage on this server" }
func (c *HistoryCommand) Category() string    { return categoryMaintenance }

func (c *HistoryCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *HistoryCommand) Run(ctx context.Context, ev command.Context) error {
	records, err := c.store.FetchInvocations(ev.GuildID())
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	return ev.Reply(ctx, renderHistory(records), true)
}

func renderHistory(records []storage.InvocationRecord) string {
	if len(records) == 0 {
		return "No commands have been used here yet."
	}

	var sb strings.Builder
	sb.WriteString("**Recent commands**\n")
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		line := fmt.Sprintf("<t:%d:R> `%s` by %s", r.Datetime.Unix(), r.Command, r.Username)
		switch {
		case r.HaltedBy != "":
			line += fmt.Sprintf(" (halted by %s)", r.HaltedBy)
		case r.Error != "":
			line += " (failed)"
		}
		if sb.Len()+len(line)+1 > discordMessageLimit {
			break
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
