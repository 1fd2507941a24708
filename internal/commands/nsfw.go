package commands

import (
	"context"

	"command-plugins/internal/command"
	"command-plugins/internal/filter"
	"command-plugins/internal/plugin"

	"github.com/bwmarrin/discordgo"
)

func nsfwFilter() plugin.Plugin {
	return filter.Make(filter.IsInGuild(), filter.IsChannelNSFW())
}

type NSFWCommand struct{}

func (c *NSFWCommand) Name() string        { return "nsfw" }
func (c *NSFWCommand) Description() string { return "Only works in age-restricted channels" }
func (c *NSFWCommand) Category() string    { return categoryRestricted }

func (c *NSFWCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *NSFWCommand) Run(ctx context.Context, ev command.Context) error {
	return ev.Reply(ctx, "🔞 You found the back room.", false)
}
