package commands

import (
	"context"

	"command-plugins/internal/command"

	"github.com/bwmarrin/discordgo"
)

// WhisperCommand only answers in direct messages; in guilds it stays silent.
type WhisperCommand struct{}

func (c *WhisperCommand) Name() string        { return "whisper" }
func (c *WhisperCommand) Description() string { return "Say something only in direct messages" }
func (c *WhisperCommand) Category() string    { return categoryInfo }

func (c *WhisperCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *WhisperCommand) Run(ctx context.Context, ev command.Context) error {
	return ev.Reply(ctx, "🤫 This stays between us.", false)
}
