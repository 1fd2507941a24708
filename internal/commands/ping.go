package commands

import (
	"context"
	"fmt"

	"command-plugins/internal/command"

	"github.com/bwmarrin/discordgo"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Category() string    { return categoryMaintenance }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx context.Context, ev command.Context) error {
	var latency int64
	if s := ev.Client(); s != nil {
		latency = s.HeartbeatLatency().Milliseconds()
	}
	return ev.Reply(ctx, fmt.Sprintf("🏓 Pong! %dms", latency), false)
}
