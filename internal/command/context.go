package command

import (
	"context"

	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Values holds structured arguments attached to an invocation by the args plugin.
type Values map[string]any

// Context is what plugins and commands see for one invocation, whichever
// transport (text message or slash interaction) it arrived on.
type Context interface {
	Client() *discordgo.Session
	// ID is the snowflake of the triggering message or interaction.
	ID() string
	GuildID() string
	ChannelID() string
	Author() *discordgo.User
	// Member is nil outside guilds.
	Member() *discordgo.Member
	IsSlash() bool
	Args() []string
	// Option returns a slash option by name, stringified.
	Option(name string) (string, bool)
	Reply(ctx context.Context, content string, ephemeral bool) error
	Application() (*discordgo.Application, error)
	Values() Values
	SetValues(v Values)
}

// FromInvocation extracts the Discord context an adapter stored in inv.Data.
func FromInvocation(inv *cmd.Invocation) (Context, bool) {
	if inv == nil {
		return nil, false
	}
	c, ok := inv.Data.(Context)
	return c, ok
}

// InGuild reports whether the invocation happened inside a guild with member info.
func InGuild(c Context) bool {
	return c.GuildID() != "" && c.Member() != nil
}
