package discord

import (
	"context"
	"testing"

	"command-plugins/internal/command"
	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content string
		name    string
		args    []string
		ok      bool
	}{
		{"!roll 2d6 +1", "roll", []string{"2d6", "+1"}, true},
		{"  !PING", "ping", []string{}, true},
		{"<@42> roll d20", "roll", []string{"d20"}, true},
		{"<@!42> help", "help", []string{}, true},
		{"hello there", "", nil, false},
		{"!", "", nil, false},
		{"<@7> roll", "", nil, false},
	}
	for _, tt := range tests {
		name, args, ok := parseCommand(tt.content, "!", "42")
		assert.Equal(t, tt.ok, ok, tt.content)
		if tt.ok {
			assert.Equal(t, tt.name, name, tt.content)
			assert.Equal(t, tt.args, args, tt.content)
		}
	}
}

type slashCmd struct{ name string }

func (c *slashCmd) Name() string        { return c.name }
func (c *slashCmd) Description() string { return "test " + c.name }
func (c *slashCmd) Category() string    { return "" }
func (c *slashCmd) Run(context.Context, command.Context) error {
	return nil
}
func (c *slashCmd) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.name, Description: c.Description()}
}

type plainCmd struct{}

func (plainCmd) Name() string                               { return "plain" }
func (plainCmd) Description() string                        { return "no slash" }
func (plainCmd) Run(context.Context, *cmd.Invocation) error { return nil }

func TestDefinitions_UnwrapsMiddleware(t *testing.T) {
	r := cmd.NewRegistry()
	passthrough := func(c cmd.Command) cmd.Command { return cmd.Wrap(c, c.Run) }
	command.RegisterCommand(r, &slashCmd{name: "b"}, passthrough)
	command.RegisterCommand(r, &slashCmd{name: "a"})
	r.Register(plainCmd{})

	defs := definitions(r)
	if assert.Len(t, defs, 2) {
		assert.Equal(t, "a", defs[0].Name)
		assert.Equal(t, discordgo.ChatApplicationCommand, defs[1].Type)
	}
}

func TestHashCommands_OrderIndependent(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "a", Description: "x", Type: discordgo.ChatApplicationCommand}
	b := &discordgo.ApplicationCommand{
		Name: "b", Description: "y", Type: discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{{Name: "o", Type: discordgo.ApplicationCommandOptionString}},
	}

	assert.Equal(t, hashCommands([]*discordgo.ApplicationCommand{a, b}), hashCommands([]*discordgo.ApplicationCommand{b, a}))

	changed := *b
	changed.Description = "z"
	assert.NotEqual(t, hashCommands([]*discordgo.ApplicationCommand{a, b}), hashCommands([]*discordgo.ApplicationCommand{a, &changed}))
}
