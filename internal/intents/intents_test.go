package intents

import (
	"context"
	"testing"

	"command-plugins/internal/command"
	"command-plugins/internal/command/commandtest"
	"command-plugins/internal/plugin"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"Guilds", "GuildMessages", "MessageContent"},
		Names(discordgo.IntentGuilds|discordgo.IntentMessageContent|discordgo.IntentGuildMessages))
	assert.Empty(t, Names(0))
	assert.Equal(t, []string{"1<<30"}, Names(1<<30))
}

func TestMissing(t *testing.T) {
	have := discordgo.IntentGuilds | discordgo.IntentGuildMessages
	assert.Zero(t, Missing(have, discordgo.IntentGuilds))
	assert.Equal(t, discordgo.IntentMessageContent,
		Missing(have, discordgo.IntentGuilds|discordgo.IntentMessageContent))
}

func TestError_Message(t *testing.T) {
	err := &Error{
		EventID:  "255",
		Expected: discordgo.IntentGuilds | discordgo.IntentMessageContent,
		Actual:   discordgo.IntentGuilds,
	}
	assert.Equal(t, "Event 0xff expects intents [ Guilds, MessageContent ] but bot has [ Guilds ]", err.Error())
	assert.Equal(t, discordgo.IntentMessageContent, err.MissingIntents())
}

func TestPlugin_PassesWithIntents(t *testing.T) {
	ev := &commandtest.Context{Session: commandtest.NewSession(discordgo.IntentGuilds | discordgo.IntentGuildMessages)}

	ran := false
	out, err := plugin.Run(context.Background(), ev, []plugin.Plugin{Plugin(discordgo.IntentGuildMessages, nil)},
		func(context.Context) error {
			ran = true
			return nil
		})
	require.NoError(t, err)
	assert.Empty(t, out.HaltedBy)
	assert.True(t, ran)
}

func TestPlugin_HandlerReceivesMismatch(t *testing.T) {
	ev := &commandtest.Context{EventID: "16", Session: commandtest.NewSession(discordgo.IntentGuilds)}

	var got *Error
	out, err := plugin.Run(context.Background(), ev,
		[]plugin.Plugin{Plugin(discordgo.IntentMessageContent, func(_ command.Context, e *Error) { got = e })},
		nil)
	require.NoError(t, err)
	assert.Equal(t, "intents", out.HaltedBy)
	require.NotNil(t, got)
	assert.Equal(t, "Event 0x10 expects intents [ MessageContent ] but bot has [ Guilds ]", got.Error())
}

func TestPlugin_NoHandlerSurfacesError(t *testing.T) {
	ev := &commandtest.Context{EventID: "16", Session: commandtest.NewSession(0)}

	out, err := plugin.Run(context.Background(), ev, []plugin.Plugin{Plugin(discordgo.IntentGuilds, nil)}, nil)
	var intentsErr *Error
	require.ErrorAs(t, err, &intentsErr)
	assert.Equal(t, "intents", out.HaltedBy)
	assert.Equal(t, "Event 0x10 expects intents [ Guilds ] but bot has [  ]", err.Error()[len("plugin intents: "):])
}
