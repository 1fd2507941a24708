// Package intents checks that the bot's gateway intents cover what a command
// depends on.
package intents

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"command-plugins/internal/command"
	"command-plugins/internal/plugin"

	"github.com/bwmarrin/discordgo"
)

var intentNames = []struct {
	intent discordgo.Intent
	name   string
}{
	{discordgo.IntentGuilds, "Guilds"},
	{discordgo.IntentGuildMembers, "GuildMembers"},
	{discordgo.IntentGuildModeration, "GuildModeration"},
	{discordgo.IntentGuildEmojis, "GuildEmojisAndStickers"},
	{discordgo.IntentGuildIntegrations, "GuildIntegrations"},
	{discordgo.IntentGuildWebhooks, "GuildWebhooks"},
	{discordgo.IntentGuildInvites, "GuildInvites"},
	{discordgo.IntentGuildVoiceStates, "GuildVoiceStates"},
	{discordgo.IntentGuildPresences, "GuildPresences"},
	{discordgo.IntentGuildMessages, "GuildMessages"},
	{discordgo.IntentGuildMessageReactions, "GuildMessageReactions"},
	{discordgo.IntentGuildMessageTyping, "GuildMessageTyping"},
	{discordgo.IntentDirectMessages, "DirectMessages"},
	{discordgo.IntentDirectMessageReactions, "DirectMessageReactions"},
	{discordgo.IntentDirectMessageTyping, "DirectMessageTyping"},
	{discordgo.IntentMessageContent, "MessageContent"},
	{discordgo.IntentGuildScheduledEvents, "GuildScheduledEvents"},
	{discordgo.IntentAutoModerationConfiguration, "AutoModerationConfiguration"},
	{discordgo.IntentAutoModerationExecution, "AutoModerationExecution"},
}

// Names lists the flags set in i in bit order. Bits without a known name are
// rendered as 1<<n.
func Names(i discordgo.Intent) []string {
	names := []string{}
	for rest := uint64(i); rest != 0; rest &= rest - 1 {
		bit := discordgo.Intent(1) << bits.TrailingZeros64(rest)
		names = append(names, name(bit))
	}
	return names
}

func name(bit discordgo.Intent) string {
	for _, n := range intentNames {
		if n.intent == bit {
			return n.name
		}
	}
	return fmt.Sprintf("1<<%d", bits.TrailingZeros64(uint64(bit)))
}

// Missing returns the required intents absent from actual.
func Missing(actual, required discordgo.Intent) discordgo.Intent {
	return required &^ actual
}

// Error reports that an event needs intents the bot did not identify with.
type Error struct {
	EventID  string
	Expected discordgo.Intent
	Actual   discordgo.Intent
}

func (e *Error) Error() string {
	return fmt.Sprintf("Event %s expects intents [ %s ] but bot has [ %s ]",
		hexID(e.EventID),
		strings.Join(Names(e.Expected), ", "),
		strings.Join(Names(e.Actual), ", "))
}

// MissingIntents is the part of Expected the bot lacks.
func (e *Error) MissingIntents() discordgo.Intent {
	return Missing(e.Actual, e.Expected)
}

func hexID(id string) string {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return id
	}
	return "0x" + strconv.FormatUint(n, 16)
}

// Handler receives the mismatch before the invocation halts.
type Handler func(ev command.Context, err *Error)

type intentsPlugin struct {
	required discordgo.Intent
	onError  Handler
}

// Plugin halts invocations when the session lacks any of required. With a nil
// handler the mismatch is returned as the invocation's error.
func Plugin(required discordgo.Intent, onError Handler) plugin.Plugin {
	return &intentsPlugin{required: required, onError: onError}
}

func (p *intentsPlugin) Name() string        { return "intents" }
func (p *intentsPlugin) Description() string { return "checks gateway intents" }
func (p *intentsPlugin) Kind() plugin.Kind   { return plugin.KindEvent }

func (p *intentsPlugin) Execute(ev command.Context, ctrl *plugin.Controller) (plugin.Result, error) {
	var actual discordgo.Intent
	if s := ev.Client(); s != nil {
		actual = s.Identify.Intents
	}
	if Missing(actual, p.required) == 0 {
		return ctrl.Next(), nil
	}

	err := &Error{EventID: ev.ID(), Expected: p.required, Actual: actual}
	if p.onError == nil {
		return ctrl.Stop(), err
	}
	p.onError(ev, err)
	return ctrl.Stop(), nil
}
