package command

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Discord-specific contexts (what the runtime passes when executing).

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate

	values Values
}

type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	// Arguments is the message content after the prefix and command name, split on whitespace.
	Arguments []string

	values Values
}

var (
	_ Context = (*SlashInteractionContext)(nil)
	_ Context = (*MessageContext)(nil)
)

func (c *SlashInteractionContext) Client() *discordgo.Session { return c.Session }
func (c *SlashInteractionContext) ID() string                 { return c.Event.ID }
func (c *SlashInteractionContext) GuildID() string            { return c.Event.GuildID }
func (c *SlashInteractionContext) ChannelID() string          { return c.Event.ChannelID }
func (c *SlashInteractionContext) Member() *discordgo.Member  { return c.Event.Member }
func (c *SlashInteractionContext) IsSlash() bool              { return true }
func (c *SlashInteractionContext) Args() []string             { return nil }
func (c *SlashInteractionContext) Values() Values             { return c.values }
func (c *SlashInteractionContext) SetValues(v Values)         { c.values = v }

func (c *SlashInteractionContext) Author() *discordgo.User {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User
	}
	return c.Event.User
}

func (c *SlashInteractionContext) Option(name string) (string, bool) {
	if c.Event.Type != discordgo.InteractionApplicationCommand {
		return "", false
	}
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name && opt.Value != nil {
			return optionString(opt.Value), true
		}
	}
	return "", false
}

// optionString renders an option value the way a user would type it.
// Numeric options decode as float64, which fmt prints in exponent form.
func optionString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func (c *SlashInteractionContext) Reply(ctx context.Context, content string, ephemeral bool) error {
	return RespondEphemeral(ctx, c.Session, c.Event, content, ephemeral)
}

func (c *SlashInteractionContext) Application() (*discordgo.Application, error) {
	return application(c.Session)
}

func (c *MessageContext) Client() *discordgo.Session { return c.Session }
func (c *MessageContext) ID() string                 { return c.Event.ID }
func (c *MessageContext) GuildID() string            { return c.Event.GuildID }
func (c *MessageContext) ChannelID() string          { return c.Event.ChannelID }
func (c *MessageContext) Author() *discordgo.User    { return c.Event.Author }
func (c *MessageContext) IsSlash() bool              { return false }
func (c *MessageContext) Args() []string             { return c.Arguments }
func (c *MessageContext) Option(string) (string, bool) {
	return "", false
}
func (c *MessageContext) Values() Values     { return c.values }
func (c *MessageContext) SetValues(v Values) { c.values = v }

// Member is nil in DMs. The gateway omits Member.User on message events, so
// it is filled from the author.
func (c *MessageContext) Member() *discordgo.Member {
	m := c.Event.Member
	if m == nil || c.Event.GuildID == "" {
		return nil
	}
	if m.User == nil {
		cp := *m
		cp.User = c.Event.Author
		cp.GuildID = c.Event.GuildID
		return &cp
	}
	return m
}

func (c *MessageContext) Reply(ctx context.Context, content string, _ bool) error {
	return MessageReply(ctx, c.Session, c.Event.Message, content)
}

func (c *MessageContext) Application() (*discordgo.Application, error) {
	return application(c.Session)
}

var applications sync.Map // *discordgo.Session -> *discordgo.Application

// application returns the bot application, fetched once per session.
func application(s *discordgo.Session) (*discordgo.Application, error) {
	if app, ok := applications.Load(s); ok {
		return app.(*discordgo.Application), nil
	}
	app, err := s.Application("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}
	applications.Store(s, app)
	return app, nil
}

// Providers describe how a command is registered with Discord.

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordMeta is exposed by the Discord adapter so middleware can read the
// category without depending on the concrete command type.
type DiscordMeta interface {
	Category() string
}

// DiscordCommand is what individual Discord commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Category() string
	Run(ctx context.Context, c Context) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the
// registry. It also implements SlashProvider and DiscordMeta by delegating.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string    { return a.Cmd.Category() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	c, ok := FromInvocation(inv)
	if !ok {
		return fmt.Errorf("command %s: unsupported invocation data %T", a.Cmd.Name(), inv.Data)
	}
	return a.Cmd.Run(ctx, c)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// RegisterCommand registers a Discord command with the registry and applies middlewares.
func RegisterCommand(r *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) cmd.Command {
	c := cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...)
	r.Register(c)
	return c
}
