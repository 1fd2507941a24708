// Package commandtest provides an in-memory command.Context and a discordgo
// session backed only by its state cache, for testing plugins without a gateway.
package commandtest

import (
	"context"
	"errors"
	"sync"

	"command-plugins/internal/command"

	"github.com/bwmarrin/discordgo"
)

// Reply is a captured Context.Reply call.
type Reply struct {
	Content   string
	Ephemeral bool
}

// Context is a configurable command.Context. Zero fields mean "absent".
type Context struct {
	Session     *discordgo.Session
	EventID     string
	Guild       string
	Channel     string
	User        *discordgo.User
	GuildMember *discordgo.Member
	Slash       bool
	Arguments   []string
	Options     map[string]string
	App         *discordgo.Application
	ReplyErr    error

	mu      sync.Mutex
	replies []Reply
	values  command.Values
}

var _ command.Context = (*Context)(nil)

func (c *Context) Client() *discordgo.Session { return c.Session }
func (c *Context) ID() string                 { return c.EventID }
func (c *Context) GuildID() string            { return c.Guild }
func (c *Context) ChannelID() string          { return c.Channel }
func (c *Context) Author() *discordgo.User    { return c.User }
func (c *Context) Member() *discordgo.Member  { return c.GuildMember }
func (c *Context) IsSlash() bool              { return c.Slash }
func (c *Context) Args() []string             { return c.Arguments }

func (c *Context) Option(name string) (string, bool) {
	v, ok := c.Options[name]
	return v, ok
}

func (c *Context) Reply(_ context.Context, content string, ephemeral bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, Reply{Content: content, Ephemeral: ephemeral})
	return c.ReplyErr
}

func (c *Context) Application() (*discordgo.Application, error) {
	if c.App == nil {
		return nil, errors.New("application not available")
	}
	return c.App, nil
}

func (c *Context) Values() command.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

func (c *Context) SetValues(v command.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = v
}

// Replies returns every reply sent so far.
func (c *Context) Replies() []Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reply(nil), c.replies...)
}

// NewSession returns a session whose state cache can be filled with AddGuild,
// AddChannel and AddMember. It never opens a connection.
func NewSession(intents discordgo.Intent) *discordgo.Session {
	s := &discordgo.Session{State: discordgo.NewState()}
	s.Identify.Intents = intents
	return s
}

// AddGuild caches a guild with an @everyone role granting everyone.
func AddGuild(s *discordgo.Session, id, ownerID string, everyone int64, roles ...*discordgo.Role) *discordgo.Guild {
	g := &discordgo.Guild{
		ID:      id,
		Name:    "guild-" + id,
		OwnerID: ownerID,
		Roles:   append([]*discordgo.Role{{ID: id, Name: "@everyone", Permissions: everyone}}, roles...),
	}
	must(s.State.GuildAdd(g))
	return g
}

// AddChannel caches a guild text channel.
func AddChannel(s *discordgo.Session, guildID, id, parentID string, nsfw bool) *discordgo.Channel {
	ch := &discordgo.Channel{
		ID:       id,
		GuildID:  guildID,
		Name:     "channel-" + id,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
		NSFW:     nsfw,
	}
	must(s.State.ChannelAdd(ch))
	return ch
}

// AddMember caches a guild member and returns it.
func AddMember(s *discordgo.Session, guildID, userID, nick string, roles ...string) *discordgo.Member {
	m := &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Username: "user-" + userID},
		Nick:    nick,
		Roles:   roles,
	}
	must(s.State.MemberAdd(m))
	return m
}

// InGuild builds a Context for member m speaking in channelID.
func InGuild(s *discordgo.Session, m *discordgo.Member, channelID string) *Context {
	return &Context{
		Session:     s,
		EventID:     "1100000000000000001",
		Guild:       m.GuildID,
		Channel:     channelID,
		User:        m.User,
		GuildMember: m,
	}
}

// InDM builds a Context for a direct message from userID.
func InDM(s *discordgo.Session, userID, channelID string) *Context {
	return &Context{
		Session: s,
		EventID: "1100000000000000002",
		Channel: channelID,
		User:    &discordgo.User{ID: userID, Username: "user-" + userID},
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
