package filter

import (
	"slices"
	"strings"

	"command-plugins/internal/command"

	"github.com/bwmarrin/discordgo"
)

func mentions(prefix, suffix string, ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = prefix + id + suffix
	}
	return strings.Join(parts, ", ")
}

func channel(ev command.Context) *discordgo.Channel {
	s := ev.Client()
	if s == nil || s.State == nil {
		return nil
	}
	ch, err := s.State.Channel(ev.ChannelID())
	if err != nil {
		return nil
	}
	return ch
}

func guild(ev command.Context) *discordgo.Guild {
	s := ev.Client()
	if s == nil || s.State == nil || ev.GuildID() == "" {
		return nil
	}
	g, err := s.State.Guild(ev.GuildID())
	if err != nil {
		return nil
	}
	return g
}

func authorID(ev command.Context) string {
	if u := ev.Author(); u != nil {
		return u.ID
	}
	return ""
}

// ChannelIDIn passes when the invocation happens in one of ids.
func ChannelIDIn(ids ...string) Criterion {
	ids = slices.Clone(ids)
	return newCriterion("channelIdIn", func(ev command.Context) bool {
		return slices.Contains(ids, ev.ChannelID())
	}, "channel is one of: "+mentions("<#", ">", ids))
}

// IsChannelID passes in channel id only.
func IsChannelID(id string) Criterion {
	return newCriterion("isChannelId", func(ev command.Context) bool {
		return ev.ChannelID() == id
	}, "channel is <#"+id+">")
}

// IsChannelNSFW passes in age-restricted channels.
func IsChannelNSFW() Criterion {
	return newCriterion("isChannelNsfw", func(ev command.Context) bool {
		ch := channel(ev)
		return ch != nil && ch.NSFW
	}, "channel is nsfw")
}

// HasParentID passes when the current channel sits under category id.
func HasParentID(id string) Criterion {
	return newCriterion("hasParentId", func(ev command.Context) bool {
		ch := channel(ev)
		return ch != nil && ch.GuildID != "" && ch.ParentID == id
	}, "channel is under <#"+id+">")
}

// ParentIDIn passes when the current channel sits under one of ids.
func ParentIDIn(ids ...string) Criterion {
	ids = slices.Clone(ids)
	return newCriterion("parentIdIn", func(ev command.Context) bool {
		ch := channel(ev)
		return ch != nil && ch.GuildID != "" && slices.Contains(ids, ch.ParentID)
	}, "channel is under one of: "+mentions("<#", ">", ids))
}

// HasRole passes for members holding role id.
func HasRole(id string) Criterion {
	return newCriterion("hasRole", func(ev command.Context) bool {
		m := ev.Member()
		return m != nil && slices.Contains(m.Roles, id)
	}, "has role <@&"+id+">")
}

// HasEveryRole passes for members holding all of ids.
func HasEveryRole(ids ...string) Criterion {
	cs := make([]Criterion, len(ids))
	for i, id := range ids {
		cs[i] = HasRole(id)
	}
	return And(cs...).WithMessage("has all of: " + mentions("<@&", ">", ids))
}

// HasSomeRole passes for members holding at least one of ids.
func HasSomeRole(ids ...string) Criterion {
	cs := make([]Criterion, len(ids))
	for i, id := range ids {
		cs[i] = HasRole(id)
	}
	return Or(cs...).WithMessage("has any of: " + mentions("<@&", ">", ids))
}

// HasMentionableRole passes for members holding at least one mentionable role.
func HasMentionableRole() Criterion {
	return newCriterion("hasMentionableRole", func(ev command.Context) bool {
		m := ev.Member()
		g := guild(ev)
		if m == nil || g == nil {
			return false
		}
		for _, r := range g.Roles {
			if r.Mentionable && slices.Contains(m.Roles, r.ID) {
				return true
			}
		}
		return false
	}, "has a mentionable role")
}

// HasNickname passes for members whose nickname is nick. An empty nick
// accepts any nickname.
func HasNickname(nick string) Criterion {
	message := "has a nickname"
	if nick != "" {
		message = "has nickname " + nick
	}
	return newCriterion("hasNickname", func(ev command.Context) bool {
		m := ev.Member()
		if m == nil || m.Nick == "" {
			return false
		}
		return nick == "" || m.Nick == nick
	}, message)
}

// IsGuildOwner passes for the owner of the guild the invocation happens in.
func IsGuildOwner() Criterion {
	return newCriterion("isGuildOwner", func(ev command.Context) bool {
		g := guild(ev)
		id := authorID(ev)
		return g != nil && id != "" && g.OwnerID == id
	}, "is the guild owner")
}

// IsBotOwner passes for the application owner or, for team-owned
// applications, any team member.
func IsBotOwner() Criterion {
	return newCriterion("isBotOwner", func(ev command.Context) bool {
		id := authorID(ev)
		app, err := ev.Application()
		if id == "" || err != nil || app == nil {
			return false
		}
		if app.Owner != nil && app.Owner.ID == id {
			return true
		}
		if app.Team != nil {
			for _, tm := range app.Team.Members {
				if tm.User != nil && tm.User.ID == id {
					return true
				}
			}
		}
		return false
	}, "is the bot owner")
}

// IsUserID passes for user id only.
func IsUserID(id string) Criterion {
	return newCriterion("isUserId", func(ev command.Context) bool {
		return authorID(ev) == id
	}, "is <@"+id+">")
}

// UserIDIn passes for any of ids.
func UserIDIn(ids ...string) Criterion {
	ids = slices.Clone(ids)
	return newCriterion("userIdIn", func(ev command.Context) bool {
		return slices.Contains(ids, authorID(ev))
	}, "is one of: "+mentions("<@", ">", ids))
}

// IsInGuild passes for invocations inside a guild.
func IsInGuild() Criterion {
	return newCriterion("isInGuild", func(ev command.Context) bool {
		return ev.GuildID() != ""
	}, "is in a guild")
}

// IsInDM passes for invocations in direct messages.
func IsInDM() Criterion {
	return Not(IsInGuild()).WithMessage("is in dm")
}
