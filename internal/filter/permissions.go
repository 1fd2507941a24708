package filter

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"command-plugins/internal/command"

	"github.com/bwmarrin/discordgo"
)

type permissionFlag struct {
	name    string
	bit     int64
	display string
}

// ────────────────────────────────────────────────────────────────
// PERMISSION NAME MAPS
// ────────────────────────────────────────────────────────────────

var permissionFlags = []permissionFlag{
	{"CreateInstantInvite", discordgo.PermissionCreateInstantInvite, "Create Instant Invite"},
	{"KickMembers", discordgo.PermissionKickMembers, "Kick Members"},
	{"BanMembers", discordgo.PermissionBanMembers, "Ban Members"},
	{"Administrator", discordgo.PermissionAdministrator, "Administrator"},
	{"ManageChannels", discordgo.PermissionManageChannels, "Manage Channels"},
	{"ManageGuild", discordgo.PermissionManageGuild, "Manage Server"},
	{"AddReactions", discordgo.PermissionAddReactions, "Add Reactions"},
	{"ViewAuditLog", discordgo.PermissionViewAuditLogs, "View Audit Logs"},
	{"PrioritySpeaker", discordgo.PermissionVoicePrioritySpeaker, "Priority Speaker"},
	{"Stream", discordgo.PermissionVoiceStreamVideo, "Stream Video"},
	{"ViewChannel", discordgo.PermissionViewChannel, "View Channel"},
	{"SendMessages", discordgo.PermissionSendMessages, "Send Messages"},
	{"SendTTSMessages", discordgo.PermissionSendTTSMessages, "Send TTS Messages"},
	{"ManageMessages", discordgo.PermissionManageMessages, "Manage Messages"},
	{"EmbedLinks", discordgo.PermissionEmbedLinks, "Embed Links"},
	{"AttachFiles", discordgo.PermissionAttachFiles, "Attach Files"},
	{"ReadMessageHistory", discordgo.PermissionReadMessageHistory, "Read Message History"},
	{"MentionEveryone", discordgo.PermissionMentionEveryone, "Mention Everyone"},
	{"UseExternalEmojis", discordgo.PermissionUseExternalEmojis, "Use External Emojis"},
	{"ViewGuildInsights", discordgo.PermissionViewGuildInsights, "View Guild Insights"},
	{"Connect", discordgo.PermissionVoiceConnect, "Connect to Voice Channel"},
	{"Speak", discordgo.PermissionVoiceSpeak, "Speak"},
	{"MuteMembers", discordgo.PermissionVoiceMuteMembers, "Mute Members"},
	{"DeafenMembers", discordgo.PermissionVoiceDeafenMembers, "Deafen Members"},
	{"MoveMembers", discordgo.PermissionVoiceMoveMembers, "Move Members"},
	{"UseVAD", discordgo.PermissionVoiceUseVAD, "Use Voice Activity Detection"},
	{"ChangeNickname", discordgo.PermissionChangeNickname, "Change Nickname"},
	{"ManageNicknames", discordgo.PermissionManageNicknames, "Manage Nicknames"},
	{"ManageRoles", discordgo.PermissionManageRoles, "Manage Roles"},
	{"ManageWebhooks", discordgo.PermissionManageWebhooks, "Manage Webhooks"},
	{"ManageGuildExpressions", discordgo.PermissionManageGuildExpressions, "Manage Expressions (Emojis, Stickers, Sounds)"},
	{"UseApplicationCommands", discordgo.PermissionUseApplicationCommands, "Use Application Commands"},
	{"RequestToSpeak", discordgo.PermissionVoiceRequestToSpeak, "Request to Speak"},
	{"ManageEvents", discordgo.PermissionManageEvents, "Manage Events"},
	{"ManageThreads", discordgo.PermissionManageThreads, "Manage Threads"},
	{"CreatePublicThreads", discordgo.PermissionCreatePublicThreads, "Create Public Threads"},
	{"CreatePrivateThreads", discordgo.PermissionCreatePrivateThreads, "Create Private Threads"},
	{"UseExternalStickers", discordgo.PermissionUseExternalStickers, "Use External Stickers"},
	{"SendMessagesInThreads", discordgo.PermissionSendMessagesInThreads, "Send Messages in Threads"},
	{"UseEmbeddedActivities", discordgo.PermissionUseEmbeddedActivities, "Use Embedded Activities"},
	{"ModerateMembers", discordgo.PermissionModerateMembers, "Moderate Members"},
}

// PermissionNames maps a permission bit to its human-readable name.
var PermissionNames = func() map[int64]string {
	names := make(map[int64]string, len(permissionFlags))
	for _, f := range permissionFlags {
		names[f.bit] = f.display
	}
	return names
}()

// Permission resolves a flag name such as "BanMembers" (case-insensitive) to its bit.
func Permission(name string) (int64, error) {
	for _, f := range permissionFlags {
		if strings.EqualFold(f.name, name) {
			return f.bit, nil
		}
	}
	return 0, fmt.Errorf("unknown permission: %s", name)
}

// flagName returns the flag name of a single permission bit.
func flagName(bit int64) (string, error) {
	for _, f := range permissionFlags {
		if f.bit == bit {
			return f.name, nil
		}
	}
	return "", fmt.Errorf("unknown permission: 0x%x", bit)
}

// allPermissions is every bit set. Owners and administrators hold it, so no
// single-flag check can reject them whatever discordgo.PermissionAll covers.
const allPermissions int64 = math.MaxInt64

func withAdminOverride(perms int64) int64 {
	if perms&discordgo.PermissionAdministrator != 0 {
		return allPermissions
	}
	return perms
}

// guildPermissions computes the caller's guild-wide permissions from the
// state cache, falling back to the resolved permissions interactions carry.
func guildPermissions(ev command.Context) (int64, bool) {
	m := ev.Member()
	if m == nil || m.User == nil {
		return 0, false
	}
	if s := ev.Client(); s != nil && s.State != nil {
		if g, err := s.State.Guild(ev.GuildID()); err == nil {
			return basePermissions(g, m.User.ID, m.Roles), true
		}
	}
	if m.Permissions != 0 {
		return withAdminOverride(m.Permissions), true
	}
	return 0, false
}

// basePermissions folds @everyone and the member's roles. roles comes from
// the event, so the member does not have to be in the state cache.
func basePermissions(g *discordgo.Guild, userID string, roles []string) int64 {
	if userID == g.OwnerID {
		return allPermissions
	}
	var perms int64
	for _, r := range g.Roles {
		if r.ID == g.ID || slices.Contains(roles, r.ID) {
			perms |= r.Permissions
		}
	}
	return withAdminOverride(perms)
}

// channelPermissions applies the channel overwrites on top of the base
// permissions: @everyone first, then the member's roles, then the member.
func channelPermissions(g *discordgo.Guild, ch *discordgo.Channel, userID string, roles []string) int64 {
	perms := basePermissions(g, userID, roles)
	if perms == allPermissions {
		return perms
	}

	for _, o := range ch.PermissionOverwrites {
		if o.Type == discordgo.PermissionOverwriteTypeRole && o.ID == g.ID {
			perms &^= o.Deny
			perms |= o.Allow
			break
		}
	}

	var deny, allow int64
	for _, o := range ch.PermissionOverwrites {
		if o.Type == discordgo.PermissionOverwriteTypeRole && slices.Contains(roles, o.ID) {
			deny |= o.Deny
			allow |= o.Allow
		}
	}
	perms &^= deny
	perms |= allow

	for _, o := range ch.PermissionOverwrites {
		if o.Type == discordgo.PermissionOverwriteTypeMember && o.ID == userID {
			perms &^= o.Deny
			perms |= o.Allow
			break
		}
	}
	return perms
}

// HasGuildPermission passes when the caller holds perm guild-wide. perm must
// be a single known permission bit.
func HasGuildPermission(perm int64) (Criterion, error) {
	name, err := flagName(perm)
	if err != nil {
		return Criterion{}, err
	}
	return newCriterion("hasGuildPermission", func(ev command.Context) bool {
		perms, ok := guildPermissions(ev)
		return ok && perms&perm == perm
	}, "has permission: "+name), nil
}

// HasChannelPermission passes when the caller holds perm in channelID, or in
// the invocation's channel when channelID is empty. Channels without guild
// permissions (DMs, or channels missing from the cache) pass.
func HasChannelPermission(perm int64, channelID string) (Criterion, error) {
	name, err := flagName(perm)
	if err != nil {
		return Criterion{}, err
	}
	message := "has permission: " + name
	if channelID != "" {
		message = fmt.Sprintf("has channel permission: %s in %s", name, channelID)
	}
	return newCriterion("hasChannelPermission", func(ev command.Context) bool {
		id := channelID
		if id == "" {
			id = ev.ChannelID()
		}
		s := ev.Client()
		if s == nil || s.State == nil {
			return true
		}
		ch, err := s.State.Channel(id)
		if err != nil || ch.GuildID == "" {
			return true
		}
		m := ev.Member()
		if m == nil || m.User == nil {
			return false
		}
		// Interactions carry the caller's resolved permissions in the
		// invocation channel.
		if id == ev.ChannelID() && m.Permissions != 0 {
			return withAdminOverride(m.Permissions)&perm == perm
		}
		g, err := s.State.Guild(ch.GuildID)
		if err != nil {
			return m.Permissions != 0 && withAdminOverride(m.Permissions)&perm == perm
		}
		return channelPermissions(g, ch, m.User.ID, m.Roles)&perm == perm
	}, message), nil
}

func mustCriterion(c Criterion, err error) Criterion {
	if err != nil {
		panic(err)
	}
	return c
}

func guildPerm(perm int64) Criterion { return mustCriterion(HasGuildPermission(perm)) }

func channelPerm(perm int64, channelID string) Criterion {
	return mustCriterion(HasChannelPermission(perm, channelID))
}

func CanAddReactions(channelID string) Criterion {
	return channelPerm(discordgo.PermissionAddReactions, channelID)
}

func CanAttachFiles(channelID string) Criterion {
	return channelPerm(discordgo.PermissionAttachFiles, channelID)
}

func CanBanMembers() Criterion { return guildPerm(discordgo.PermissionBanMembers) }

func CanChangeNickname() Criterion { return guildPerm(discordgo.PermissionChangeNickname) }

func CanConnect(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceConnect, channelID)
}

func CanCreateInstantInvite(channelID string) Criterion {
	return channelPerm(discordgo.PermissionCreateInstantInvite, channelID)
}

func CanDeafenMembers(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceDeafenMembers, channelID)
}

func CanEmbedLinks(channelID string) Criterion {
	return channelPerm(discordgo.PermissionEmbedLinks, channelID)
}

func CanKickMembers() Criterion { return guildPerm(discordgo.PermissionKickMembers) }

func CanManageChannelWebhooks(channelID string) Criterion {
	return channelPerm(discordgo.PermissionManageWebhooks, channelID)
}

func CanManageChannels(channelID string) Criterion {
	return channelPerm(discordgo.PermissionManageChannels, channelID)
}

func CanManageEmojisAndStickers() Criterion {
	return guildPerm(discordgo.PermissionManageGuildExpressions)
}

func CanManageGuild() Criterion { return guildPerm(discordgo.PermissionManageGuild) }

func CanManageGuildWebhooks() Criterion { return guildPerm(discordgo.PermissionManageWebhooks) }

func CanManageMessages(channelID string) Criterion {
	return channelPerm(discordgo.PermissionManageMessages, channelID)
}

func CanManageNicknames() Criterion { return guildPerm(discordgo.PermissionManageNicknames) }

func CanManageRoles() Criterion { return guildPerm(discordgo.PermissionManageRoles) }

func CanMentionEveryone(channelID string) Criterion {
	return channelPerm(discordgo.PermissionMentionEveryone, channelID)
}

func CanMoveMembers(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceMoveMembers, channelID)
}

func CanMuteMembers(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceMuteMembers, channelID)
}

func CanPrioritySpeaker(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoicePrioritySpeaker, channelID)
}

func CanReadMessageHistory(channelID string) Criterion {
	return channelPerm(discordgo.PermissionReadMessageHistory, channelID)
}

func CanViewChannel(channelID string) Criterion {
	return channelPerm(discordgo.PermissionViewChannel, channelID)
}

func CanSendMessages(channelID string) Criterion {
	return channelPerm(discordgo.PermissionSendMessages, channelID)
}

func CanSendTTSMessages(channelID string) Criterion {
	return channelPerm(discordgo.PermissionSendTTSMessages, channelID)
}

func CanSpeak(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceSpeak, channelID)
}

func CanStream(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceStreamVideo, channelID)
}

func CanUseExternalEmojis(channelID string) Criterion {
	return channelPerm(discordgo.PermissionUseExternalEmojis, channelID)
}

func CanUseVoiceActivity(channelID string) Criterion {
	return channelPerm(discordgo.PermissionVoiceUseVAD, channelID)
}

func CanViewAuditLog() Criterion { return guildPerm(discordgo.PermissionViewAuditLogs) }

func CanViewGuildInsights() Criterion { return guildPerm(discordgo.PermissionViewGuildInsights) }

// IsAdministrator passes for members with the Administrator permission.
func IsAdministrator() Criterion { return guildPerm(discordgo.PermissionAdministrator) }
