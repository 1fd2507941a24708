package filter

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

const (
	guildID   = "900"
	ownerID   = "100"
	memberID  = "200"
	adminRole = "910"
	modRole   = "920"
	category  = "930"
	textChan  = "940"
	nsfwChan  = "950"
)

func fixture(t *testing.T) *discordgo.Session {
	t.Helper()
	s := commandtest.NewSession(discordgo.IntentsGuilds)
	commandtest.AddGuild(s, guildID, ownerID,
		discordgo.PermissionViewChannel|discordgo.PermissionSendMessages,
		&discordgo.Role{ID: adminRole, Name: "admin", Permissions: discordgo.PermissionAdministrator},
		&discordgo.Role{ID: modRole, Name: "mod", Permissions: discordgo.PermissionManageMessages, Mentionable: true},
	)
	commandtest.AddChannel(s, guildID, textChan, category, false)
	commandtest.AddChannel(s, guildID, nsfwChan, "", true)
	return s
}

func constant(v bool, msg string, calls *int) Criterion {
	return Custom(func(command.Context) bool {
		*calls++
		return v
	}, msg)
}

func TestCombinators_EmptyIdentity(t *testing.T) {
	ev := &commandtest.Context{}
	assert.True(t, And().Test(ev))
	assert.False(t, Or().Test(ev))
	assert.True(t, Criterion{}.Test(ev))
}

func TestCombinators_ShortCircuit(t *testing.T) {
	ev := &commandtest.Context{}
	var a, b int

	assert.False(t, And(constant(false, "a", &a), constant(true, "b", &b)).Test(ev))
	assert.Equal(t, 1, a)
	assert.Zero(t, b)

	a, b = 0, 0
	assert.True(t, Or(constant(true, "a", &a), constant(false, "b", &b)).Test(ev))
	assert.Equal(t, 1, a)
	assert.Zero(t, b)
}

func TestCombinators_Messages(t *testing.T) {
	var n int
	a := constant(true, "a", &n)
	b := constant(false, "b", &n)

	assert.Equal(t, "and(a, b)", And(a, b).Message())
	assert.Equal(t, "or(a, b)", Or(a, b).Message())
	assert.Equal(t, "not(a)", Not(a).Message())
	assert.Len(t, And(a, b).Children(), 2)
	assert.Empty(t, a.Children())
}

func TestNot_DoubleNegation(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, ""), nsfwChan)

	c := IsChannelNSFW()
	assert.Equal(t, c.Test(ev), Not(Not(c)).Test(ev))
	assert.NotEqual(t, c.Test(ev), Not(c).Test(ev))
}

func TestWithCustomMessage_ReturnsNewValue(t *testing.T) {
	orig := IsChannelNSFW()
	relabelled := WithCustomMessage(orig, "must be in the red room")

	assert.Equal(t, "channel is nsfw", orig.Message())
	assert.Equal(t, "must be in the red room", relabelled.Message())
	assert.Empty(t, Silent(orig).Message())
}

func TestMake_RejectsWithExplanationsInOrder(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, ""), textChan)

	out, err := plugin.Run(context.Background(), ev, []plugin.Plugin{Make(IsAdministrator(), IsChannelNSFW())},
		func(context.Context) error {
			t.Fatal("command must not run")
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "filter", out.HaltedBy)

	replies := ev.Replies()
	require.Len(t, replies, 1)
	assert.True(t, replies[0].Ephemeral)
	assert.Equal(t, RejectionHeader+"\nhas permission: Administrator\nchannel is nsfw", replies[0].Content)
}

func TestMake_AcceptsMatchingMember(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, "", adminRole), nsfwChan)

	ran := false
	out, err := plugin.Run(context.Background(), ev, []plugin.Plugin{Make(IsAdministrator(), IsChannelNSFW())},
		func(context.Context) error {
			ran = true
			return nil
		})
	require.NoError(t, err)
	assert.Empty(t, out.HaltedBy)
	assert.True(t, ran)
	assert.Empty(t, ev.Replies())
}

func TestEvaluate_SkipsSilentCriteria(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, ""), textChan)

	ok, reasons := Evaluate([]Criterion{Silent(IsGuildOwner()), HasRole(modRole)}, ev)
	assert.False(t, ok)
	assert.Equal(t, []string{"has role <@&" + modRole + ">"}, reasons)
}

func TestPermission(t *testing.T) {
	bit, err := Permission("banmembers")
	require.NoError(t, err)
	assert.Equal(t, int64(discordgo.PermissionBanMembers), bit)

	_, err = Permission("FlyPlanes")
	assert.Error(t, err)

	_, err = HasGuildPermission(discordgo.PermissionBanMembers | discordgo.PermissionKickMembers)
	assert.Error(t, err)

	_, err = HasChannelPermission(1<<62, "")
	assert.Error(t, err)
}

func TestGuildPermissions(t *testing.T) {
	s := fixture(t)
	plain := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, ""), textChan)
	mod := commandtest.InGuild(s, commandtest.AddMember(s, guildID, "201", "", modRole), textChan)
	owner := commandtest.InGuild(s, commandtest.AddMember(s, guildID, ownerID, ""), textChan)

	assert.False(t, CanBanMembers().Test(plain))
	assert.False(t, CanBanMembers().Test(mod))
	assert.True(t, CanBanMembers().Test(owner))
	assert.True(t, IsAdministrator().Test(owner))

	c, err := HasGuildPermission(discordgo.PermissionManageMessages)
	require.NoError(t, err)
	assert.True(t, c.Test(mod))
	assert.False(t, c.Test(plain))
}

func TestGuildPermissions_FallsBackToInteractionPermissions(t *testing.T) {
	s := commandtest.NewSession(0)
	ev := &commandtest.Context{
		Session: s,
		Guild:   "unknown",
		User:    &discordgo.User{ID: memberID},
		GuildMember: &discordgo.Member{
			User:        &discordgo.User{ID: memberID},
			Permissions: discordgo.PermissionKickMembers,
		},
	}
	assert.True(t, CanKickMembers().Test(ev))
	assert.False(t, CanBanMembers().Test(ev))
}

func TestChannelPermissions(t *testing.T) {
	s := fixture(t)
	ch, err := s.State.Channel(textChan)
	require.NoError(t, err)
	ch.PermissionOverwrites = []*discordgo.PermissionOverwrite{{
		ID:   guildID,
		Type: discordgo.PermissionOverwriteTypeRole,
		Deny: discordgo.PermissionSendMessages,
	}}
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, ""), textChan)

	assert.False(t, CanSendMessages("").Test(ev))
	assert.True(t, CanSendMessages(nsfwChan).Test(ev))
	assert.True(t, CanViewChannel("").Test(ev))
	assert.Equal(t, "has channel permission: SendMessages in "+nsfwChan, CanSendMessages(nsfwChan).Message())
}

func TestChannelPermissions_PassOutsideGuild(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InDM(s, memberID, "960")

	assert.True(t, CanManageMessages("").Test(ev))
	assert.False(t, CanBanMembers().Test(ev))
}

func TestChannelLeaves(t *testing.T) {
	s := fixture(t)
	m := commandtest.AddMember(s, guildID, memberID, "")
	inText := commandtest.InGuild(s, m, textChan)
	inNSFW := commandtest.InGuild(s, m, nsfwChan)

	assert.True(t, IsChannelID(textChan).Test(inText))
	assert.False(t, IsChannelID(textChan).Test(inNSFW))
	assert.True(t, ChannelIDIn("1", nsfwChan).Test(inNSFW))
	assert.True(t, HasParentID(category).Test(inText))
	assert.False(t, HasParentID(category).Test(inNSFW))
	assert.True(t, ParentIDIn("1", category).Test(inText))
	assert.Equal(t, "channel is one of: <#1>, <#2>", ChannelIDIn("1", "2").Message())
}

func TestMemberLeaves(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, memberID, "Bobby", modRole), textChan)

	assert.True(t, HasRole(modRole).Test(ev))
	assert.True(t, HasSomeRole(adminRole, modRole).Test(ev))
	assert.False(t, HasEveryRole(adminRole, modRole).Test(ev))
	assert.True(t, HasMentionableRole().Test(ev))
	assert.True(t, HasNickname("").Test(ev))
	assert.True(t, HasNickname("Bobby").Test(ev))
	assert.False(t, HasNickname("Rob").Test(ev))
	assert.False(t, IsGuildOwner().Test(ev))
	assert.True(t, IsUserID(memberID).Test(ev))
	assert.True(t, UserIDIn("1", memberID).Test(ev))
	assert.True(t, IsInGuild().Test(ev))
	assert.False(t, IsInDM().Test(ev))

	dm := commandtest.InDM(s, memberID, "960")
	assert.False(t, HasRole(modRole).Test(dm))
	assert.False(t, HasNickname("").Test(dm))
	assert.True(t, IsInDM().Test(dm))
}

func TestIsGuildOwner(t *testing.T) {
	s := fixture(t)
	ev := commandtest.InGuild(s, commandtest.AddMember(s, guildID, ownerID, ""), textChan)
	assert.True(t, IsGuildOwner().Test(ev))
}

func TestIsBotOwner(t *testing.T) {
	ev := &commandtest.Context{User: &discordgo.User{ID: memberID}}
	assert.False(t, IsBotOwner().Test(ev), "no application info")

	ev.App = &discordgo.Application{Owner: &discordgo.User{ID: memberID}}
	assert.True(t, IsBotOwner().Test(ev))

	ev.App = &discordgo.Application{
		Owner: &discordgo.User{ID: "1"},
		Team:  &discordgo.Team{Members: []*discordgo.TeamMember{{User: &discordgo.User{ID: memberID}}}},
	}
	assert.True(t, IsBotOwner().Test(ev))
}

func everyPermissionLeaf() map[string]Criterion {
	return map[string]Criterion{
		"CanAddReactions":            CanAddReactions(""),
		"CanAttachFiles":             CanAttachFiles(""),
		"CanBanMembers":              CanBanMembers(),
		"CanChangeNickname":          CanChangeNickname(),
		"CanConnect":                 CanConnect(""),
		"CanCreateInstantInvite":     CanCreateInstantInvite(""),
		"CanDeafenMembers":           CanDeafenMembers(""),
		"CanEmbedLinks":              CanEmbedLinks(""),
		"CanKickMembers":             CanKickMembers(),
		"CanManageChannelWebhooks":   CanManageChannelWebhooks(""),
		"CanManageChannels":          CanManageChannels(""),
		"CanManageEmojisAndStickers": CanManageEmojisAndStickers(),
		"CanManageGuild":             CanManageGuild(),
		"CanManageGuildWebhooks":     CanManageGuildWebhooks(),
		"CanManageMessages":          CanManageMessages(""),
		"CanManageNicknames":         CanManageNicknames(),
		"CanManageRoles":             CanManageRoles(),
		"CanMentionEveryone":         CanMentionEveryone(""),
		"CanMoveMembers":             CanMoveMembers(""),
		"CanMuteMembers":             CanMuteMembers(""),
		"CanPrioritySpeaker":         CanPrioritySpeaker(""),
		"CanReadMessageHistory":      CanReadMessageHistory(""),
		"CanViewChannel":             CanViewChannel(""),
		"CanSendMessages":            CanSendMessages(""),
		"CanSendTTSMessages":         CanSendTTSMessages(""),
		"CanSpeak":                   CanSpeak(""),
		"CanStream":                  CanStream(""),
		"CanUseExternalEmojis":       CanUseExternalEmojis(""),
		"CanUseVoiceActivity":        CanUseVoiceActivity(""),
		"CanViewAuditLog":            CanViewAuditLog(),
		"CanViewGuildInsights":       CanViewGuildInsights(),
	}
}

func TestPermissionLeaves_OwnerAndAdministratorPassEverything(t *testing.T) {
	s := fixture(t)
	ch, err := s.State.Channel(textChan)
	require.NoError(t, err)
	ch.PermissionOverwrites = []*discordgo.PermissionOverwrite{{
		ID:   guildID,
		Type: discordgo.PermissionOverwriteTypeRole,
		Deny: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
	}}

	admin := commandtest.InGuild(s, commandtest.AddMember(s, guildID, "300", "", adminRole), textChan)
	owner := commandtest.InGuild(s, commandtest.AddMember(s, guildID, ownerID, ""), textChan)

	for name, c := range everyPermissionLeaf() {
		assert.True(t, c.Test(admin), "admin: %s", name)
		assert.True(t, c.Test(owner), "owner: %s", name)
	}
	assert.True(t, IsAdministrator().Test(admin))
	assert.True(t, IsAdministrator().Test(owner))
}

func TestPermissionLeaves_AdministratorFromInteraction(t *testing.T) {
	ev := &commandtest.Context{
		Session: commandtest.NewSession(0),
		Guild:   "unknown",
		User:    &discordgo.User{ID: memberID},
		GuildMember: &discordgo.Member{
			User:        &discordgo.User{ID: memberID},
			Permissions: discordgo.PermissionAdministrator,
		},
	}
	assert.True(t, CanViewGuildInsights().Test(ev))
	assert.True(t, CanManageNicknames().Test(ev))
}

func TestChannelPermissions_MemberNotInState(t *testing.T) {
	s := fixture(t)
	m := &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: "400"}, Roles: []string{modRole}}
	text := commandtest.InGuild(s, m, textChan)

	assert.True(t, CanManageMessages("").Test(text))
	assert.True(t, CanSendMessages("").Test(text))
	assert.False(t, CanManageChannels("").Test(text))

	plain := commandtest.InGuild(s, &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: "401"}}, textChan)
	assert.False(t, CanManageMessages("").Test(plain))
}

func TestChannelPermissions_SlashUsesResolvedPermissions(t *testing.T) {
	s := fixture(t)
	m := &discordgo.Member{
		GuildID:     guildID,
		User:        &discordgo.User{ID: "402"},
		Roles:       []string{"999"},
		Permissions: discordgo.PermissionViewChannel | discordgo.PermissionManageMessages,
	}
	ev := commandtest.InGuild(s, m, textChan)
	ev.Slash = true

	assert.True(t, CanManageMessages("").Test(ev))
	c, err := HasGuildPermission(discordgo.PermissionManageMessages)
	require.NoError(t, err)
	assert.False(t, c.Test(ev), "guild check reads the cached roles")
}

func TestChannelPermissions_Overwrites(t *testing.T) {
	s := fixture(t)
	ch, err := s.State.Channel(textChan)
	require.NoError(t, err)
	ch.PermissionOverwrites = []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionSendMessages},
		{ID: modRole, Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionSendMessages},
		{ID: "500", Type: discordgo.PermissionOverwriteTypeMember, Deny: discordgo.PermissionSendMessages},
	}
	mod := commandtest.InGuild(s, &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: "501"}, Roles: []string{modRole}}, textChan)
	muted := commandtest.InGuild(s, &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: "500"}, Roles: []string{modRole}}, textChan)
	plain := commandtest.InGuild(s, &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: "502"}}, textChan)

	assert.True(t, CanSendMessages("").Test(mod))
	assert.False(t, CanSendMessages("").Test(muted))
	assert.False(t, CanSendMessages("").Test(plain))
}
