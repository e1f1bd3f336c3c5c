package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/internal/config"
	"github.com/keshon/modbot/internal/metrics"
)

const (
	guildID  = "100000000000000001"
	selfID   = "999"
	targetID = "111"
	modID    = "555"
)

var targetUser = &discordgo.User{ID: targetID, Username: "troll"}

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      guildID,
		OwnerID: "1",
		Roles: []*discordgo.Role{
			{ID: guildID, Name: "@everyone"},
			{ID: "r-bot", Name: "bot", Position: 10, Permissions: discordgo.PermissionKickMembers | discordgo.PermissionBanMembers | discordgo.PermissionManageRoles},
			{ID: "r-low", Name: "member", Position: 1},
			{ID: "r-high", Name: "admin", Position: 20},
		},
	}
}

// newContext builds a command context for a message whose arguments are args
// and whose mentions are mentioned. Replies are accepted and recorded.
func newContext(args []string, mentioned ...*discordgo.User) (*command.MessageContext, *bot.MockSession) {
	s := &bot.MockSession{}
	s.On("ChannelMessageSendReply", "c1", mock.Anything, mock.Anything).Return(&discordgo.Message{ID: "reply"}, nil)

	return &command.MessageContext{
		Session: s,
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "m1",
			ChannelID: "c1",
			GuildID:   guildID,
			Author:    &discordgo.User{ID: modID, Username: "mod"},
			Mentions:  mentioned,
		}},
		Args:    args,
		SelfID:  selfID,
		Config:  &config.Config{Prefix: "."},
		Metrics: metrics.New(),
	}, s
}

func withMembers(s *bot.MockSession, targetRoles ...string) {
	s.On("Guild", guildID).Return(testGuild(), nil)
	s.On("GuildMember", guildID, selfID).Return(&discordgo.Member{User: &discordgo.User{ID: selfID}, Roles: []string{"r-bot"}}, nil)
	s.On("GuildMember", guildID, targetID).Return(&discordgo.Member{User: targetUser, Roles: targetRoles}, nil)
}

func replies(s *bot.MockSession) []string {
	var out []string
	for _, c := range s.Calls {
		if c.Method == "ChannelMessageSendReply" {
			out = append(out, c.Arguments.String(1))
		}
	}
	return out
}

func lastReply(t *testing.T, s *bot.MockSession) string {
	t.Helper()
	r := replies(s)
	require.NotEmpty(t, r, "expected a reply")
	return r[len(r)-1]
}

func TestKickWithoutMentionShowsUsage(t *testing.T) {
	mc, s := newContext(nil)

	require.NoError(t, (&KickCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "Mention the user you want to kick: `.kick @user reason`", lastReply(t, s))
	s.AssertNotCalled(t, "GuildMemberDeleteWithReason", mock.Anything, mock.Anything, mock.Anything)
}

func TestKick(t *testing.T) {
	mc, s := newContext([]string{"<@111>", "spamming", "links"}, targetUser)
	withMembers(s, "r-low")
	s.On("GuildMemberDeleteWithReason", guildID, targetID, "spamming links").Return(nil)

	require.NoError(t, (&KickCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "User <@111> (111) has been kicked from the server.\nReason: spamming links", lastReply(t, s))
	s.AssertExpectations(t)
}

func TestKickPlatformFailureStillReplies(t *testing.T) {
	mc, s := newContext([]string{"<@111>"}, targetUser)
	withMembers(s)
	s.On("GuildMemberDeleteWithReason", guildID, targetID, defaultReason).Return(errors.New("500"))

	require.NoError(t, (&KickCommand{}).Run(context.Background(), mc))
	assert.Contains(t, lastReply(t, s), "has been kicked")
}

func TestKickRefusesHigherRankedTarget(t *testing.T) {
	mc, s := newContext([]string{"<@111>"}, targetUser)
	withMembers(s, "r-high")

	require.NoError(t, (&KickCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "I can't kick that user.", lastReply(t, s))
	s.AssertNotCalled(t, "GuildMemberDeleteWithReason", mock.Anything, mock.Anything, mock.Anything)
}

func TestBanWithDeleteDays(t *testing.T) {
	mc, s := newContext([]string{"<@111>", "12", "raid", "bot"}, targetUser)
	withMembers(s, "r-low")
	s.On("GuildBanCreateWithReason", guildID, targetID, "raid bot", 7).Return(nil)

	require.NoError(t, (&BanCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "User <@111> (111) has been banned.\nReason: raid bot", lastReply(t, s))
	s.AssertExpectations(t)
}

func TestParseBanArgs(t *testing.T) {
	tests := []struct {
		args   []string
		days   int
		reason string
	}{
		{nil, 0, ""},
		{[]string{"3", "spam"}, 3, "spam"},
		{[]string{"-2", "spam"}, 0, "spam"},
		{[]string{"99"}, 7, ""},
		{[]string{"spam", "3"}, 0, "spam 3"},
	}
	for _, tt := range tests {
		days, rest := parseBanArgs(tt.args)
		assert.Equal(t, tt.days, days, "args %v", tt.args)
		assert.Equal(t, tt.reason, strings.Join(rest, " "), "args %v", tt.args)
	}
}

func TestParseMuteArgs(t *testing.T) {
	tests := []struct {
		args    []string
		minutes int
		reason  string
	}{
		{nil, 10, ""},
		{[]string{"30", "flooding"}, 30, "flooding"},
		{[]string{"0", "flooding"}, 10, "flooding"},
		{[]string{"-5"}, 10, ""},
		{[]string{"999999"}, maxMuteMinutes, ""},
		{[]string{"flooding"}, 10, "flooding"},
	}
	for _, tt := range tests {
		minutes, rest := parseMuteArgs(tt.args)
		assert.Equal(t, tt.minutes, minutes, "args %v", tt.args)
		assert.Equal(t, tt.reason, strings.Join(rest, " "), "args %v", tt.args)
	}
}

func bans(n int, prefix string) []*discordgo.GuildBan {
	out := make([]*discordgo.GuildBan, n)
	for i := range out {
		out[i] = &discordgo.GuildBan{User: &discordgo.User{ID: fmt.Sprintf("%s%d", prefix, i), Username: "user"}}
	}
	return out
}

func TestUnbanPagesThroughBans(t *testing.T) {
	mc, s := newContext([]string{"troll"})
	first := bans(bansPageSize, "9")
	second := append(bans(3, "8"), &discordgo.GuildBan{User: targetUser})
	s.On("GuildBans", guildID, bansPageSize, "", "").Return(first, nil)
	s.On("GuildBans", guildID, bansPageSize, "", first[len(first)-1].User.ID).Return(second, nil)
	s.On("GuildBanDelete", guildID, targetID).Return(nil)

	require.NoError(t, (&UnbanCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "User <@111> (111) has been unbanned.", lastReply(t, s))
	s.AssertExpectations(t)
}

func TestUnbanNotFound(t *testing.T) {
	mc, s := newContext([]string{"424242"})
	s.On("GuildBans", guildID, bansPageSize, "", "").Return(bans(2, "9"), nil)

	require.NoError(t, (&UnbanCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "That user is not banned or the id/tag is wrong.", lastReply(t, s))
	s.AssertNotCalled(t, "GuildBanDelete", mock.Anything, mock.Anything)
}

func TestUnbanWithoutArgsShowsUsage(t *testing.T) {
	mc, s := newContext(nil)

	require.NoError(t, (&UnbanCommand{}).Run(context.Background(), mc))
	assert.Contains(t, lastReply(t, s), "`.unban USER_ID`")
}

func TestMuteUsesTimeout(t *testing.T) {
	mc, s := newContext([]string{"<@111>", "15", "caps"}, targetUser)
	withMembers(s)
	s.On("GuildMemberTimeout", guildID, targetID, mock.MatchedBy(func(until *time.Time) bool {
		d := time.Until(*until)
		return d > 14*time.Minute && d <= 15*time.Minute
	})).Return(nil)

	require.NoError(t, (&MuteCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "User <@111> (111) has been muted for 15 minutes.\nReason: caps", lastReply(t, s))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Metrics.Mutes.WithLabelValues("timeout")))
}

func TestMuteFallsBackToExistingRole(t *testing.T) {
	mc, s := newContext([]string{"<@111>"}, targetUser)
	withMembers(s)
	s.On("GuildMemberTimeout", guildID, targetID, mock.Anything).Return(errors.New("missing permissions"))
	s.On("GuildRoles", guildID).Return([]*discordgo.Role{{ID: "r-muted", Name: "Muted"}}, nil)
	s.On("GuildMemberRoleAdd", guildID, targetID, "r-muted").Return(nil)

	outcome := Mute(context.Background(), mc, targetID, 10*time.Minute, defaultReason)
	assert.Equal(t, MuteFallbackSucceeded, outcome)
	s.AssertNotCalled(t, "GuildRoleCreate", mock.Anything, mock.Anything)
}

func TestMuteCreatesRoleWithOverwrites(t *testing.T) {
	mc, s := newContext([]string{"<@111>", "5"}, targetUser)
	withMembers(s)
	s.On("GuildMemberTimeout", guildID, targetID, mock.Anything).Return(errors.New("missing permissions"))
	s.On("GuildRoles", guildID).Return([]*discordgo.Role{}, nil)
	s.On("GuildRoleCreate", guildID, &discordgo.RoleParams{Name: "Muted"}).Return(&discordgo.Role{ID: "r-muted", Name: "Muted"}, nil)
	s.On("GuildChannels", guildID).Return([]*discordgo.Channel{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}, nil)
	s.On("ChannelPermissionSet", mock.Anything, "r-muted", discordgo.PermissionOverwriteTypeRole, int64(0), int64(mutedDeny)).Return(nil)
	s.On("GuildMemberRoleAdd", guildID, targetID, "r-muted").Return(nil)

	require.NoError(t, (&MuteCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "User <@111> (111) has been muted (role) for 5 minutes.\nReason: No reason provided", lastReply(t, s))
	s.AssertNumberOfCalls(t, "ChannelPermissionSet", 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Metrics.Mutes.WithLabelValues("role")))
}

func TestMuteFailsWhenBothMechanismsFail(t *testing.T) {
	mc, s := newContext([]string{"<@111>"}, targetUser)
	withMembers(s)
	s.On("GuildMemberTimeout", guildID, targetID, mock.Anything).Return(errors.New("missing permissions"))
	s.On("GuildRoles", guildID).Return([]*discordgo.Role{{ID: "r-muted", Name: "Muted"}}, nil)
	s.On("GuildMemberRoleAdd", guildID, targetID, "r-muted").Return(errors.New("missing permissions"))

	require.NoError(t, (&MuteCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "Couldn't mute <@111>. Check my permissions and role position.", lastReply(t, s))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Metrics.Mutes.WithLabelValues("failed")))
}

func TestUnmuteClearsBothMechanisms(t *testing.T) {
	mc, s := newContext([]string{"<@111>"}, targetUser)
	s.On("GuildMember", guildID, targetID).Return(&discordgo.Member{User: targetUser, Roles: []string{"r-muted"}}, nil)
	s.On("GuildMemberTimeout", guildID, targetID, (*time.Time)(nil)).Return(errors.New("not timed out"))
	s.On("GuildRoles", guildID).Return([]*discordgo.Role{{ID: "r-muted", Name: "Muted"}}, nil)
	s.On("GuildMemberRoleRemove", guildID, targetID, "r-muted").Return(nil)

	require.NoError(t, (&UnmuteCommand{}).Run(context.Background(), mc))
	assert.Equal(t, "User <@111> (111) has been unmuted.", lastReply(t, s))
	s.AssertExpectations(t)
}

func TestUnmuteSkipsRoleNotHeld(t *testing.T) {
	mc, s := newContext([]string{"<@111>"}, targetUser)
	withMembers(s, "r-low")
	s.On("GuildMemberTimeout", guildID, targetID, (*time.Time)(nil)).Return(nil)
	s.On("GuildRoles", guildID).Return([]*discordgo.Role{{ID: "r-muted", Name: "Muted"}}, nil)

	require.NoError(t, (&UnmuteCommand{}).Run(context.Background(), mc))
	s.AssertNotCalled(t, "GuildMemberRoleRemove", mock.Anything, mock.Anything, mock.Anything)
}
