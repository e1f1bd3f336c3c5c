package middleware

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/internal/config"
	"github.com/keshon/modbot/internal/metrics"
	"github.com/keshon/modbot/internal/permission"
	"github.com/keshon/modbot/internal/storage"
	"github.com/keshon/modbot/pkg/cmd"
)

const guildID = "g1"

type fakeCommand struct {
	moderation bool
	err        error
	runs       int
}

func (f *fakeCommand) Name() string        { return "fake" }
func (f *fakeCommand) Description() string { return "test command" }
func (f *fakeCommand) Usage() string       { return "fake" }
func (f *fakeCommand) Moderation() bool    { return f.moderation }
func (f *fakeCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	f.runs++
	return f.err
}

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      guildID,
		OwnerID: "1",
		Roles: []*discordgo.Role{
			{ID: guildID, Name: "@everyone"},
			{ID: "r-kick", Permissions: discordgo.PermissionKickMembers},
			{ID: "r-mod"},
		},
	}
}

func setup(t *testing.T, ev *permission.Evaluator, guild string, roles ...string) (cmd.Command, *fakeCommand, *command.MessageContext, *bot.MockSession) {
	t.Helper()
	f := &fakeCommand{moderation: true}
	reg := cmd.NewRegistry()
	command.RegisterCommand(reg, f, Chain(ev)...)
	c, ok := reg.Get("fake")
	require.True(t, ok)

	s := &bot.MockSession{}
	s.On("Guild", guildID).Return(testGuild(), nil)
	s.On("ChannelMessageSendReply", "c1", mock.Anything, mock.Anything).Return(&discordgo.Message{}, nil)

	mc := &command.MessageContext{
		Session: s,
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "m1",
			GuildID:   guild,
			ChannelID: "c1",
			Author:    &discordgo.User{ID: "42", Username: "alice"},
			Member:    &discordgo.Member{Roles: roles},
		}},
		Config:  &config.Config{Prefix: "."},
		Metrics: metrics.New(),
	}
	return c, f, mc, s
}

func invoke(c cmd.Command, mc *command.MessageContext, args ...string) error {
	return c.Run(context.Background(), &cmd.Invocation{Name: c.Name(), Args: args, Data: mc})
}

func TestGuildOnlyDropsDirectMessages(t *testing.T) {
	c, f, mc, s := setup(t, permission.NewEvaluator(mo.None[string](), false), "")

	require.NoError(t, invoke(c, mc))
	assert.Zero(t, f.runs)
	s.AssertNotCalled(t, "ChannelMessageSendReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestModeratorCheckDenies(t *testing.T) {
	c, f, mc, s := setup(t, permission.NewEvaluator(mo.None[string](), false), guildID)

	require.NoError(t, invoke(c, mc, "<@7>"))
	assert.Zero(t, f.runs)
	s.AssertCalled(t, "ChannelMessageSendReply", "c1", deniedReply, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Metrics.Commands.WithLabelValues("fake", "denied")))
}

func TestModeratorCheckAllowsNativePermission(t *testing.T) {
	c, f, mc, _ := setup(t, permission.NewEvaluator(mo.None[string](), false), guildID, "r-kick")

	require.NoError(t, invoke(c, mc))
	assert.Equal(t, 1, f.runs)
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Metrics.Commands.WithLabelValues("fake", "ok")))
}

func TestModeratorCheckModRoleOnly(t *testing.T) {
	ev := permission.NewEvaluator(mo.Some("r-mod"), true)

	c, f, mc, _ := setup(t, ev, guildID, "r-kick")
	require.NoError(t, invoke(c, mc))
	assert.Zero(t, f.runs, "native permissions are not enough")

	c, f, mc, _ = setup(t, ev, guildID, "r-mod")
	require.NoError(t, invoke(c, mc))
	assert.Equal(t, 1, f.runs)
}

func TestModeratorCheckSkipsNonModerationCommands(t *testing.T) {
	c, f, mc, s := setup(t, permission.NewEvaluator(mo.None[string](), false), guildID)
	f.moderation = false

	require.NoError(t, invoke(c, mc))
	assert.Equal(t, 1, f.runs)
	s.AssertNotCalled(t, "Guild", guildID)
}

func TestMetricsCountErrors(t *testing.T) {
	c, f, mc, _ := setup(t, permission.NewEvaluator(mo.None[string](), false), guildID, "r-kick")
	f.err = errors.New("boom")

	assert.Error(t, invoke(c, mc))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Metrics.Commands.WithLabelValues("fake", "error")))
}

func TestCommandLoggerRecordsHistory(t *testing.T) {
	st, err := storage.New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	defer st.Close()

	c, _, mc, _ := setup(t, permission.NewEvaluator(mo.None[string](), false), guildID, "r-kick")
	mc.Storage = st

	require.NoError(t, invoke(c, mc, "<@7>", "spam"))

	history, err := st.FetchCommandHistory(guildID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fake", history[0].Command)
	assert.Equal(t, "<@7> spam", history[0].Args)
	assert.Equal(t, "alice", history[0].Username)
	assert.NotEmpty(t, history[0].ID)
}
