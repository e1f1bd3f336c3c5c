package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
)

const (
	defaultMuteMinutes = 10
	// Platform limit for a member timeout.
	maxMuteMinutes = 28 * 24 * 60
)

// MuteOutcome records which mute mechanism took effect.
type MuteOutcome int

const (
	MuteSucceeded MuteOutcome = iota
	MuteFallbackSucceeded
	MuteFailed
)

func (o MuteOutcome) String() string {
	switch o {
	case MuteSucceeded:
		return "timeout"
	case MuteFallbackSucceeded:
		return "role"
	default:
		return "failed"
	}
}

type MuteCommand struct{}

func (c *MuteCommand) Name() string        { return "mute" }
func (c *MuteCommand) Description() string { return "Time out a member, falling back to the Muted role" }
func (c *MuteCommand) Usage() string       { return "mute @user [minutes] [reason]" }
func (c *MuteCommand) Moderation() bool    { return true }

func (c *MuteCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	user, member := mentionedMember(mc)
	if member == nil {
		mc.Reply(usage(mc, "mute", c.Usage()))
		return nil
	}

	minutes, rest := parseMuteArgs(bot.WithoutMentionOf(mc.Args, user.ID))
	reason := reasonOf(rest)

	outcome := Mute(ctx, mc, user.ID, time.Duration(minutes)*time.Minute, reason)
	mc.Metrics.MuteApplied(outcome.String())

	switch outcome {
	case MuteSucceeded:
		mc.Reply(fmt.Sprintf("User <@%s> (%s) has been muted for %d minutes.\nReason: %s", user.ID, user.ID, minutes, reason))
	case MuteFallbackSucceeded:
		mc.Reply(fmt.Sprintf("User <@%s> (%s) has been muted (role) for %d minutes.\nReason: %s", user.ID, user.ID, minutes, reason))
	default:
		mc.Reply(fmt.Sprintf("Couldn't mute <@%s>. Check my permissions and role position.", user.ID))
	}
	return nil
}

// Mute applies a native timeout and, when that fails, assigns the Muted role.
func Mute(ctx context.Context, mc *command.MessageContext, userID string, d time.Duration, reason string) MuteOutcome {
	guildID := mc.Event.GuildID
	until := time.Now().Add(d)

	err := mc.Session.GuildMemberTimeout(guildID, userID, &until, auditReason(mc, "Muted", reason))
	if err == nil {
		return MuteSucceeded
	}
	slog.Warn("timeout failed, falling back to Muted role", "guild", guildID, "user", userID, "err", err)

	role, err := ensureMutedRole(ctx, mc)
	if err != nil {
		slog.Error("failed to prepare Muted role", "guild", guildID, "err", err)
		return MuteFailed
	}
	if err := mc.Session.GuildMemberRoleAdd(guildID, userID, role.ID, auditReason(mc, "Muted", reason)); err != nil {
		slog.Error("failed to assign Muted role", "guild", guildID, "user", userID, "err", err)
		return MuteFailed
	}
	return MuteFallbackSucceeded
}

// parseMuteArgs takes a leading integer as the duration in minutes. Absent or
// non-positive durations become the default; long ones are capped.
func parseMuteArgs(args []string) (int, []string) {
	minutes := defaultMuteMinutes
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			args = args[1:]
			if n > 0 {
				minutes = min(n, maxMuteMinutes)
			}
		}
	}
	return minutes, args
}
