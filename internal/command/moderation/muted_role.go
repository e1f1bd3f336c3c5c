package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/pkg/retrylimit"
)

const (
	mutedRoleName    = "Muted"
	overwriteWorkers = 4
	overwriteRetries = 3

	mutedDeny = discordgo.PermissionSendMessages |
		discordgo.PermissionAddReactions |
		discordgo.PermissionVoiceSpeak |
		discordgo.PermissionSendMessagesInThreads
)

func findMutedRole(s bot.Session, guildID string) (*discordgo.Role, error) {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	for _, r := range roles {
		if r.Name == mutedRoleName {
			return r, nil
		}
	}
	return nil, nil
}

// ensureMutedRole returns the guild's Muted role, creating it with deny
// overwrites on every channel when it does not exist yet. Overwrite failures
// are logged; the role is still returned.
func ensureMutedRole(ctx context.Context, mc *command.MessageContext) (*discordgo.Role, error) {
	guildID := mc.Event.GuildID
	role, err := findMutedRole(mc.Session, guildID)
	if err != nil {
		return nil, err
	}
	if role != nil {
		return role, nil
	}

	role, err = mc.Session.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: mutedRoleName},
		discordgo.WithAuditLogReason("Needed for mute command"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s role: %w", mutedRoleName, err)
	}

	channels, err := mc.Session.GuildChannels(guildID)
	if err != nil {
		slog.Warn("failed to list channels for Muted overwrites", "guild", guildID, "err", err)
		return role, nil
	}
	denied := applyMutedOverwrites(ctx, mc.Session, mc.Limiter, role.ID, channels)
	slog.Info("created Muted role", "guild", guildID, "role", role.ID, "channels", denied, "of", len(channels))
	return role, nil
}

// applyMutedOverwrites denies the muted permissions to roleID on every channel
// and returns how many channels were updated.
func applyMutedOverwrites(ctx context.Context, s bot.Session, lim *retrylimit.AdaptiveLimiter, roleID string, channels []*discordgo.Channel) int {
	wp := workerpool.New(overwriteWorkers)
	results := make(chan bool, len(channels))

	for _, ch := range channels {
		wp.Submit(func() {
			err := retrylimit.WithRetryMax(ctx, func() error {
				return bot.Retryable(s.ChannelPermissionSet(ch.ID, roleID, discordgo.PermissionOverwriteTypeRole, 0, mutedDeny))
			}, lim, overwriteRetries)
			if err != nil {
				slog.Warn("failed to set Muted overwrite", "channel", ch.ID, "err", err)
			}
			results <- err == nil
		})
	}
	wp.StopWait()
	close(results)

	n := 0
	for ok := range results {
		if ok {
			n++
		}
	}
	return n
}
