package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/keshon/modbot/internal/command"
)

type UnmuteCommand struct{}

func (c *UnmuteCommand) Name() string        { return "unmute" }
func (c *UnmuteCommand) Description() string { return "Clear a member's timeout and Muted role" }
func (c *UnmuteCommand) Usage() string       { return "unmute @user" }
func (c *UnmuteCommand) Moderation() bool    { return true }

// Run clears both mute mechanisms regardless of which one was used.
func (c *UnmuteCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	user, member := mentionedMember(mc)
	if member == nil {
		mc.Reply(usage(mc, "unmute", c.Usage()))
		return nil
	}
	guildID := mc.Event.GuildID

	if err := mc.Session.GuildMemberTimeout(guildID, user.ID, nil, auditReason(mc, "Unmuted", defaultReason)); err != nil {
		slog.Debug("failed to clear timeout", "guild", guildID, "user", user.ID, "err", err)
	}

	role, err := findMutedRole(mc.Session, guildID)
	if err != nil {
		slog.Warn("failed to look up Muted role", "guild", guildID, "err", err)
	}
	if role != nil && slices.Contains(member.Roles, role.ID) {
		if err := mc.Session.GuildMemberRoleRemove(guildID, user.ID, role.ID, auditReason(mc, "Unmuted", defaultReason)); err != nil {
			slog.Error("failed to remove Muted role", "guild", guildID, "user", user.ID, "err", err)
		}
	}

	mc.Reply(fmt.Sprintf("User <@%s> (%s) has been unmuted.", user.ID, user.ID))
	return nil
}
