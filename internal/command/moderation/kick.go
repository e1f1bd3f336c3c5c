package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/internal/permission"
)

type KickCommand struct{}

func (c *KickCommand) Name() string        { return "kick" }
func (c *KickCommand) Description() string { return "Kick a member from the server" }
func (c *KickCommand) Usage() string       { return "kick @user reason" }
func (c *KickCommand) Moderation() bool    { return true }

func (c *KickCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	user, member := mentionedMember(mc)
	if member == nil {
		mc.Reply(usage(mc, "kick", c.Usage()))
		return nil
	}

	guild, err := mc.Guild()
	if err != nil {
		return fmt.Errorf("failed to fetch guild: %w", err)
	}
	self, err := mc.Self()
	if err != nil {
		return fmt.Errorf("failed to fetch bot member: %w", err)
	}
	if !permission.CanModerate(guild, self, member, discordgo.PermissionKickMembers) {
		mc.Reply("I can't kick that user.")
		return nil
	}

	reason := reasonOf(bot.WithoutMentionOf(mc.Args, user.ID))
	if err := mc.Session.GuildMemberDeleteWithReason(mc.Event.GuildID, user.ID, reason); err != nil {
		slog.Error("failed to kick member", "guild", mc.Event.GuildID, "user", user.ID, "err", err)
	}

	mc.Reply(fmt.Sprintf("User <@%s> (%s) has been kicked from the server.\nReason: %s", user.ID, user.ID, reason))
	return nil
}
