package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/internal/permission"
)

const maxDeleteDays = 7

type BanCommand struct{}

func (c *BanCommand) Name() string        { return "ban" }
func (c *BanCommand) Description() string { return "Ban a member and optionally delete their recent messages" }
func (c *BanCommand) Usage() string       { return "ban @user [deleteDays] reason" }
func (c *BanCommand) Moderation() bool    { return true }

func (c *BanCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	user, member := mentionedMember(mc)
	if member == nil {
		mc.Reply(usage(mc, "ban", c.Usage()))
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
	if !permission.CanModerate(guild, self, member, discordgo.PermissionBanMembers) {
		mc.Reply("I can't ban that user.")
		return nil
	}

	days, rest := parseBanArgs(bot.WithoutMentionOf(mc.Args, user.ID))
	reason := reasonOf(rest)
	if err := mc.Session.GuildBanCreateWithReason(mc.Event.GuildID, user.ID, reason, days); err != nil {
		slog.Error("failed to ban member", "guild", mc.Event.GuildID, "user", user.ID, "err", err)
	}

	mc.Reply(fmt.Sprintf("User <@%s> (%s) has been banned.\nReason: %s", user.ID, user.ID, reason))
	return nil
}

// parseBanArgs takes a leading integer as the number of days of messages to
// delete, clamped to what the platform accepts.
func parseBanArgs(args []string) (int, []string) {
	if len(args) == 0 {
		return 0, args
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, args
	}
	return min(max(n, 0), maxDeleteDays), args[1:]
}
