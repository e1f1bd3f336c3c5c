// Package moderation holds the kick, ban, unban, mute and unmute commands.
package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
)

const defaultReason = "No reason provided"

// mentionedMember returns the first user mentioned in the command and their
// guild membership. A mention of someone outside the guild yields nil.
func mentionedMember(mc *command.MessageContext) (*discordgo.User, *discordgo.Member) {
	u := bot.FirstMentionedUser(mc.Event.Message, mc.SelfID)
	if u == nil {
		return nil, nil
	}
	m, err := bot.FetchMember(mc.Session, mc.Event.GuildID, u.ID)
	if err != nil || m == nil {
		return u, nil
	}
	if m.User == nil {
		m.User = u
	}
	return u, m
}

func reasonOf(args []string) string {
	if r := strings.TrimSpace(strings.Join(args, " ")); r != "" {
		return r
	}
	return defaultReason
}

func usage(mc *command.MessageContext, what, usage string) string {
	return fmt.Sprintf("Mention the user you want to %s: `%s%s`", what, mc.Config.Prefix, usage)
}

func auditReason(mc *command.MessageContext, action, reason string) discordgo.RequestOption {
	return discordgo.WithAuditLogReason(fmt.Sprintf("%s by %s | Reason: %s", action, bot.Tag(mc.Event.Author), reason))
}
