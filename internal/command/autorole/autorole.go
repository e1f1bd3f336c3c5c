// Package autorole implements the command that posts a role-picker embed and
// binds each of its reactions to a role.
package autorole

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	roles "github.com/keshon/modbot/internal/autorole"
	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/pkg/retrylimit"
)

const (
	embedTitle      = "🎮 Pick your role!"
	reactionRetries = 3
)

type AutoroleCommand struct{}

func (c *AutoroleCommand) Name() string        { return "autorole" }
func (c *AutoroleCommand) Description() string { return "Post a reaction role picker in a channel" }
func (c *AutoroleCommand) Usage() string       { return "autorole #channel emoji1 @role1 emoji2 @role2 ..." }
func (c *AutoroleCommand) Moderation() bool    { return true }

type pair struct {
	emoji  string
	roleID string
}

func (c *AutoroleCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	channelID, pairs, problem := c.parse(mc)
	if problem != "" {
		mc.Reply(problem)
		return nil
	}

	ch, err := bot.FetchChannel(mc.Session, channelID)
	if err != nil || ch.GuildID != mc.Event.GuildID || ch.Type != discordgo.ChannelTypeGuildText {
		mc.Reply("That channel is not a text channel in this server.")
		return nil
	}

	embed := &discordgo.MessageEmbed{Title: embedTitle, Color: bot.ColorBlue}
	for _, p := range pairs {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   p.emoji,
			Value:  "<@&" + p.roleID + ">",
			Inline: true,
		})
	}

	msg, err := mc.Session.ChannelMessageSendEmbed(ch.ID, embed)
	if err != nil {
		return fmt.Errorf("failed to send autorole message: %w", err)
	}

	bindings := make([]roles.Binding, 0, len(pairs))
	for _, p := range pairs {
		bindings = append(bindings, roles.Binding{
			GuildID:   mc.Event.GuildID,
			MessageID: msg.ID,
			Emoji:     p.emoji,
			RoleID:    p.roleID,
		})
	}
	if err := mc.Autoroles.Add(bindings...); err != nil {
		return fmt.Errorf("failed to register autoroles: %w", err)
	}

	for _, p := range pairs {
		key := bot.EmojiKey(p.emoji)
		err := retrylimit.WithRetryMax(ctx, func() error {
			return bot.Retryable(mc.Session.MessageReactionAdd(ch.ID, msg.ID, key))
		}, mc.Limiter, reactionRetries)
		if err != nil {
			slog.Warn("failed to add autorole reaction", "channel", ch.ID, "message", msg.ID, "emoji", key, "err", err)
		}
	}

	slog.Info("autorole message created", "guild", mc.Event.GuildID, "channel", ch.ID, "message", msg.ID, "bindings", len(bindings))
	mc.Reply("Autorole set up!")
	return nil
}

// parse validates the arguments and returns either the target channel with
// its (emoji, role) pairs or the guidance to show the moderator.
func (c *AutoroleCommand) parse(mc *command.MessageContext) (string, []pair, string) {
	guide := fmt.Sprintf("Mention a channel: `%s%s`", mc.Config.Prefix, c.Usage())
	if len(mc.Args) == 0 {
		return "", nil, guide
	}
	channelID, ok := bot.ChannelMentionID(mc.Args[0])
	if !ok {
		return "", nil, guide
	}

	mentioned := mc.Event.MentionRoles
	if len(mentioned) == 0 {
		return "", nil, "Mention at least one role."
	}

	rest := mc.Args[1:]
	if len(rest) < 2 || len(rest) != 2*len(mentioned) {
		return "", nil, "Provide emoji + role pairs."
	}

	pairs := make([]pair, 0, len(mentioned))
	seen := make(map[string]bool, len(mentioned))
	for i := 0; i < len(rest); i += 2 {
		emoji := rest[i]
		roleID, ok := bot.RoleMentionID(rest[i+1])
		if !ok {
			return "", nil, "Provide emoji + role pairs."
		}
		key := bot.EmojiKey(emoji)
		if seen[key] {
			return "", nil, "Each emoji can only be used once per autorole message."
		}
		seen[key] = true
		pairs = append(pairs, pair{emoji: emoji, roleID: roleID})
	}
	return channelID, pairs, ""
}
