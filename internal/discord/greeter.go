package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
)

const welcomeText = "Hello, <@%s>! Welcome to our server.\n\n" +
	"Read the rules and enjoy the community! Please respect the server rules and behave appropriately. " +
	"If you have questions or need help, open a ticket!"

// welcome posts the greeting embed for a member who just joined.
func (b *Bot) welcome(s bot.Session, m *discordgo.Member) {
	if !b.cfg.WelcomeEnabled() || m == nil || m.User == nil {
		return
	}

	ch, err := bot.FetchChannel(s, b.cfg.WelcomeChannelID)
	if err != nil {
		slog.Warn("failed to fetch welcome channel", "channel", b.cfg.WelcomeChannelID, "err", err)
		return
	}
	if ch.GuildID != m.GuildID || ch.Type != discordgo.ChannelTypeGuildText {
		return
	}

	guildName := m.GuildID
	if g, err := bot.FetchGuild(s, m.GuildID); err == nil && g.Name != "" {
		guildName = g.Name
	}

	since := "Unknown date"
	if !m.JoinedAt.IsZero() {
		since = m.JoinedAt.Format("2006-01-02")
	}

	bot.MessageEmbed(s, ch.ID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎉 Welcome to %s 🎉", guildName),
		Description: fmt.Sprintf(welcomeText, m.User.ID),
		Color:       bot.ColorBlue,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Member since: " + since},
	})
}
