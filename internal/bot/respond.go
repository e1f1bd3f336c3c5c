package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

const ColorBlue = 0x3498DB

// Reply answers m in its channel as a message reply. Failures are logged only:
// a reply that cannot be delivered has nowhere else to go.
func Reply(s Session, m *discordgo.Message, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		slog.Warn("failed to send reply", "channel", m.ChannelID, "err", err)
	}
}

// MessageEmbed sends an embed to a channel and logs failures.
func MessageEmbed(s Session, channelID string, embed *discordgo.MessageEmbed) *discordgo.Message {
	if embed.Color == 0 {
		embed.Color = ColorBlue
	}
	msg, err := s.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		slog.Warn("failed to send embed", "channel", channelID, "err", err)
		return nil
	}
	return msg
}
