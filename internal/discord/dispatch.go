package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/pkg/cmd"
)

// dispatch routes one inbound message. Registered commands always run, even
// while a say session waits in the channel. Any other message is offered to
// pending sessions and otherwise ignored.
func (b *Bot) dispatch(ctx context.Context, s bot.Session, selfID string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	var c cmd.Command
	inv, ok := cmd.Parse(b.cfg.Prefix, m.Content)
	if ok {
		c, ok = b.commands.Get(inv.Name)
	}
	if !ok {
		b.sessions.Offer(m.Message)
		return
	}

	inv.Data = &command.MessageContext{
		Session:   s,
		Event:     m,
		SelfID:    selfID,
		Config:    b.cfg,
		Autoroles: b.autoroles,
		Sessions:  b.sessions,
		Storage:   b.storage,
		Metrics:   b.metrics,
		Limiter:   b.limiter,
	}
	if err := c.Run(ctx, inv); err != nil {
		slog.Error("error running command", "command", inv.Name, "guild", m.GuildID, "err", err)
		bot.MessageEmbed(s, m.ChannelID, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Error running command: %v", err),
		})
	}
}
