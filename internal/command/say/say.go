// Package say implements the interactive say command: the bot asks for a
// channel, then for a message, and posts that message verbatim.
package say

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/collector"
	"github.com/keshon/modbot/internal/command"
)

// Extra lifetime a session gets past both prompt timeouts before the sweeper
// may drop it.
const sessionGrace = 5 * time.Second

type SayCommand struct{}

func (c *SayCommand) Name() string        { return "say" }
func (c *SayCommand) Description() string { return "Post a message as the bot in another channel" }
func (c *SayCommand) Usage() string       { return "say" }
func (c *SayCommand) Moderation() bool    { return true }

func (c *SayCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	cfg := mc.Config
	sess, err := mc.Sessions.Open(collector.KeyOf(mc.Event.Message), cfg.SayChannelTimeout+cfg.SayMessageTimeout+sessionGrace)
	if errors.Is(err, collector.ErrSessionActive) {
		mc.Reply("You already have a pending say here. Finish that one first.")
		return nil
	}
	if err != nil {
		return err
	}
	defer sess.Close()

	mc.Reply("Enter the **channel ID** where I should send the message.")
	answer, err := sess.Await(ctx, collector.AwaitingChannel, cfg.SayChannelTimeout)
	if err != nil {
		return c.ended(mc, err, "You didn't provide a channel in time.")
	}

	target, ok := textChannel(mc, answer.Content)
	if !ok {
		mc.Metrics.SessionEnded("invalid_channel")
		mc.Reply("Invalid channel ID.")
		return nil
	}

	mc.Reply("Enter the **message** you want me to send.")
	text, err := sess.Await(ctx, collector.AwaitingMessage, cfg.SayMessageTimeout)
	if err != nil {
		return c.ended(mc, err, "You didn't write the message in time.")
	}

	if _, err := mc.Session.ChannelMessageSend(target.ID, text.Content); err != nil {
		slog.Error("failed to send say message", "channel", target.ID, "err", err)
	}
	mc.Metrics.SessionEnded("sent")
	mc.Reply(fmt.Sprintf("Message sent to <#%s>.", target.ID))
	return nil
}

func (c *SayCommand) ended(mc *command.MessageContext, err error, timeoutReply string) error {
	if errors.Is(err, collector.ErrTimeout) {
		mc.Metrics.SessionEnded("timeout")
		mc.Reply(timeoutReply)
		return nil
	}
	mc.Metrics.SessionEnded("cancelled")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, collector.ErrClosed) {
		return nil
	}
	return err
}

// textChannel resolves a raw id or <#id> mention to a text channel of the
// command's guild.
func textChannel(mc *command.MessageContext, content string) (*discordgo.Channel, bool) {
	id, ok := bot.ChannelRef(strings.TrimSpace(content))
	if !ok {
		return nil, false
	}
	ch, err := bot.FetchChannel(mc.Session, id)
	if err != nil || ch == nil {
		return nil, false
	}
	if ch.GuildID != mc.Event.GuildID || ch.Type != discordgo.ChannelTypeGuildText {
		return nil, false
	}
	return ch, true
}
