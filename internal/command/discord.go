// Package command adapts Discord prefix commands to the transport-agnostic
// cmd.Command so they can live in a cmd.Registry and be wrapped by middleware.
package command

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/autorole"
	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/collector"
	"github.com/keshon/modbot/internal/config"
	"github.com/keshon/modbot/internal/metrics"
	"github.com/keshon/modbot/internal/storage"
	"github.com/keshon/modbot/pkg/cmd"
	"github.com/keshon/modbot/pkg/retrylimit"
)

// MessageContext is what the dispatcher passes as cmd.Invocation.Data for a
// prefix command. Storage and Metrics may be nil.
type MessageContext struct {
	Session bot.Session
	Event   *discordgo.MessageCreate
	Args    []string
	SelfID  string

	Config    *config.Config
	Autoroles *autorole.Registry
	Sessions  *collector.Table
	Storage   *storage.Storage
	Metrics   *metrics.Metrics
	Limiter   *retrylimit.AdaptiveLimiter
}

// Reply answers the triggering message.
func (mc *MessageContext) Reply(content string) {
	bot.Reply(mc.Session, mc.Event.Message, content)
}

// Guild returns the guild the command was sent in.
func (mc *MessageContext) Guild() (*discordgo.Guild, error) {
	return bot.FetchGuild(mc.Session, mc.Event.GuildID)
}

// Self returns the bot's own member in the command's guild.
func (mc *MessageContext) Self() (*discordgo.Member, error) {
	return bot.FetchMember(mc.Session, mc.Event.GuildID, mc.SelfID)
}

// DiscordMeta is exposed by the adapter so middleware and help output can read
// command metadata through cmd.Root.
type DiscordMeta interface {
	Usage() string
	Moderation() bool
}

// DiscordCommand is what individual prefix commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Usage() string
	// Moderation commands sit behind the moderator gate.
	Moderation() bool
	Run(ctx context.Context, mc *MessageContext) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }
func (a *DiscordAdapter) Usage() string       { return a.Cmd.Usage() }
func (a *DiscordAdapter) Moderation() bool    { return a.Cmd.Moderation() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := inv.Data.(*MessageContext)
	if !ok {
		return fmt.Errorf("command %s: unexpected context %T", a.Cmd.Name(), inv.Data)
	}
	mc.Args = inv.Args
	return a.Cmd.Run(ctx, mc)
}

// RegisterCommand adds a Discord command to reg with middlewares applied.
func RegisterCommand(reg *cmd.Registry, c DiscordCommand, mws ...cmd.Middleware) {
	reg.Register(cmd.Apply(&DiscordAdapter{Cmd: c}, mws...))
}

// MetaOf returns the Discord metadata of a registered (possibly wrapped) command.
func MetaOf(c cmd.Command) (DiscordMeta, bool) {
	m, ok := cmd.Root(c).(DiscordMeta)
	return m, ok
}
