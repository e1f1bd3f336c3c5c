package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/autorole"
	"github.com/keshon/modbot/internal/collector"
	"github.com/keshon/modbot/internal/config"
	"github.com/keshon/modbot/internal/metrics"
	"github.com/keshon/modbot/internal/storage"
	"github.com/keshon/modbot/pkg/cmd"
	"github.com/keshon/modbot/pkg/retrylimit"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMessageReactions

// Bot is the gateway-facing part of the moderation bot.
type Bot struct {
	cfg       *config.Config
	storage   *storage.Storage
	commands  *cmd.Registry
	autoroles *autorole.Registry
	sessions  *collector.Table
	metrics   *metrics.Metrics
	limiter   *retrylimit.AdaptiveLimiter
	router    *autorole.Router

	// ctx is cancelled on shutdown; handlers derive from it.
	ctx context.Context
}

// Deps are the shared components the bot hands to commands. Storage and
// Metrics may be nil.
type Deps struct {
	Storage   *storage.Storage
	Commands  *cmd.Registry
	Autoroles *autorole.Registry
	Sessions  *collector.Table
	Metrics   *metrics.Metrics
	Limiter   *retrylimit.AdaptiveLimiter
}

func New(cfg *config.Config, d Deps) *Bot {
	return &Bot{
		cfg:       cfg,
		storage:   d.Storage,
		commands:  d.Commands,
		autoroles: d.Autoroles,
		sessions:  d.Sessions,
		metrics:   d.Metrics,
		limiter:   d.Limiter,
		ctx:       context.Background(),
	}
}

// Run connects to the gateway and serves events until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.ctx = ctx
	b.router = autorole.NewRouter(dg, b.autoroles, b.metrics)

	dg.Identify.Intents = intents
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageReactionAdd)
	dg.AddHandler(b.onMessageReactionRemove)
	dg.AddHandler(b.onGuildMemberAdd)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	slog.Info("shutdown signal received, closing gateway")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord bot is running",
		"user", r.User.Username,
		"guilds", len(r.Guilds),
		"prefix", b.cfg.Prefix,
		"autoroles", b.autoroles.Len(),
	)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.dispatch(b.ctx, s, s.State.User.ID, m)
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.welcome(s, m.Member)
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.router.Handle(autorole.PartialFromAdd(r), s.State.User.ID)
}

func (b *Bot) onMessageReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.router.Handle(autorole.PartialFromRemove(r), s.State.User.ID)
}
