// cmd/discord/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/keshon/modbot/internal/autorole"
	"github.com/keshon/modbot/internal/collector"
	"github.com/keshon/modbot/internal/command"
	autorolecmd "github.com/keshon/modbot/internal/command/autorole"
	"github.com/keshon/modbot/internal/command/moderation"
	"github.com/keshon/modbot/internal/command/say"
	"github.com/keshon/modbot/internal/config"
	"github.com/keshon/modbot/internal/discord"
	"github.com/keshon/modbot/internal/logging"
	"github.com/keshon/modbot/internal/metrics"
	"github.com/keshon/modbot/internal/middleware"
	"github.com/keshon/modbot/internal/permission"
	"github.com/keshon/modbot/internal/storage"
	"github.com/keshon/modbot/pkg/cmd"
	"github.com/keshon/modbot/pkg/retrylimit"
)

var version = "dev"

const sweepInterval = time.Minute

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	_, logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		slog.Error("failed to set up logging", "err", err)
		os.Exit(1)
	}

	slog.Info("starting modbot", "version", version)

	err = run(cfg)
	if err != nil {
		slog.Error("modbot stopped with error", "err", err)
	} else {
		slog.Info("modbot exited cleanly")
	}
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *storage.Storage
	var bindingStore autorole.Store
	if cfg.StoragePath != "" {
		st, err := storage.New(cfg.StoragePath)
		if err != nil {
			return err
		}
		defer st.Close()
		store, bindingStore = st, st
	} else {
		slog.Warn("STORAGE_PATH is not set, autoroles will not survive a restart")
	}

	autoroles := autorole.NewRegistry(bindingStore)
	if n, err := autoroles.Load(); err != nil {
		slog.Error("failed to load stored autoroles", "err", err)
	} else if n > 0 {
		slog.Info("loaded autoroles", "count", n)
	}

	m := metrics.New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return err
	}

	commands := cmd.NewRegistry()
	registerCommands(commands, permission.NewEvaluator(cfg.ModRole(), cfg.RequireModRoleOnly))

	sessions := collector.New()
	b := discord.New(cfg, discord.Deps{
		Storage:   store,
		Commands:  commands,
		Autoroles: autoroles,
		Sessions:  sessions,
		Metrics:   m,
		Limiter:   retrylimit.NewAdaptiveLimiter(4, 1, 10, 1, 0.5),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(gctx)
	})
	g.Go(func() error {
		return collector.RunSweeper(gctx, sessions, sweepInterval)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.MetricsAddr, reg)
		})
	}
	return g.Wait()
}

func registerCommands(reg *cmd.Registry, ev *permission.Evaluator) {
	chain := middleware.Chain(ev)
	for _, c := range []command.DiscordCommand{
		&moderation.KickCommand{},
		&moderation.BanCommand{},
		&moderation.UnbanCommand{},
		&moderation.MuteCommand{},
		&moderation.UnmuteCommand{},
		&say.SayCommand{},
		&autorolecmd.AutoroleCommand{},
	} {
		command.RegisterCommand(reg, c, chain...)
	}
}
