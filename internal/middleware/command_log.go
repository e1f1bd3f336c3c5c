package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/keshon/modbot/internal/storage"
	"github.com/keshon/modbot/pkg/cmd"
)

// WithCommandLogger logs each run and, when storage is configured, appends it
// to the guild's command history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			mc, ok := messageContext(inv)
			if !ok {
				return err
			}
			e := mc.Event
			attrs := []any{
				"command", c.Name(),
				"guild", e.GuildID,
				"channel", e.ChannelID,
				"user", e.Author.ID,
				"took", time.Since(start),
			}
			if err != nil {
				slog.Warn("command failed", append(attrs, "err", err)...)
			} else {
				slog.Info("command executed", attrs...)
			}

			if mc.Storage != nil {
				rec := storage.CommandHistoryRecord{
					ID:        ulid.Make().String(),
					ChannelID: e.ChannelID,
					UserID:    e.Author.ID,
					Username:  e.Author.Username,
					Command:   c.Name(),
					Args:      strings.Join(inv.Args, " "),
					Datetime:  start.UTC(),
				}
				if lerr := mc.Storage.AppendCommandToHistory(e.GuildID, rec); lerr != nil {
					slog.Warn("failed to record command history", "command", c.Name(), "err", lerr)
				}
			}
			return err
		})
	}
}
