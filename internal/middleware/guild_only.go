package middleware

import (
	"context"

	"github.com/keshon/modbot/pkg/cmd"
)

// WithGuildOnly drops invocations that did not come from a guild channel.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if mc, ok := messageContext(inv); ok && mc.Event.GuildID == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
