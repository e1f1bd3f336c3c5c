package middleware

import (
	"context"

	"github.com/keshon/modbot/pkg/cmd"
)

// WithMetrics counts command runs by outcome.
func WithMetrics() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			if mc, ok := messageContext(inv); ok {
				outcome := "ok"
				if err != nil {
					outcome = "error"
				}
				mc.Metrics.CommandRun(c.Name(), outcome)
			}
			return err
		})
	}
}
