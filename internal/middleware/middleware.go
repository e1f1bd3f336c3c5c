// Package middleware wraps prefix commands with the checks and bookkeeping
// every invocation goes through.
package middleware

import (
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/internal/permission"
	"github.com/keshon/modbot/pkg/cmd"
)

// Chain returns the middlewares every prefix command is registered with, in
// cmd.Apply order: the guild check runs first, then the moderator gate, then
// the logger, with metrics innermost.
func Chain(ev *permission.Evaluator) []cmd.Middleware {
	return []cmd.Middleware{
		WithMetrics(),
		WithCommandLogger(),
		WithModeratorCheck(ev),
		WithGuildOnly(),
	}
}

// messageContext extracts the Discord context from an invocation.
func messageContext(inv *cmd.Invocation) (*command.MessageContext, bool) {
	mc, ok := inv.Data.(*command.MessageContext)
	return mc, ok && mc != nil && mc.Event != nil && mc.Event.Message != nil
}
