package middleware

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
	"github.com/keshon/modbot/internal/permission"
	"github.com/keshon/modbot/pkg/cmd"
)

const deniedReply = "You don't have permission to use this command."

// WithModeratorCheck runs moderation commands only for actors the evaluator
// authorizes. It is evaluated before the command sees its arguments.
func WithModeratorCheck(ev *permission.Evaluator) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc, ok := messageContext(inv)
			if !ok {
				return c.Run(ctx, inv)
			}
			if meta, ok := command.MetaOf(c); ok && !meta.Moderation() {
				return c.Run(ctx, inv)
			}

			actor, err := actorOf(mc)
			if err != nil {
				return err
			}
			if !ev.IsAuthorized(actor) {
				mc.Metrics.CommandRun(c.Name(), "denied")
				mc.Reply(deniedReply)
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}

// actorOf snapshots the invoking member's roles and guild permissions.
func actorOf(mc *command.MessageContext) (permission.Actor, error) {
	e := mc.Event
	guild, err := mc.Guild()
	if err != nil {
		return permission.Actor{}, fmt.Errorf("failed to fetch guild %s: %w", e.GuildID, err)
	}

	var member *discordgo.Member
	if e.Member != nil {
		member = e.Member
	} else {
		member, err = bot.FetchMember(mc.Session, e.GuildID, e.Author.ID)
		if err != nil {
			return permission.Actor{}, fmt.Errorf("failed to fetch member %s: %w", e.Author.ID, err)
		}
	}
	return permission.ActorFor(guild, e.Author.ID, member), nil
}
