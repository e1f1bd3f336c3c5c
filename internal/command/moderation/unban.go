package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
	"github.com/keshon/modbot/internal/command"
)

const bansPageSize = 1000

type UnbanCommand struct{}

func (c *UnbanCommand) Name() string        { return "unban" }
func (c *UnbanCommand) Description() string { return "Lift a ban by user id or tag" }
func (c *UnbanCommand) Usage() string       { return "unban USER_ID" }
func (c *UnbanCommand) Moderation() bool    { return true }

func (c *UnbanCommand) Run(ctx context.Context, mc *command.MessageContext) error {
	if len(mc.Args) == 0 {
		mc.Reply(fmt.Sprintf("Give the id of the user you want to unban: `%s%s`", mc.Config.Prefix, c.Usage()))
		return nil
	}
	needle := mc.Args[0]
	if id, ok := bot.UserMentionID(needle); ok {
		needle = id
	}

	ban, err := findBan(mc.Session, mc.Event.GuildID, needle)
	if err != nil {
		return fmt.Errorf("failed to list bans: %w", err)
	}
	if ban == nil {
		mc.Reply("That user is not banned or the id/tag is wrong.")
		return nil
	}

	id := ban.User.ID
	if err := mc.Session.GuildBanDelete(mc.Event.GuildID, id); err != nil {
		slog.Error("failed to unban user", "guild", mc.Event.GuildID, "user", id, "err", err)
	}

	mc.Reply(fmt.Sprintf("User <@%s> (%s) has been unbanned.", id, id))
	return nil
}

// findBan pages through the guild's bans and returns the first whose user id
// or tag equals needle.
func findBan(s bot.Session, guildID, needle string) (*discordgo.GuildBan, error) {
	after := ""
	for {
		bans, err := s.GuildBans(guildID, bansPageSize, "", after)
		if err != nil {
			return nil, err
		}
		for _, b := range bans {
			if b.User == nil {
				continue
			}
			if b.User.ID == needle || bot.Tag(b.User) == needle {
				return b, nil
			}
		}
		if len(bans) < bansPageSize {
			return nil, nil
		}
		last := bans[len(bans)-1]
		if last.User == nil {
			return nil, nil
		}
		after = last.User.ID
	}
}
