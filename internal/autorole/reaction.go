package autorole

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/modbot/internal/bot"
)

var ErrMemberNotFound = errors.New("reacting member not found")

type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "add"
}

// Partial is a reaction as delivered by the gateway. Parts of it may be
// missing (guild id, custom emoji name) and must be resolved before lookup.
type Partial struct {
	Action    Action
	UserID    string
	ChannelID string
	MessageID string
	GuildID   string
	Emoji     discordgo.Emoji
	Member    *discordgo.Member
}

func PartialFromAdd(e *discordgo.MessageReactionAdd) Partial {
	p := partialOf(ActionAdd, e.MessageReaction)
	p.Member = e.Member
	return p
}

func PartialFromRemove(e *discordgo.MessageReactionRemove) Partial {
	return partialOf(ActionRemove, e.MessageReaction)
}

func partialOf(a Action, r *discordgo.MessageReaction) Partial {
	return Partial{
		Action:    a,
		UserID:    r.UserID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		GuildID:   r.GuildID,
		Emoji:     r.Emoji,
	}
}

// Reaction is a fully resolved reaction. Only Resolve produces one, and only a
// Reaction can be looked up in the Registry.
type Reaction struct {
	Action    Action
	GuildID   string
	MessageID string
	UserID    string
	Emoji     string
	// User is set when the gateway payload carried it.
	User *discordgo.User
}

// Resolve fetches whatever p is missing. It fails when the guild or the emoji
// cannot be determined.
func (p Partial) Resolve(s bot.Session) (Reaction, error) {
	guildID := p.GuildID
	if guildID == "" {
		ch, err := bot.FetchChannel(s, p.ChannelID)
		if err != nil {
			return Reaction{}, fmt.Errorf("failed to fetch channel %s: %w", p.ChannelID, err)
		}
		guildID = ch.GuildID
	}
	if guildID == "" {
		return Reaction{}, fmt.Errorf("reaction on %s is outside a guild", p.MessageID)
	}

	emoji := p.Emoji
	if emoji.Name == "" && emoji.ID != "" {
		msg, err := s.ChannelMessage(p.ChannelID, p.MessageID)
		if err != nil {
			return Reaction{}, fmt.Errorf("failed to fetch message %s: %w", p.MessageID, err)
		}
		for _, mr := range msg.Reactions {
			if mr.Emoji != nil && mr.Emoji.ID == emoji.ID {
				emoji.Name = mr.Emoji.Name
				break
			}
		}
	}
	if emoji.Name == "" {
		return Reaction{}, fmt.Errorf("reaction on %s has no resolvable emoji", p.MessageID)
	}

	re := Reaction{
		Action:    p.Action,
		GuildID:   guildID,
		MessageID: p.MessageID,
		UserID:    p.UserID,
		Emoji:     emoji.APIName(),
	}
	if p.Member != nil && p.Member.User != nil {
		re.User = p.Member.User
	}
	return re, nil
}

// FetchMember resolves the reacting user as a member of the reaction's guild.
func (re Reaction) FetchMember(s bot.Session) (*discordgo.Member, error) {
	m, err := bot.FetchMember(s, re.GuildID, re.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s: %v", ErrMemberNotFound, re.UserID, re.GuildID, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrMemberNotFound, re.UserID, re.GuildID)
	}
	return m, nil
}
