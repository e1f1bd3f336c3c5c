package bot

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	userMentionRe    = regexp.MustCompile(`^<@!?(\d+)>$`)
	roleMentionRe    = regexp.MustCompile(`^<@&(\d+)>$`)
	channelMentionRe = regexp.MustCompile(`^<#(\d+)>$`)
	customEmojiRe    = regexp.MustCompile(`^<a?:(\w+):(\d+)>$`)
	snowflakeRe      = regexp.MustCompile(`^\d{15,21}$`)
)

// UserMentionID returns the user id of a <@id> or <@!id> token.
func UserMentionID(token string) (string, bool) {
	return submatch(userMentionRe, token)
}

// RoleMentionID returns the role id of a <@&id> token.
func RoleMentionID(token string) (string, bool) {
	return submatch(roleMentionRe, token)
}

// ChannelMentionID returns the channel id of a <#id> token.
func ChannelMentionID(token string) (string, bool) {
	return submatch(channelMentionRe, token)
}

// ChannelRef accepts either a raw snowflake or a <#id> mention.
func ChannelRef(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if id, ok := ChannelMentionID(text); ok {
		return id, true
	}
	if snowflakeRe.MatchString(text) {
		return text, true
	}
	return "", false
}

// EmojiKey normalises an emoji token to the form discordgo's Emoji.APIName
// produces for reactions: custom emoji become name:id, unicode stays as is.
func EmojiKey(token string) string {
	if m := customEmojiRe.FindStringSubmatch(token); m != nil {
		return m[1] + ":" + m[2]
	}
	return token
}

// FirstMentionedUser returns the first user mentioned in m, ignoring the bot itself.
func FirstMentionedUser(m *discordgo.Message, selfID string) *discordgo.User {
	for _, u := range m.Mentions {
		if u != nil && u.ID != selfID {
			return u
		}
	}
	return nil
}

// WithoutMentionOf drops tokens that mention userID.
func WithoutMentionOf(args []string, userID string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if id, ok := UserMentionID(a); ok && id == userID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Tag renders a user the way moderators type it: name#1234 for legacy
// discriminators, plain username otherwise.
func Tag(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

func submatch(re *regexp.Regexp, token string) (string, bool) {
	m := re.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	return m[1], true
}
