package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the slice of the discordgo REST surface the bot uses.
// *discordgo.Session satisfies it; tests use MockSession.
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error

	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error

	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error

	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBans(guildID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildBan, error)
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// FetchGuild returns the guild from the state cache when the session has one,
// falling back to a REST fetch.
func FetchGuild(s Session, guildID string) (*discordgo.Guild, error) {
	if ds, ok := s.(*discordgo.Session); ok && ds.State != nil {
		if g, err := ds.State.Guild(guildID); err == nil && g != nil && len(g.Roles) > 0 {
			return g, nil
		}
	}
	return s.Guild(guildID)
}

// FetchMember returns a guild member from the state cache, falling back to REST.
func FetchMember(s Session, guildID, userID string) (*discordgo.Member, error) {
	if ds, ok := s.(*discordgo.Session); ok && ds.State != nil {
		if m, err := ds.State.Member(guildID, userID); err == nil && m != nil {
			return m, nil
		}
	}
	return s.GuildMember(guildID, userID)
}

// FetchChannel returns a channel from the state cache, falling back to REST.
func FetchChannel(s Session, channelID string) (*discordgo.Channel, error) {
	if ds, ok := s.(*discordgo.Session); ok && ds.State != nil {
		if c, err := ds.State.Channel(channelID); err == nil && c != nil {
			return c, nil
		}
	}
	return s.Channel(channelID)
}
