package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockSession implements Session for testing. Request options are not recorded.
type MockSession struct {
	mock.Mock
}

var _ Session = (*MockSession)(nil)

func (m *MockSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	return message(args, 0), args.Error(1)
}

func (m *MockSession) ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content, reference)
	return message(args, 0), args.Error(1)
}

func (m *MockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, embed)
	return message(args, 0), args.Error(1)
}

func (m *MockSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, messageID)
	return message(args, 0), args.Error(1)
}

func (m *MockSession) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	return m.Called(channelID, messageID, emojiID).Error(0)
}

func (m *MockSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Channel), args.Error(1)
}

func (m *MockSession) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Channel), args.Error(1)
}

func (m *MockSession) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	return m.Called(channelID, targetID, targetType, allow, deny).Error(0)
}

func (m *MockSession) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Guild), args.Error(1)
}

func (m *MockSession) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	args := m.Called(guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Member), args.Error(1)
}

func (m *MockSession) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Role), args.Error(1)
}

func (m *MockSession) GuildRoleCreate(guildID string, data *discordgo.RoleParams, _ ...discordgo.RequestOption) (*discordgo.Role, error) {
	args := m.Called(guildID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Role), args.Error(1)
}

func (m *MockSession) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, roleID).Error(0)
}

func (m *MockSession) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, roleID).Error(0)
}

func (m *MockSession) GuildMemberDeleteWithReason(guildID, userID, reason string, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, reason).Error(0)
}

func (m *MockSession) GuildBans(guildID string, limit int, beforeID, afterID string, _ ...discordgo.RequestOption) ([]*discordgo.GuildBan, error) {
	args := m.Called(guildID, limit, beforeID, afterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.GuildBan), args.Error(1)
}

func (m *MockSession) GuildBanCreateWithReason(guildID, userID, reason string, days int, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, reason, days).Error(0)
}

func (m *MockSession) GuildBanDelete(guildID, userID string, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID).Error(0)
}

func (m *MockSession) GuildMemberTimeout(guildID, userID string, until *time.Time, _ ...discordgo.RequestOption) error {
	return m.Called(guildID, userID, until).Error(0)
}

func message(args mock.Arguments, i int) *discordgo.Message {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(*discordgo.Message)
}
