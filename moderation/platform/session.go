package platform

import (
	"errors"
	"time"

	"discord-modbot/moderation"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of *discordgo.Session the adapters use.
type Session interface {
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// classify maps Discord REST error codes to platform failure kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}

	kind := moderation.FailureTransport
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			kind = moderation.FailureTargetNotInGuild
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			kind = moderation.FailureInsufficientPermission
		case discordgo.ErrCodeUnknownBan:
			kind = moderation.FailureNotBanned
		}
	}
	return &moderation.PlatformError{Kind: kind, Err: err}
}
