package platform

import (
	"context"
	"net/http"
	"sync"
	"time"

	"discord-modbot/model"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	channelID string
	data      *discordgo.MessageSend
}

type fakeSession struct {
	mu       sync.Mutex
	calls    []string
	err      error
	timeouts []*time.Time
	sent     []sentMessage
	deleted  []string
}

func (f *fakeSession) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeSession) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	return f.record("ban:" + userID + ":" + reason)
}

func (f *fakeSession) GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error {
	return f.record("unban:" + userID)
}

func (f *fakeSession) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	return f.record("kick:" + userID)
}

func (f *fakeSession) GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	f.timeouts = append(f.timeouts, until)
	f.mu.Unlock()
	return f.record("timeout:" + userID)
}

func (f *fakeSession) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if err := f.record("dm:" + recipientID); err != nil {
		return nil, err
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := f.record("send:" + channelID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, data: data})
	return &discordgo.Message{ID: "m-1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, messageID)
	f.mu.Unlock()
	return f.record("delete:" + messageID)
}

func restError(code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "error"},
	}
}

type staticConfigs struct {
	cfg model.GuildModerationConfig
}

func (s staticConfigs) FindByGuildID(ctx context.Context, guildID string) (model.GuildModerationConfig, error) {
	cfg := s.cfg
	cfg.GuildID = guildID
	return cfg, nil
}
