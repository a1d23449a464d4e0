package platform

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Executor applies moderation actions through the Discord REST API.
type Executor struct {
	session Session
}

func NewExecutor(s Session) *Executor {
	return &Executor{session: s}
}

func (e *Executor) Ban(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error {
	return classify(e.session.GuildBanCreateWithReason(guildID, userID, reason, deleteMessageDays, discordgo.WithContext(ctx)))
}

func (e *Executor) Unban(ctx context.Context, guildID, userID, reason string) error {
	return classify(e.session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (e *Executor) Kick(ctx context.Context, guildID, userID, reason string) error {
	return classify(e.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

func (e *Executor) SetTimeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return classify(e.session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (e *Executor) ClearTimeout(ctx context.Context, guildID, userID, reason string) error {
	return classify(e.session.GuildMemberTimeout(guildID, userID, nil, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}
