package moderation

import (
	"context"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
)

// TxRunner runs fn inside a database transaction, committing when fn returns nil.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// CaseRepository persists moderation cases. A nil tx runs the call outside any transaction.
//
// NextCaseNumber must lock the guild's counter for the rest of tx so that
// concurrent allocations in one guild never observe the same number.
type CaseRepository interface {
	NextCaseNumber(ctx context.Context, tx *sqlx.Tx, guildID string) (uint64, error)
	Save(ctx context.Context, tx *sqlx.Tx, c model.ModerationCase) error
	Update(ctx context.Context, tx *sqlx.Tx, c model.ModerationCase) error
	Delete(ctx context.Context, tx *sqlx.Tx, guildID, caseID string) error
}

// TempBanRepository stores scheduled unbans.
type TempBanRepository interface {
	Save(ctx context.Context, tx *sqlx.Tx, tb model.TempBan) error
	// Delete removes the record and returns it, or nil when none existed.
	Delete(ctx context.Context, tx *sqlx.Tx, guildID, userID string) (*model.TempBan, error)
}

// GuildConfigLookup returns guild settings, or defaults for a guild with none saved.
type GuildConfigLookup interface {
	FindByGuildID(ctx context.Context, guildID string) (model.GuildModerationConfig, error)
}

// PlatformExecutor applies actions on the platform. Failures should be *PlatformError.
type PlatformExecutor interface {
	Ban(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error
	Unban(ctx context.Context, guildID, userID, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	SetTimeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	ClearTimeout(ctx context.Context, guildID, userID, reason string) error
}

// DirectMessage is the notification sent to a moderated user.
type DirectMessage struct {
	GuildID  string
	Kind     model.ActionKind
	Reason   string
	Duration *Duration
	Text     string
}

// Notifier delivers direct messages.
type Notifier interface {
	CreateDirectChannel(ctx context.Context, userID string) (channelID string, err error)
	Send(ctx context.Context, channelID string, msg DirectMessage) (messageID string, err error)
	// Delete is used only to compensate a notification sent before a failed action.
	Delete(ctx context.Context, channelID, messageID string) error
}

// ModLogSink publishes case entries to the guild's moderation log.
type ModLogSink interface {
	Post(ctx context.Context, guildID string, kind model.ActionKind, target Target, c model.ModerationCase) error
}
