package modcases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
)

// TempBanRepository tracks bans that must be lifted at a deadline.
type TempBanRepository struct {
	db *sqlx.DB
}

type tempBanRow struct {
	GuildID   string `db:"guild_id"`
	UserID    string `db:"user_id"`
	ExpiresAt int64  `db:"expires_at"`
	CreatedAt int64  `db:"created_at"`
}

func (r tempBanRow) toModel() model.TempBan {
	return model.TempBan{
		GuildID:   r.GuildID,
		UserID:    r.UserID,
		ExpiresAt: time.Unix(r.ExpiresAt, 0).UTC(),
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
}

// Save records a temporary ban, replacing any existing one for the same user.
func (r *TempBanRepository) Save(ctx context.Context, tx *sqlx.Tx, tb model.TempBan) error {
	query := `INSERT INTO temp_bans (guild_id, user_id, expires_at, created_at)
		VALUES (:guild_id, :user_id, :expires_at, :created_at)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET expires_at = excluded.expires_at, created_at = excluded.created_at`
	row := tempBanRow{GuildID: tb.GuildID, UserID: tb.UserID, ExpiresAt: tb.ExpiresAt.Unix(), CreatedAt: tb.CreatedAt.Unix()}
	if _, err := sqlx.NamedExecContext(ctx, ext(r.db, tx), query, row); err != nil {
		return fmt.Errorf("failed to save temp ban for user %s in guild %s: %w", tb.UserID, tb.GuildID, err)
	}
	return nil
}

// Delete removes the temporary ban for a user and returns it, or nil when none existed.
func (r *TempBanRepository) Delete(ctx context.Context, tx *sqlx.Tx, guildID, userID string) (*model.TempBan, error) {
	q := ext(r.db, tx)
	query := q.Rebind(`DELETE FROM temp_bans WHERE guild_id = ? AND user_id = ?
		RETURNING guild_id, user_id, expires_at, created_at`)

	var row tempBanRow
	if err := sqlx.GetContext(ctx, q, &row, query, guildID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete temp ban for user %s in guild %s: %w", userID, guildID, err)
	}
	tb := row.toModel()
	return &tb, nil
}

// Get returns the temporary ban for a user, or ErrNotFound.
func (r *TempBanRepository) Get(ctx context.Context, guildID, userID string) (model.TempBan, error) {
	var row tempBanRow
	query := r.db.Rebind(`SELECT guild_id, user_id, expires_at, created_at FROM temp_bans WHERE guild_id = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, guildID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TempBan{}, fmt.Errorf("temp ban for user %s in guild %s: %w", userID, guildID, ErrNotFound)
		}
		return model.TempBan{}, fmt.Errorf("failed to get temp ban for user %s in guild %s: %w", userID, guildID, err)
	}
	return row.toModel(), nil
}

// ListExpired returns up to limit bans whose deadline is at or before now, oldest first.
func (r *TempBanRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.TempBan, error) {
	var rows []tempBanRow
	query := r.db.Rebind(`SELECT guild_id, user_id, expires_at, created_at FROM temp_bans
		WHERE expires_at <= ? ORDER BY expires_at LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, now.Unix(), limit); err != nil {
		return nil, fmt.Errorf("failed to list expired temp bans: %w", err)
	}

	bans := make([]model.TempBan, 0, len(rows))
	for _, row := range rows {
		bans = append(bans, row.toModel())
	}
	return bans, nil
}
