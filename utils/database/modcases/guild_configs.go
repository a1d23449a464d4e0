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

// GuildConfigRepository stores per-guild moderation settings.
type GuildConfigRepository struct {
	db *sqlx.DB
}

// FindByGuildID returns the guild's settings, or the defaults when none were saved.
func (r *GuildConfigRepository) FindByGuildID(ctx context.Context, guildID string) (model.GuildModerationConfig, error) {
	var cfg model.GuildModerationConfig
	query := r.db.Rebind(`SELECT guild_id, ban_dm_enabled, timeout_dm_enabled, mod_log_channel_id, updated_at
		FROM guild_moderation_configs WHERE guild_id = ?`)
	if err := r.db.GetContext(ctx, &cfg, query, guildID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DefaultGuildModerationConfig(guildID), nil
		}
		return model.GuildModerationConfig{}, fmt.Errorf("failed to load moderation config for guild %s: %w", guildID, err)
	}
	return cfg, nil
}

// Save upserts the guild's settings and stamps UpdatedAt.
func (r *GuildConfigRepository) Save(ctx context.Context, cfg model.GuildModerationConfig) (model.GuildModerationConfig, error) {
	cfg.UpdatedAt = time.Now().Unix()
	query := `INSERT INTO guild_moderation_configs (guild_id, ban_dm_enabled, timeout_dm_enabled, mod_log_channel_id, updated_at)
		VALUES (:guild_id, :ban_dm_enabled, :timeout_dm_enabled, :mod_log_channel_id, :updated_at)
		ON CONFLICT (guild_id) DO UPDATE SET
			ban_dm_enabled = excluded.ban_dm_enabled,
			timeout_dm_enabled = excluded.timeout_dm_enabled,
			mod_log_channel_id = excluded.mod_log_channel_id,
			updated_at = excluded.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return model.GuildModerationConfig{}, fmt.Errorf("failed to save moderation config for guild %s: %w", cfg.GuildID, err)
	}
	return cfg, nil
}
