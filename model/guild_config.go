package model

// GuildModerationConfig holds per-guild moderation settings.
type GuildModerationConfig struct {
	GuildID                 string `db:"guild_id"`
	BanDMEnabled            bool   `db:"ban_dm_enabled"`
	TimeoutCommandDMEnabled bool   `db:"timeout_dm_enabled"`
	ModLogChannelID         string `db:"mod_log_channel_id"`
	UpdatedAt               int64  `db:"updated_at"`
}

// DefaultGuildModerationConfig is used for guilds that never saved settings.
func DefaultGuildModerationConfig(guildID string) GuildModerationConfig {
	return GuildModerationConfig{
		GuildID:                 guildID,
		BanDMEnabled:            true,
		TimeoutCommandDMEnabled: true,
	}
}
