package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"discord-modbot/model"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read when present; environment variables override it.
const DefaultConfigFile = "data/bot_config.yaml"

func defaults(v *viper.Viper) {
	v.SetDefault("db_driver", "sqlite3")
	v.SetDefault("db_dsn", "data/moderation.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("tempban_sweep_interval", time.Minute)
	v.SetDefault("guild_config_cache_ttl", 5*time.Minute)
	v.SetDefault("guild_config_cache_size", 1024)
	v.SetDefault("disable_command_unregister", false)
}

// Load loads the configuration from .env, the optional YAML file and environment variables.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, relying on environment variables")
	}
	return LoadFile(DefaultConfigFile)
}

// LoadFile is Load without the .env step, reading settings from path when it exists.
func LoadFile(path string) (*model.Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			log.Debug().Str("path", path).Msg("config file not found, skipping")
		}
	}

	token := v.GetString("bot_token")
	if token == "" {
		return nil, errors.New("BOT_TOKEN environment variable not set")
	}

	logChannelID := v.GetString("log_channel_id")
	if logChannelID == "" && v.GetString("log_webhook_url") == "" {
		log.Warn().Msg("neither LOG_CHANNEL_ID nor LOG_WEBHOOK_URL set, guilds without a mod-log channel get no mod-log entries")
	}

	driver := v.GetString("db_driver")
	if driver != "sqlite3" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	interval := v.GetDuration("tempban_sweep_interval")
	if interval <= 0 {
		return nil, fmt.Errorf("TEMPBAN_SWEEP_INTERVAL must be positive, got %s", interval)
	}

	return &model.Config{
		BotToken:                 token,
		LogChannelID:             logChannelID,
		LogWebhookURL:            v.GetString("log_webhook_url"),
		LogLevel:                 v.GetString("log_level"),
		MetricsAddr:              v.GetString("metrics_addr"),
		DeveloperUserIDs:         splitIDs(v.GetString("developer_user_ids")),
		SuperAdminRoleIDs:        splitIDs(v.GetString("super_admin_role_ids")),
		DisableCommandUnregister: v.GetBool("disable_command_unregister"),
		Database: model.DatabaseConfig{
			Driver: driver,
			DSN:    v.GetString("db_dsn"),
		},
		TempBanSweepInterval: interval,
		GuildConfigCacheTTL:  v.GetDuration("guild_config_cache_ttl"),
		GuildConfigCacheSize: v.GetInt("guild_config_cache_size"),
	}, nil
}

func splitIDs(raw string) []string {
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
