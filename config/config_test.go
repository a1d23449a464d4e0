package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DEVELOPER_USER_IDS", "1, 2,,3")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/mod?sslmode=disable")
	t.Setenv("TEMPBAN_SWEEP_INTERVAL", "30s")
	t.Setenv("LOG_CHANNEL_ID", "555")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.DeveloperUserIDs)
	assert.Empty(t, cfg.SuperAdminRoleIDs)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.TempBanSweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.GuildConfigCacheTTL)
	assert.Equal(t, 1024, cfg.GuildConfigCacheSize)
	assert.Equal(t, "555", cfg.LogChannelID)
}

func TestLoadFileReadsYAMLAndEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bot_token: from-file\nlog_level: debug\ndb_dsn: data/test.db\n"), 0644))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.BotToken)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "data/test.db", cfg.Database.DSN)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestLoadFileErrors(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := LoadFile("")
	assert.Error(t, err)

	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = LoadFile("")
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("TEMPBAN_SWEEP_INTERVAL", "0s")
	_, err = LoadFile("")
	assert.Error(t, err)
}
