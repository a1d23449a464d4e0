package model

import "time"

// DatabaseConfig selects the SQL driver and connection string.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// Config stores the application configuration.
type Config struct {
	BotToken                 string
	LogChannelID             string
	LogWebhookURL            string
	LogLevel                 string
	MetricsAddr              string
	DeveloperUserIDs         []string
	SuperAdminRoleIDs        []string
	DisableCommandUnregister bool
	Database                 DatabaseConfig
	TempBanSweepInterval     time.Duration
	GuildConfigCacheTTL      time.Duration
	GuildConfigCacheSize     int
}
