package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"discord-modbot/model"
	"discord-modbot/utils/database/modcases"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging configures the global logger from the loaded settings.
func setupLogging(cfg *model.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().Timestamp().Logger()
}

// ensureDataDir creates the directory holding a SQLite database file.
func ensureDataDir(cfg *model.Config) error {
	if cfg.Database.Driver != modcases.DriverSQLite {
		return nil
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(cfg.Database.DSN, "file:"), "?")
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, os.ModePerm)
}
