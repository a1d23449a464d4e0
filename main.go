package main

import (
	"discord-modbot/bot"
	"discord-modbot/config"
	"discord-modbot/handlers"
	"discord-modbot/utils/database/modcases"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	if err := ensureDataDir(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}
	db, err := modcases.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("error initializing database")
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating bot")
	}
	defer b.Close()

	handlers.Register(b)

	if err := b.Run(); err != nil {
		log.Error().Err(err).Msg("bot stopped with error")
	}
}
