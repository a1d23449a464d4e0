package bot

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return err
	}

	guilds, err := b.Session.UserGuilds(200, "", "", false)
	if err != nil {
		log.Warn().Err(err).Msg("could not fetch guilds")
	}

	for _, guild := range guilds {
		if !b.GetConfig().DisableCommandUnregister {
			b.UnregisterCommands(guild.ID)
		}
		if err := b.RefreshCommands(guild.ID); err != nil {
			log.Error().Err(err).Msg("failed to register commands")
		}
	}

	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Unavailable || !g.JoinedAt.After(b.StartedAt) {
			return
		}
		if err := b.RefreshCommands(g.ID); err != nil {
			log.Error().Err(err).Msg("failed to register commands in new guild")
		}
	})

	metrics := b.startMetricsServer()
	b.scheduler.Start()

	log.Info().Int("guilds", len(guilds)).Int("commands", len(b.RegisteredCommands())).Msg("bot is now running, press CTRL-C to exit")
	if url := b.GetConfig().LogWebhookURL; url != "" {
		if err := utils.LogInfo(context.Background(), url, "System", "Startup", "Bot has started successfully."); err != nil {
			log.Warn().Err(err).Msg("failed to post startup log")
		}
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to stop metrics server")
		}
	}
	return nil
}

func (b *Bot) startMetricsServer() *http.Server {
	addr := b.GetConfig().MetricsAddr
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}
