package bot

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"discord-modbot/commands"
	"discord-modbot/config"
	"discord-modbot/model"
	"discord-modbot/moderation"
	"discord-modbot/moderation/platform"
	"discord-modbot/utils"
	"discord-modbot/utils/database/modcases"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	Session            *discordgo.Session
	commandsMu         sync.Mutex
	registered         []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	Store              *modcases.Store
	GuildConfigs       *modcases.CachedGuildConfigs
	Pipeline           *moderation.Pipeline
	TargetLocks        *utils.TargetLocks
	StartedAt          time.Time
	scheduler          *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetStore() *modcases.Store {
	return b.Store
}

func (b *Bot) GetPipeline() *moderation.Pipeline {
	return b.Pipeline
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.StateEnabled = true

	store := modcases.NewStore(db)
	guildConfigs := modcases.NewCachedGuildConfigs(store.GuildConfigs(), cfg.GuildConfigCacheSize, cfg.GuildConfigCacheTTL)

	b := &Bot{
		Session:      dg,
		DB:           db,
		Store:        store,
		GuildConfigs: guildConfigs,
		TargetLocks:  utils.NewTargetLocks(),
		StartedAt:    time.Now(),
	}
	b.config.Store(cfg)

	b.Pipeline = moderation.NewPipeline(moderation.Deps{
		Tx:       store,
		Cases:    store.Cases(),
		TempBans: store.TempBans(),
		Configs:  guildConfigs,
		Platform: platform.NewExecutor(dg),
		Notifier: platform.NewNotifier(dg, b.guildName),
		ModLog:   platform.NewModLog(dg, guildConfigs, cfg.LogChannelID, cfg.LogWebhookURL),
	})
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) guildName(guildID string) string {
	if b.Session.State == nil {
		return ""
	}
	g, err := b.Session.State.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.Name
}

func (b *Bot) Close() {
	log.Info().Msg("gracefully shutting down")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close discord session")
	}
	if err := b.DB.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}

// RefreshCommands overwrites the guild's slash commands with the current set.
func (b *Bot) RefreshCommands(guildID string) error {
	cmds := commands.GenerateCommands()
	log.Info().Str("guild_id", guildID).Int("count", len(cmds)).Msg("registering commands")
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild %s: %w", guildID, err)
	}
	b.recordRegistered(registered)
	return nil
}

// GuildCreate handlers run concurrently, so registrations are recorded under a lock.
func (b *Bot) recordRegistered(cmds []*discordgo.ApplicationCommand) {
	b.commandsMu.Lock()
	defer b.commandsMu.Unlock()
	b.registered = append(b.registered, cmds...)
}

// RegisteredCommands returns a copy of the commands registered since startup.
func (b *Bot) RegisteredCommands() []*discordgo.ApplicationCommand {
	b.commandsMu.Lock()
	defer b.commandsMu.Unlock()
	return append([]*discordgo.ApplicationCommand(nil), b.registered...)
}

// UnregisterCommands removes every slash command the bot owns in a guild.
func (b *Bot) UnregisterCommands(guildID string) {
	appID := b.Session.State.User.ID
	existing, err := b.Session.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("could not fetch commands")
		return
	}
	for _, cmd := range existing {
		if err := b.Session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			log.Warn().Err(err).Str("guild_id", guildID).Str("command", cmd.Name).Msg("cannot delete command")
		}
	}
}

// ReloadConfig reloads process settings. Database and token changes need a restart.
func (b *Bot) ReloadConfig() error {
	log.Info().Msg("reloading configuration")
	newCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	b.config.Store(newCfg)
	return nil
}
