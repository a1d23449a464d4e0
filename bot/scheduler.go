package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"
	"discord-modbot/scanner"
	"discord-modbot/utils"
	"discord-modbot/utils/database/modcases"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetSession() *discordgo.Session
	GetStore() *modcases.Store
	GetPipeline() *moderation.Pipeline
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot       BotProvider
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	sweepTick *time.Ticker
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.startTempBanSweeper()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("stopping scheduler")
		close(s.done)
		s.wg.Wait()
		log.Info().Msg("scheduler stopped")
	})
}

func (s *Scheduler) botIdentity() moderation.Identity {
	session := s.bot.GetSession()
	if session.State == nil || session.State.User == nil {
		return moderation.Identity{Bot: true}
	}
	u := session.State.User
	return moderation.Identity{ID: u.ID, Tag: u.String(), Bot: true}
}

// reportStuckTempBan posts a warning to the operational webhook.
func (s *Scheduler) reportStuckTempBan(ctx context.Context, tb model.TempBan, attempts int, err error) {
	url := s.bot.GetConfig().LogWebhookURL
	if url == "" {
		return
	}
	extra := fmt.Sprintf("Guild %s, user %s: expired %s, %d unban attempts failed: %v",
		tb.GuildID, tb.UserID, tb.ExpiresAt.UTC().Format(time.RFC3339), attempts, err)
	if err := utils.LogWarn(ctx, url, "TempBanSweeper", "Lift expired temp ban", extra); err != nil {
		log.Warn().Err(err).Msg("failed to post stuck temp ban warning")
	}
}

func (s *Scheduler) startTempBanSweeper() {
	defer s.wg.Done()

	sweeper := scanner.NewTempBanSweeper(s.bot.GetStore().TempBans(), s.bot.GetPipeline(), s.botIdentity)
	sweeper.OnStuck = s.reportStuckTempBan
	s.sweepTick = time.NewTicker(s.bot.GetConfig().TempBanSweepInterval)
	defer s.sweepTick.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	for {
		select {
		case <-s.sweepTick.C:
			lifted, err := sweeper.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("temp ban sweep failed")
				continue
			}
			if lifted > 0 {
				log.Info().Int("lifted", lifted).Msg("temp ban sweep finished")
			}
		case <-s.done:
			return
		}
	}
}
