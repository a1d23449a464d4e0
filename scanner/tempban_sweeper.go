package scanner

import (
	"context"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

const (
	defaultSweepBatch   = 50
	tempBanExpiryReason = "Temporary ban expired"

	retryBaseDelay = time.Minute
	retryMaxDelay  = 6 * time.Hour
	stuckAfter     = 3
)

var tempBansSwept = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_tempbans_swept_total",
	Help: "Expired temporary bans processed by the sweeper, by outcome.",
}, []string{"outcome"})

// ExpiredTempBans lists and removes temporary ban records.
type ExpiredTempBans interface {
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.TempBan, error)
	Delete(ctx context.Context, tx *sqlx.Tx, guildID, userID string) (*model.TempBan, error)
}

// ActionRunner executes a moderation action against one target.
type ActionRunner interface {
	Execute(ctx context.Context, a moderation.Action, t moderation.Target) (model.ModerationCase, error)
}

type retryState struct {
	attempts int
	next     time.Time
}

// TempBanSweeper lifts temporary bans whose deadline has passed. Each unban
// goes through the pipeline so it gets a case like any manual unban.
// Sweep must not be called concurrently.
type TempBanSweeper struct {
	bans    ExpiredTempBans
	runner  ActionRunner
	botUser func() moderation.Identity
	now     func() time.Time
	batch   int
	retries map[string]retryState

	// OnStuck is called once when a ban has failed stuckAfter times in a row.
	OnStuck func(ctx context.Context, tb model.TempBan, attempts int, err error)
}

func retryKey(tb model.TempBan) string {
	return tb.GuildID + ":" + tb.UserID
}

func retryDelay(attempts int) time.Duration {
	d := retryBaseDelay
	for i := 1; i < attempts && d < retryMaxDelay; i++ {
		d *= 2
	}
	return min(d, retryMaxDelay)
}

func NewTempBanSweeper(bans ExpiredTempBans, runner ActionRunner, botUser func() moderation.Identity) *TempBanSweeper {
	return &TempBanSweeper{
		bans:    bans,
		runner:  runner,
		botUser: botUser,
		now:     time.Now,
		batch:   defaultSweepBatch,
		retries: make(map[string]retryState),
	}
}

// Sweep processes one batch of expired bans and returns how many were lifted.
// Bans that fail for reasons other than already being gone stay, and are
// retried with exponential backoff so each failure does not burn a case number every tick.
func (s *TempBanSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.bans.ListExpired(ctx, now, s.batch+len(s.retries))
	if err != nil {
		return 0, err
	}

	lifted := 0
	reason := tempBanExpiryReason
	for _, tb := range expired {
		if ctx.Err() != nil {
			return lifted, ctx.Err()
		}
		key := retryKey(tb)
		if r, ok := s.retries[key]; ok && now.Before(r.next) {
			continue
		}
		logger := log.With().Str("guild_id", tb.GuildID).Str("user_id", tb.UserID).Time("expired_at", tb.ExpiresAt).Logger()

		action := moderation.Unban{ActionBase: moderation.ActionBase{
			GuildID:  tb.GuildID,
			Executor: moderation.Executor{User: s.botUser()},
			Reason:   &reason,
		}}
		target := moderation.NewTarget(moderation.Identity{ID: tb.UserID}, nil)

		c, err := s.runner.Execute(ctx, action, target)
		switch {
		case err == nil:
			delete(s.retries, key)
			lifted++
			tempBansSwept.WithLabelValues("lifted").Inc()
			logger.Info().Str("case_id", c.CaseID).Msg("lifted expired temp ban")
		case moderation.PlatformFailureOf(err) == moderation.FailureNotBanned:
			delete(s.retries, key)
			if _, err := s.bans.Delete(ctx, nil, tb.GuildID, tb.UserID); err != nil {
				logger.Error().Err(err).Msg("failed to delete stale temp ban")
				continue
			}
			tempBansSwept.WithLabelValues("already_lifted").Inc()
			logger.Info().Msg("temp ban was already lifted, removed record")
		default:
			r := s.retries[key]
			r.attempts++
			r.next = now.Add(retryDelay(r.attempts))
			s.retries[key] = r
			tempBansSwept.WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Int("attempts", r.attempts).Time("next_attempt", r.next).Msg("failed to lift expired temp ban")
			if r.attempts == stuckAfter && s.OnStuck != nil {
				s.OnStuck(ctx, tb, r.attempts, err)
			}
		}
	}
	return lifted, nil
}
