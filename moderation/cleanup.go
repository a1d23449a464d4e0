package moderation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// compensate undoes the recorded effects of a failed run. Each step runs
// independently; failures are logged and never replace the original error.
func (p *Pipeline) compensate(ctx context.Context, eff *effects, logger zerolog.Logger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cleanupTimeout)
	defer cancel()

	c := *eff.caseRecord
	logger = logger.With().Str("case_id", c.CaseID).Logger()
	tasks := pool.New().WithErrors().WithContext(cctx)

	if eff.preDM != nil {
		dm := *eff.preDM
		tasks.Go(func(ctx context.Context) error {
			err := p.notifier.Delete(ctx, dm.ChannelID, dm.MessageID)
			recordCompensation("delete_dm", err, logger)
			if err != nil {
				return fmt.Errorf("failed to delete DM %s: %w", dm.MessageID, err)
			}
			return nil
		})
	}

	tasks.Go(func(ctx context.Context) error {
		err := p.cases.Delete(ctx, nil, c.GuildID, c.CaseID)
		recordCompensation("delete_case", err, logger)
		if err != nil {
			return fmt.Errorf("failed to delete case %s: %w", c.CaseID, err)
		}
		return nil
	})

	if err := tasks.Wait(); err != nil {
		logger.Error().Err(err).Msg("compensation incomplete")
		return
	}
	logger.Debug().Msg("compensation complete")
}

func recordCompensation(step string, err error, logger zerolog.Logger) {
	if err != nil {
		logger.Error().Err(err).Str("step", step).Msg("compensation step failed")
		compensationCount.WithLabelValues(step, "failed").Inc()
		return
	}
	compensationCount.WithLabelValues(step, "ok").Inc()
}
