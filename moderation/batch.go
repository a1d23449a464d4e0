package moderation

import (
	"context"

	"discord-modbot/model"

	"github.com/google/uuid"
)

// Result is the outcome of one target in a batch.
type Result struct {
	Target Target
	Case   model.ModerationCase
	Err    error
}

// OK reports whether the action succeeded for this target.
func (r Result) OK() bool { return r.Err == nil }

// ExecuteBatch runs a against every target in order. A failure for one target
// does not stop the others; there is exactly one Result per target.
func (p *Pipeline) ExecuteBatch(ctx context.Context, a Action, targets []Target) []Result {
	logger := loggerFrom(ctx).With().
		Str("invocation_id", uuid.NewString()).
		Str("action", string(a.Kind())).
		Logger()
	ctx = logger.WithContext(ctx)

	results := make([]Result, 0, len(targets))
	failed := 0
	for _, t := range targets {
		c, err := p.Execute(ctx, a, t)
		if err != nil {
			failed++
		}
		results = append(results, Result{Target: t, Case: c, Err: err})
	}

	logger.Info().Int("targets", len(targets)).Int("failed", failed).Msg("batch finished")
	return results
}
