package moderation

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage is a state of the execution pipeline for one target.
type Stage string

const (
	StageInitial         Stage = "initial"
	StageCaseAllocated   Stage = "case_allocated"
	StagePreDMAttempted  Stage = "pre_dm_attempted"
	StageActionApplied   Stage = "action_applied"
	StagePostDMAttempted Stage = "post_dm_attempted"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

const (
	defaultCleanupTimeout = 15 * time.Second
	maxAuditReasonLength  = 512
)

// Deps are the collaborators of a Pipeline. ModLog may be nil.
type Deps struct {
	Tx       TxRunner
	Cases    CaseRepository
	TempBans TempBanRepository
	Configs  GuildConfigLookup
	Platform PlatformExecutor
	Notifier Notifier
	ModLog   ModLogSink
	Now      func() time.Time

	CleanupTimeout time.Duration
}

// Pipeline executes moderation actions: it records a case, notifies the
// target, applies the platform action and rolls the case back when the
// platform action fails.
type Pipeline struct {
	tx             TxRunner
	cases          CaseRepository
	tempBans       TempBanRepository
	policy         DMPolicy
	platform       PlatformExecutor
	notifier       Notifier
	modLog         ModLogSink
	now            func() time.Time
	cleanupTimeout time.Duration
}

func NewPipeline(d Deps) *Pipeline {
	p := &Pipeline{
		tx:             d.Tx,
		cases:          d.Cases,
		tempBans:       d.TempBans,
		policy:         DMPolicy{Configs: d.Configs},
		platform:       d.Platform,
		notifier:       d.Notifier,
		modLog:         d.ModLog,
		now:            d.Now,
		cleanupTimeout: d.CleanupTimeout,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.cleanupTimeout <= 0 {
		p.cleanupTimeout = defaultCleanupTimeout
	}
	return p
}

type sentDM struct {
	ChannelID string
	MessageID string
}

// effects is what the pipeline has done so far for one target. Compensation undoes exactly these.
type effects struct {
	stage      Stage
	caseRecord *model.ModerationCase
	preDM      *sentDM
}

func (e *effects) advance(s Stage, logger zerolog.Logger) {
	logger.Debug().Str("from", string(e.stage)).Str("to", string(s)).Msg("pipeline stage")
	e.stage = s
}

func loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}

// Execute runs action a against target t.
//
// A nil error means the platform action was applied and the case exists; the
// case may still carry a failed DM result. A non-nil error is a
// *ValidationError, *AllocationError or *ActionError and no case remains.
func (p *Pipeline) Execute(ctx context.Context, a Action, t Target) (model.ModerationCase, error) {
	kind := a.Kind()
	logger := loggerFrom(ctx).With().
		Str("guild_id", a.Base().GuildID).
		Str("target_id", t.User.ID).
		Str("action", string(kind)).
		Logger()

	eff := &effects{stage: StageInitial}
	c, err := p.run(ctx, a, t, eff, logger)
	if err != nil {
		failedAt := eff.stage
		eff.advance(StageFailed, logger)
		logger.Warn().Err(err).Str("stage", string(failedAt)).Msg("moderation action failed")
		if eff.caseRecord != nil {
			p.compensate(ctx, eff, logger)
		}
		actionCount.WithLabelValues(string(kind), "failed").Inc()
		return model.ModerationCase{}, err
	}

	logger.Info().Str("case_id", c.CaseID).Bool("dm_sent", c.DMSuccess()).Msg("moderation action executed")
	actionCount.WithLabelValues(string(kind), "succeeded").Inc()
	return c, nil
}

func (p *Pipeline) run(ctx context.Context, a Action, t Target, eff *effects, logger zerolog.Logger) (model.ModerationCase, error) {
	if err := a.Validate(); err != nil {
		return model.ModerationCase{}, err
	}

	// 1. Allocate and persist the case
	c, err := p.createCase(ctx, a, t)
	if err != nil {
		return model.ModerationCase{}, &AllocationError{GuildID: a.Base().GuildID, Err: err}
	}
	eff.caseRecord = &c
	eff.advance(StageCaseAllocated, logger.With().Str("case_id", c.CaseID).Logger())
	logger = logger.With().Str("case_id", c.CaseID).Logger()

	// 2. Notify before the action when it would be impossible afterwards
	c, dm, attempted := p.notify(ctx, Before, a, t, c, logger)
	if attempted {
		eff.caseRecord = &c
		eff.preDM = dm
		eff.advance(StagePreDMAttempted, logger)
	}

	// 3. Platform action
	if RequiresPlatformAction(a.Kind()) {
		if err := p.apply(ctx, a, t); err != nil {
			return model.ModerationCase{}, &ActionError{Kind: a.Kind(), TargetID: t.User.ID, Err: err}
		}
	}
	eff.advance(StageActionApplied, logger)

	// 4. Best-effort bookkeeping
	p.syncTempBan(ctx, a, t, logger)

	c, _, attempted = p.notify(ctx, After, a, t, c, logger)
	if attempted {
		eff.advance(StagePostDMAttempted, logger)
	}

	if !RequiresPlatformAction(a.Kind()) {
		p.postModLog(ctx, a, t, c, logger)
	}

	eff.advance(StageDone, logger)
	return c, nil
}

func (p *Pipeline) createCase(ctx context.Context, a Action, t Target) (model.ModerationCase, error) {
	base := a.Base()
	draft := model.ModerationCase{
		GuildID:       base.GuildID,
		ActionKind:    a.Kind(),
		ActionTime:    p.now().UTC(),
		TargetUserID:  t.User.ID,
		TargetUserTag: t.User.Tag,
		Reason:        base.Reason,
		Attachments:   []string{},
	}
	if id := base.Executor.User.ID; id != "" {
		draft.ExecutorID = &id
	}
	if base.Attachment != nil {
		draft.Attachments = []string{*base.Attachment}
	}

	var created model.ModerationCase
	err := p.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		n, err := p.cases.NextCaseNumber(ctx, tx, base.GuildID)
		if err != nil {
			return err
		}
		created = draft.WithCaseID(strconv.FormatUint(n, 10))
		return p.cases.Save(ctx, tx, created)
	})
	if err != nil {
		return model.ModerationCase{}, err
	}
	return created, nil
}

// notify sends the DM for timing when the policy allows it and stores the outcome on the case.
// attempted is false when no delivery was tried.
func (p *Pipeline) notify(ctx context.Context, timing Timing, a Action, t Target, c model.ModerationCase, logger zerolog.Logger) (updated model.ModerationCase, sent *sentDM, attempted bool) {
	send, err := p.policy.Decide(ctx, timing, a, t)
	if err != nil {
		logger.Warn().Err(err).Str("timing", string(timing)).Msg("failed to load guild settings, skipping DM")
		bestEffortErrorCount.WithLabelValues("dm_policy").Inc()
		return c, nil, false
	}
	if !send {
		return c, nil, false
	}

	result, sent := p.deliver(ctx, a, t)
	updated = c.WithDMResult(result)
	if sent != nil {
		dmAttemptCount.WithLabelValues(string(timing), "sent").Inc()
	} else {
		dmAttemptCount.WithLabelValues(string(timing), "failed").Inc()
		logger.Info().Str("timing", string(timing)).Str("error", *result.Error).Msg("failed to DM user")
	}

	if err := p.cases.Update(ctx, nil, updated); err != nil {
		logger.Error().Err(err).Msg("failed to store DM result on case")
		bestEffortErrorCount.WithLabelValues("case_update").Inc()
	}
	return updated, sent, true
}

func (p *Pipeline) deliver(ctx context.Context, a Action, t Target) (model.DMResult, *sentDM) {
	channelID, err := p.notifier.CreateDirectChannel(ctx, t.User.ID)
	if err != nil {
		msg := err.Error()
		return model.DMResult{Error: &msg}, nil
	}
	messageID, err := p.notifier.Send(ctx, channelID, BuildDirectMessage(a))
	if err != nil {
		msg := err.Error()
		return model.DMResult{ChannelID: &channelID, Error: &msg}, nil
	}
	return model.DMResult{ChannelID: &channelID, MessageID: &messageID}, &sentDM{ChannelID: channelID, MessageID: messageID}
}

func (p *Pipeline) apply(ctx context.Context, a Action, t Target) error {
	base := a.Base()
	reason := auditReason(base)

	switch v := a.(type) {
	case Ban:
		return p.platform.Ban(ctx, base.GuildID, t.User.ID, reason, deleteDays(v.DeleteMessageDays))
	case TempBan:
		return p.platform.Ban(ctx, base.GuildID, t.User.ID, reason, deleteDays(v.DeleteMessageDays))
	case Unban:
		return p.platform.Unban(ctx, base.GuildID, t.User.ID, reason)
	case Kick:
		return p.platform.Kick(ctx, base.GuildID, t.User.ID, reason)
	case Timeout:
		return p.platform.SetTimeout(ctx, base.GuildID, t.User.ID, v.Duration.End, reason)
	case TimeoutAdjust:
		return p.platform.SetTimeout(ctx, base.GuildID, t.User.ID, v.Duration.End, reason)
	case UnTimeout:
		return p.platform.ClearTimeout(ctx, base.GuildID, t.User.ID, reason)
	case Warn, Note:
		return nil
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}

func (p *Pipeline) syncTempBan(ctx context.Context, a Action, t Target, logger zerolog.Logger) {
	switch v := a.(type) {
	case TempBan:
		tb := model.TempBan{
			UserID:    t.User.ID,
			GuildID:   v.GuildID,
			ExpiresAt: v.Duration.End.UTC(),
			CreatedAt: p.now().UTC(),
		}
		if err := p.tempBans.Save(ctx, nil, tb); err != nil {
			logger.Error().Err(err).Time("expires_at", tb.ExpiresAt).Msg("failed to save temp ban")
			bestEffortErrorCount.WithLabelValues("tempban_save").Inc()
		}
	case Unban:
		removed, err := p.tempBans.Delete(ctx, nil, v.GuildID, t.User.ID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to delete temp ban")
			bestEffortErrorCount.WithLabelValues("tempban_delete").Inc()
			return
		}
		if removed != nil {
			logger.Debug().Time("expires_at", removed.ExpiresAt).Msg("removed temp ban")
		}
	}
}

func (p *Pipeline) postModLog(ctx context.Context, a Action, t Target, c model.ModerationCase, logger zerolog.Logger) {
	if p.modLog == nil {
		return
	}
	if err := p.modLog.Post(ctx, a.Base().GuildID, a.Kind(), t, c); err != nil {
		logger.Error().Err(err).Msg("failed to post mod log entry")
		bestEffortErrorCount.WithLabelValues("mod_log").Inc()
	}
}

func deleteDays(days *int) int {
	if days == nil {
		return 0
	}
	return *days
}

// auditReason is the platform audit log reason: "<executor>: <reason>", at most 512 characters.
func auditReason(base ActionBase) string {
	reason := "No reason provided"
	if base.Reason != nil && *base.Reason != "" {
		reason = *base.Reason
	}
	if tag := base.Executor.User.Tag; tag != "" {
		reason = tag + ": " + reason
	}
	if utf8.RuneCountInString(reason) > maxAuditReasonLength {
		reason = string([]rune(reason)[:maxAuditReasonLength-3]) + "..."
	}
	return reason
}
