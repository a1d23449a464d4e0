package moderation

import (
	"context"
	"strings"

	"discord-modbot/model"
)

// Timing is when a notification would be sent relative to the platform action.
type Timing string

const (
	Before Timing = "before"
	After  Timing = "after"
)

// dmRule applies every rule that does not need guild settings.
// decided is false when the guild configuration has to be consulted.
func dmRule(timing Timing, a Action, t Target) (send bool, decided bool) {
	kind := a.Kind()
	base := a.Base()

	if !t.IsInGuild() || !SupportsDM(kind) {
		return false, true
	}
	if IsBanFamily(kind) != (timing == Before) {
		return false, true
	}
	if base.Reason == nil || strings.TrimSpace(*base.Reason) == "" {
		return false, true
	}
	if kind == model.ActionWarn {
		return true, true
	}
	switch base.DMChoice {
	case DMForce:
		return true, true
	case DMSuppress:
		return false, true
	}
	if kind == model.ActionUnban {
		return false, true
	}
	return false, false
}

func dmFromConfig(kind model.ActionKind, cfg model.GuildModerationConfig) bool {
	switch kind {
	case model.ActionBan, model.ActionTempBan:
		return cfg.BanDMEnabled
	case model.ActionTimeout, model.ActionTimeoutAdjust:
		return cfg.TimeoutCommandDMEnabled
	default:
		return true
	}
}

// ShouldSendDM decides whether the target of a is notified at timing, given the guild settings.
func ShouldSendDM(timing Timing, a Action, t Target, cfg model.GuildModerationConfig) bool {
	if send, decided := dmRule(timing, a, t); decided {
		return send
	}
	return dmFromConfig(a.Kind(), cfg)
}

// DMPolicy is ShouldSendDM with the guild settings loaded on demand.
type DMPolicy struct {
	Configs GuildConfigLookup
}

// Decide loads guild settings only when no earlier rule applies.
func (p DMPolicy) Decide(ctx context.Context, timing Timing, a Action, t Target) (bool, error) {
	if send, decided := dmRule(timing, a, t); decided {
		return send, nil
	}
	cfg, err := p.Configs.FindByGuildID(ctx, a.Base().GuildID)
	if err != nil {
		return false, err
	}
	return dmFromConfig(a.Kind(), cfg), nil
}
