package moderation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"discord-modbot/model"
)

const (
	MaxReasonLength      = 1024
	MaxDeleteMessageDays = 7
	MaxTimeoutLength     = 28 * 24 * time.Hour
	MaxTempBanLength     = 365 * 24 * time.Hour
)

// DMChoice is the per-invocation notification override.
type DMChoice int

const (
	DMUnspecified DMChoice = iota
	DMForce
	DMSuppress
)

func (c DMChoice) String() string {
	switch c {
	case DMForce:
		return "force"
	case DMSuppress:
		return "suppress"
	default:
		return "unspecified"
	}
}

// ActionBase carries the fields every action kind has.
type ActionBase struct {
	GuildID    string
	Executor   Executor
	Reason     *string
	DMChoice   DMChoice
	Attachment *string
}

// Base returns the common fields.
func (b ActionBase) Base() ActionBase { return b }

func (b ActionBase) validate(reasonRequired bool) error {
	if b.GuildID == "" {
		return &ValidationError{Field: "guild", Message: "guild id is required"}
	}
	if b.Reason != nil && utf8.RuneCountInString(*b.Reason) > MaxReasonLength {
		return &ValidationError{Field: "reason", Message: fmt.Sprintf("must be at most %d characters", MaxReasonLength)}
	}
	if reasonRequired && (b.Reason == nil || strings.TrimSpace(*b.Reason) == "") {
		return &ValidationError{Field: "reason", Message: "a reason is required"}
	}
	return nil
}

// Action is a validated-before-use description of one moderation action.
// The set of implementations is closed: Ban, TempBan, Unban, Kick, Timeout,
// TimeoutAdjust, UnTimeout, Warn and Note.
type Action interface {
	Kind() model.ActionKind
	Base() ActionBase
	Validate() error
	isAction()
}

type Ban struct {
	ActionBase
	DeleteMessageDays *int
}

type TempBan struct {
	ActionBase
	Duration          Duration
	DeleteMessageDays *int
}

type Unban struct{ ActionBase }

type Kick struct{ ActionBase }

type Timeout struct {
	ActionBase
	Duration Duration
}

// TimeoutAdjust changes the end of an existing timeout.
type TimeoutAdjust struct {
	ActionBase
	Duration Duration
}

type UnTimeout struct{ ActionBase }

type Warn struct{ ActionBase }

type Note struct{ ActionBase }

func (Ban) Kind() model.ActionKind           { return model.ActionBan }
func (TempBan) Kind() model.ActionKind       { return model.ActionTempBan }
func (Unban) Kind() model.ActionKind         { return model.ActionUnban }
func (Kick) Kind() model.ActionKind          { return model.ActionKick }
func (Timeout) Kind() model.ActionKind       { return model.ActionTimeout }
func (TimeoutAdjust) Kind() model.ActionKind { return model.ActionTimeoutAdjust }
func (UnTimeout) Kind() model.ActionKind     { return model.ActionUnTimeout }
func (Warn) Kind() model.ActionKind          { return model.ActionWarn }
func (Note) Kind() model.ActionKind          { return model.ActionNote }

func (Ban) isAction()           {}
func (TempBan) isAction()       {}
func (Unban) isAction()         {}
func (Kick) isAction()          {}
func (Timeout) isAction()       {}
func (TimeoutAdjust) isAction() {}
func (UnTimeout) isAction()     {}
func (Warn) isAction()          {}
func (Note) isAction()          {}

func validateDeleteDays(days *int) error {
	if days != nil && (*days < 0 || *days > MaxDeleteMessageDays) {
		return &ValidationError{Field: "delete_message_days", Message: fmt.Sprintf("must be between 0 and %d", MaxDeleteMessageDays)}
	}
	return nil
}

func validateTimeoutLength(d Duration) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Length > MaxTimeoutLength {
		return &ValidationError{Field: "duration", Message: "timeouts cannot be longer than 28 days"}
	}
	return nil
}

func (a Ban) Validate() error {
	if err := a.validate(false); err != nil {
		return err
	}
	return validateDeleteDays(a.DeleteMessageDays)
}

func (a TempBan) Validate() error {
	if err := a.validate(false); err != nil {
		return err
	}
	if err := validateDeleteDays(a.DeleteMessageDays); err != nil {
		return err
	}
	if err := a.Duration.Validate(); err != nil {
		return err
	}
	if a.Duration.Length > MaxTempBanLength {
		return &ValidationError{Field: "duration", Message: "temporary bans cannot be longer than 365 days, use ban instead"}
	}
	return nil
}

func (a Unban) Validate() error { return a.validate(false) }

func (a Kick) Validate() error { return a.validate(false) }

func (a Timeout) Validate() error {
	if err := a.validate(false); err != nil {
		return err
	}
	return validateTimeoutLength(a.Duration)
}

func (a TimeoutAdjust) Validate() error {
	if err := a.validate(false); err != nil {
		return err
	}
	return validateTimeoutLength(a.Duration)
}

func (a UnTimeout) Validate() error { return a.validate(false) }

func (a Warn) Validate() error { return a.validate(true) }

func (a Note) Validate() error { return a.validate(true) }

// ActionOptions holds the variant-only inputs for NewAction.
type ActionOptions struct {
	Duration          *Duration
	DeleteMessageDays *int
}

// NewAction builds the variant for kind and validates it.
func NewAction(kind model.ActionKind, base ActionBase, opts ActionOptions) (Action, error) {
	needDuration := func() (Duration, error) {
		if opts.Duration == nil {
			return Duration{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("%s requires a duration", kind)}
		}
		return *opts.Duration, nil
	}

	var a Action
	switch kind {
	case model.ActionBan:
		a = Ban{ActionBase: base, DeleteMessageDays: opts.DeleteMessageDays}
	case model.ActionTempBan:
		d, err := needDuration()
		if err != nil {
			return nil, err
		}
		a = TempBan{ActionBase: base, Duration: d, DeleteMessageDays: opts.DeleteMessageDays}
	case model.ActionUnban:
		a = Unban{ActionBase: base}
	case model.ActionKick:
		a = Kick{ActionBase: base}
	case model.ActionTimeout:
		d, err := needDuration()
		if err != nil {
			return nil, err
		}
		a = Timeout{ActionBase: base, Duration: d}
	case model.ActionTimeoutAdjust:
		d, err := needDuration()
		if err != nil {
			return nil, err
		}
		a = TimeoutAdjust{ActionBase: base, Duration: d}
	case model.ActionUnTimeout:
		a = UnTimeout{ActionBase: base}
	case model.ActionWarn:
		a = Warn{ActionBase: base}
	case model.ActionNote:
		a = Note{ActionBase: base}
	default:
		return nil, &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action kind %q", kind)}
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// IsBanFamily reports whether notifications for kind must precede the platform action.
func IsBanFamily(kind model.ActionKind) bool {
	return kind == model.ActionBan || kind == model.ActionTempBan
}

// SupportsDM reports whether kind can notify its target at all.
func SupportsDM(kind model.ActionKind) bool {
	switch kind {
	case model.ActionUnban, model.ActionNote:
		return false
	default:
		return true
	}
}

// RequiresPlatformAction reports whether kind has an external side effect.
func RequiresPlatformAction(kind model.ActionKind) bool {
	switch kind {
	case model.ActionWarn, model.ActionNote:
		return false
	default:
		return true
	}
}

// DurationOf returns the duration carried by temporal actions.
func DurationOf(a Action) (Duration, bool) {
	switch v := a.(type) {
	case TempBan:
		return v.Duration, true
	case Timeout:
		return v.Duration, true
	case TimeoutAdjust:
		return v.Duration, true
	default:
		return Duration{}, false
	}
}
