package moderation

import (
	"errors"
	"fmt"

	"discord-modbot/model"
)

// ValidationError is returned when an action fails its local checks. No side effect happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AllocationError is returned when the case number could not be allocated or the case not stored.
// No side effect happened.
type AllocationError struct {
	GuildID string
	Err     error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("failed to create case in guild %s: %v", e.GuildID, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// ActionError is returned when the platform action failed. The case and any
// pre-action DM have been rolled back by the time the caller sees it.
type ActionError struct {
	Kind     model.ActionKind
	TargetID string
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("failed to %s user %s: %v", e.Kind, e.TargetID, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// PlatformFailure classifies platform action errors.
type PlatformFailure string

const (
	FailureTargetNotInGuild       PlatformFailure = "target_not_in_guild"
	FailureInsufficientPermission PlatformFailure = "insufficient_permission"
	FailureNotBanned              PlatformFailure = "not_banned"
	FailureTransport              PlatformFailure = "transport"
)

// PlatformError is the typed failure a PlatformExecutor returns.
type PlatformError struct {
	Kind PlatformFailure
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// PlatformFailureOf extracts the failure kind from err, or "" when err is not a PlatformError.
func PlatformFailureOf(err error) PlatformFailure {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
