package model

import "time"

// ActionKind identifies what a moderation action does.
type ActionKind string

const (
	ActionBan           ActionKind = "ban"
	ActionTempBan       ActionKind = "tempban"
	ActionUnban         ActionKind = "unban"
	ActionKick          ActionKind = "kick"
	ActionTimeout       ActionKind = "timeout"
	ActionTimeoutAdjust ActionKind = "timeout_adjust"
	ActionUnTimeout     ActionKind = "untimeout"
	ActionWarn          ActionKind = "warn"
	ActionNote          ActionKind = "note"
)

// ActionKinds lists every kind in display order.
var ActionKinds = []ActionKind{
	ActionBan, ActionTempBan, ActionUnban, ActionKick,
	ActionTimeout, ActionTimeoutAdjust, ActionUnTimeout,
	ActionWarn, ActionNote,
}

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	for _, known := range ActionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// DMResult is the outcome of a direct-message notification attempt.
type DMResult struct {
	ChannelID *string `json:"channel_id,omitempty"`
	MessageID *string `json:"message_id,omitempty"`
	Error     *string `json:"error,omitempty"`
}

// ModerationCase is the audit record for one action executed against one target.
// Values are treated as immutable; use the With* methods to derive updated copies.
type ModerationCase struct {
	GuildID       string
	CaseID        string
	ActionKind    ActionKind
	ActionTime    time.Time
	TargetUserID  string
	TargetUserTag string
	ExecutorID    *string
	Reason        *string
	MessageID     *string
	Attachments   []string
	DMResult      *DMResult
	Pending       bool
}

// DMAttempted reports whether a notification was attempted for this case.
func (c ModerationCase) DMAttempted() bool {
	return c.DMResult != nil
}

// DMSuccess reports whether the notification was delivered.
func (c ModerationCase) DMSuccess() bool {
	return c.DMResult != nil && c.DMResult.MessageID != nil
}

// DMFailed reports whether the notification attempt produced an error.
func (c ModerationCase) DMFailed() bool {
	return c.DMResult != nil && c.DMResult.Error != nil
}

// WithDMResult returns a copy of the case carrying the given DM outcome.
func (c ModerationCase) WithDMResult(r DMResult) ModerationCase {
	out := c
	if c.Attachments != nil {
		out.Attachments = append([]string(nil), c.Attachments...)
	}
	out.DMResult = &r
	return out
}

// WithCaseID returns a copy of the case with the allocated case number.
func (c ModerationCase) WithCaseID(caseID string) ModerationCase {
	out := c
	if c.Attachments != nil {
		out.Attachments = append([]string(nil), c.Attachments...)
	}
	out.CaseID = caseID
	return out
}
