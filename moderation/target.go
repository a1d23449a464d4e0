package moderation

import "time"

// Identity is a platform user.
type Identity struct {
	ID  string
	Tag string
	Bot bool
}

// Membership is the guild-membership fact for a user at resolution time.
type Membership struct {
	Nick                       string
	Roles                      []string
	JoinedAt                   time.Time
	CommunicationDisabledUntil *time.Time
}

// Executor is the moderator performing an action.
type Executor struct {
	User   Identity
	Member *Membership
}

// Target is a resolved subject of a moderation action.
type Target struct {
	User   Identity
	Member *Membership
}

// NewTarget builds a target; member is nil when the user is not in the guild.
func NewTarget(user Identity, member *Membership) Target {
	return Target{User: user, Member: member}
}

// IsInGuild reports whether the target was a guild member when resolved.
func (t Target) IsInGuild() bool {
	return t.Member != nil
}
