package model

import "time"

// TempBan schedules the removal of a ban. There is at most one per (guild, user).
type TempBan struct {
	UserID    string
	GuildID   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the ban should have been lifted at now.
func (t TempBan) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
