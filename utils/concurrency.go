package utils

import "sync"

// TargetLocks tracks users that currently have a moderation action in flight.
type TargetLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewTargetLocks() *TargetLocks {
	return &TargetLocks{held: make(map[string]struct{})}
}

func targetKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// TryLock claims the user in the guild. It returns false if someone else holds it.
func (l *TargetLocks) TryLock(guildID, userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := targetKey(guildID, userID)
	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

func (l *TargetLocks) Unlock(guildID, userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, targetKey(guildID, userID))
}
