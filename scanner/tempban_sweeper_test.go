package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBans struct {
	bans    []model.TempBan
	deleted []string
}

func (m *memBans) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.TempBan, error) {
	var out []model.TempBan
	for _, tb := range m.bans {
		if tb.Expired(now) && len(out) < limit {
			out = append(out, tb)
		}
	}
	return out, nil
}

func (m *memBans) Delete(ctx context.Context, tx *sqlx.Tx, guildID, userID string) (*model.TempBan, error) {
	m.deleted = append(m.deleted, userID)
	return nil, nil
}

type scriptedRunner struct {
	errs    map[string]error
	actions []moderation.Action
}

func (r *scriptedRunner) Execute(ctx context.Context, a moderation.Action, t moderation.Target) (model.ModerationCase, error) {
	r.actions = append(r.actions, a)
	if err := r.errs[t.User.ID]; err != nil {
		return model.ModerationCase{}, err
	}
	return model.ModerationCase{CaseID: "1", TargetUserID: t.User.ID}, nil
}

func TestTempBanSweeper(t *testing.T) {
	now := time.Unix(1714564800, 0)
	bans := &memBans{bans: []model.TempBan{
		{GuildID: "g", UserID: "lifted", ExpiresAt: now.Add(-time.Hour)},
		{GuildID: "g", UserID: "gone", ExpiresAt: now.Add(-time.Minute)},
		{GuildID: "g", UserID: "forbidden", ExpiresAt: now},
		{GuildID: "g", UserID: "future", ExpiresAt: now.Add(time.Hour)},
	}}
	runner := &scriptedRunner{errs: map[string]error{
		"gone":      &moderation.ActionError{Kind: model.ActionUnban, TargetID: "gone", Err: &moderation.PlatformError{Kind: moderation.FailureNotBanned}},
		"forbidden": &moderation.ActionError{Kind: model.ActionUnban, TargetID: "forbidden", Err: &moderation.PlatformError{Kind: moderation.FailureInsufficientPermission, Err: errors.New("missing permissions")}},
	}}

	s := NewTempBanSweeper(bans, runner, func() moderation.Identity { return moderation.Identity{ID: "bot", Tag: "modbot#0000", Bot: true} })
	s.now = func() time.Time { return now }

	lifted, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lifted)
	assert.Equal(t, []string{"gone"}, bans.deleted)
	require.Len(t, runner.actions, 3)

	unban, ok := runner.actions[0].(moderation.Unban)
	require.True(t, ok)
	assert.Equal(t, "bot", unban.Executor.User.ID)
	assert.Equal(t, tempBanExpiryReason, *unban.Reason)
}

func TestTempBanSweeperStopsOnCancel(t *testing.T) {
	now := time.Unix(1714564800, 0)
	bans := &memBans{bans: []model.TempBan{{GuildID: "g", UserID: "u", ExpiresAt: now}}}
	s := NewTempBanSweeper(bans, &scriptedRunner{}, func() moderation.Identity { return moderation.Identity{ID: "bot"} })
	s.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lifted, err := s.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, lifted)
}

func TestTempBanSweeperBacksOffPersistentFailures(t *testing.T) {
	now := time.Unix(1714564800, 0)
	bans := &memBans{bans: []model.TempBan{{GuildID: "g", UserID: "forbidden", ExpiresAt: now.Add(-time.Hour)}}}
	runner := &scriptedRunner{errs: map[string]error{
		"forbidden": &moderation.PlatformError{Kind: moderation.FailureInsufficientPermission},
	}}
	s := NewTempBanSweeper(bans, runner, func() moderation.Identity { return moderation.Identity{ID: "bot"} })
	clock := now
	s.now = func() time.Time { return clock }

	var stuck []int
	s.OnStuck = func(ctx context.Context, tb model.TempBan, attempts int, err error) {
		stuck = append(stuck, attempts)
	}

	sweep := func() {
		_, err := s.Sweep(context.Background())
		require.NoError(t, err)
	}

	sweep()
	require.Len(t, runner.actions, 1)

	// every tick for the next minute is skipped
	clock = clock.Add(30 * time.Second)
	sweep()
	assert.Len(t, runner.actions, 1)

	clock = clock.Add(31 * time.Second)
	sweep()
	assert.Len(t, runner.actions, 2)

	clock = clock.Add(time.Minute)
	sweep()
	assert.Len(t, runner.actions, 2, "second retry waits two minutes")

	clock = clock.Add(time.Minute + time.Second)
	sweep()
	assert.Len(t, runner.actions, 3)
	assert.Equal(t, []int{3}, stuck)

	for range 30 {
		clock = clock.Add(time.Minute)
		sweep()
	}
	// backoff keeps doubling, so only three more attempts fit in thirty minutes
	assert.Len(t, runner.actions, 6, "attempts stay sparse over half an hour")
	assert.Equal(t, []int{3}, stuck, "stuck alert fires once")
}

func TestTempBanSweeperClearsRetryAfterSuccess(t *testing.T) {
	now := time.Unix(1714564800, 0)
	bans := &memBans{bans: []model.TempBan{{GuildID: "g", UserID: "u", ExpiresAt: now}}}
	runner := &scriptedRunner{errs: map[string]error{"u": errors.New("gateway timeout")}}
	s := NewTempBanSweeper(bans, runner, func() moderation.Identity { return moderation.Identity{ID: "bot"} })
	clock := now
	s.now = func() time.Time { return clock }

	_, err := s.Sweep(context.Background())
	require.NoError(t, err)
	require.Contains(t, s.retries, "g:u")

	delete(runner.errs, "u")
	clock = clock.Add(retryDelay(1))
	lifted, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lifted)
	assert.NotContains(t, s.retries, "g:u")
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Minute, retryDelay(1))
	assert.Equal(t, 2*time.Minute, retryDelay(2))
	assert.Equal(t, 4*time.Minute, retryDelay(3))
	assert.Equal(t, retryMaxDelay, retryDelay(40))
}
