package modcases

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "moderation.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func strPtr(s string) *string { return &s }

// insertCase allocates a number and stores a case. Safe to call off the test goroutine.
func insertCase(s *Store, guildID, userID string, kind model.ActionKind) (model.ModerationCase, error) {
	ctx := context.Background()
	var c model.ModerationCase
	err := s.RunInTx(ctx, func(tx *sqlx.Tx) error {
		n, err := s.Cases().NextCaseNumber(ctx, tx, guildID)
		if err != nil {
			return err
		}
		c = model.ModerationCase{
			GuildID:       guildID,
			CaseID:        strconv.FormatUint(n, 10),
			ActionKind:    kind,
			ActionTime:    time.Unix(1714564800, 0).UTC(),
			TargetUserID:  userID,
			TargetUserTag: userID + "#0001",
			ExecutorID:    strPtr("mod-1"),
			Reason:        strPtr("spam"),
			Pending:       true,
		}
		return s.Cases().Save(ctx, tx, c)
	})
	return c, err
}

func newCase(t *testing.T, s *Store, guildID, userID string, kind model.ActionKind) model.ModerationCase {
	t.Helper()
	c, err := insertCase(s, guildID, userID, kind)
	require.NoError(t, err)
	return c
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "data/mod.db?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", sqliteDSN("data/mod.db"))
	assert.Equal(t, "file:x.db?mode=rwc&_busy_timeout=100&_txlock=immediate&_foreign_keys=on", sqliteDSN("file:x.db?mode=rwc&_busy_timeout=100"))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.db")
	db, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open("mysql", path)
	assert.Error(t, err)
}

func TestCaseRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := newCase(t, s, "g1", "u1", model.ActionBan)
	assert.Equal(t, "1", c.CaseID)

	got, err := s.Cases().Get(ctx, "g1", "1")
	require.NoError(t, err)
	assert.Equal(t, c.ActionTime, got.ActionTime)
	assert.Equal(t, "spam", *got.Reason)
	assert.True(t, got.Pending)
	assert.Nil(t, got.DMResult)
	assert.Empty(t, got.Attachments)

	updated := got.WithDMResult(model.DMResult{ChannelID: strPtr("dm-1"), MessageID: strPtr("m-1")})
	updated.Attachments = []string{"https://cdn.example/proof.png"}
	require.NoError(t, s.Cases().Update(ctx, nil, updated))

	got, err = s.Cases().Get(ctx, "g1", "1")
	require.NoError(t, err)
	assert.True(t, got.DMSuccess())
	assert.Equal(t, "m-1", *got.DMResult.MessageID)
	assert.Equal(t, []string{"https://cdn.example/proof.png"}, got.Attachments)
}

func TestCaseDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	newCase(t, s, "g1", "u1", model.ActionKick)
	require.NoError(t, s.Cases().Delete(ctx, nil, "g1", "1"))

	_, err := s.Cases().Get(ctx, "g1", "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Cases().Delete(ctx, nil, "g1", "1"), ErrNotFound)

	next := newCase(t, s, "g1", "u1", model.ActionKick)
	assert.Equal(t, "2", next.CaseID, "deleted numbers are not reused")
}

func TestUpdateMissingCase(t *testing.T) {
	s := openTestStore(t)
	err := s.Cases().Update(context.Background(), nil, model.ModerationCase{GuildID: "g1", CaseID: "7"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunInTxRollsBackAllocation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.Cases().NextCaseNumber(ctx, tx, "g1"); err != nil {
			return err
		}
		return s.Cases().Save(ctx, tx, model.ModerationCase{GuildID: "g1", CaseID: "not-a-number"})
	})
	require.Error(t, err)

	c := newCase(t, s, "g1", "u1", model.ActionWarn)
	assert.Equal(t, "1", c.CaseID)
}

func TestConcurrentAllocationIsUnique(t *testing.T) {
	s := openTestStore(t)
	const workers = 40

	type result struct {
		id  string
		err error
	}

	var wg sync.WaitGroup
	results := make(chan result, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := insertCase(s, "g1", "u"+strconv.Itoa(i), model.ActionNote)
			results <- result{id: c.CaseID, err: err}
		}(i)
	}
	wg.Wait()
	close(results)

	ids := make([]string, 0, workers)
	for r := range results {
		require.NoError(t, r.err)
		ids = append(ids, r.id)
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate case id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
	for i := 1; i <= workers; i++ {
		assert.True(t, seen[strconv.Itoa(i)], "missing case id %d", i)
	}

	n, err := s.Cases().CountByGuild(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, workers, n)
}

func TestCaseNumbersArePerGuild(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, "1", newCase(t, s, "g1", "u1", model.ActionWarn).CaseID)
	assert.Equal(t, "1", newCase(t, s, "g2", "u1", model.ActionWarn).CaseID)
	assert.Equal(t, "2", newCase(t, s, "g1", "u1", model.ActionWarn).CaseID)
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	newCase(t, s, "g1", "u1", model.ActionWarn)
	newCase(t, s, "g1", "u2", model.ActionBan)
	newCase(t, s, "g1", "u1", model.ActionKick)
	newCase(t, s, "g2", "u1", model.ActionWarn)

	all, err := s.Cases().Search(ctx, CaseFilter{GuildID: "g1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].CaseID)

	byUser, err := s.Cases().Search(ctx, CaseFilter{GuildID: "g1", UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byKind, err := s.Cases().Search(ctx, CaseFilter{GuildID: "g1", Kinds: []model.ActionKind{model.ActionBan, model.ActionKick}})
	require.NoError(t, err)
	assert.Len(t, byKind, 2)

	paged, err := s.Cases().Search(ctx, CaseFilter{GuildID: "g1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "2", paged[0].CaseID)

	_, err = s.Cases().Search(ctx, CaseFilter{})
	assert.Error(t, err)
}

func TestTempBans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1714564800, 0).UTC()
	repo := s.TempBans()

	require.NoError(t, repo.Save(ctx, nil, model.TempBan{GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Save(ctx, nil, model.TempBan{GuildID: "g1", UserID: "u2", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))

	expired, err := repo.ListExpired(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "u1", expired[0].UserID)

	require.NoError(t, repo.Save(ctx, nil, model.TempBan{GuildID: "g1", UserID: "u1", ExpiresAt: now.Add(2 * time.Hour), CreatedAt: now}))
	got, err := repo.Get(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), got.ExpiresAt)

	deleted, err := repo.Delete(ctx, nil, "g1", "u1")
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "u1", deleted.UserID)

	deleted, err = repo.Delete(ctx, nil, "g1", "u1")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	_, err = repo.Get(ctx, "g1", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuildConfigs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cached := NewCachedGuildConfigs(s.GuildConfigs(), 16, time.Minute)

	cfg, err := cached.FindByGuildID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGuildModerationConfig("g1"), cfg)

	cfg.BanDMEnabled = false
	cfg.ModLogChannelID = "c1"
	saved, err := cached.Save(ctx, cfg)
	require.NoError(t, err)
	assert.NotZero(t, saved.UpdatedAt)

	got, err := cached.FindByGuildID(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, got.BanDMEnabled)
	assert.True(t, got.TimeoutCommandDMEnabled)
	assert.Equal(t, "c1", got.ModLogChannelID)

	fromDB, err := s.GuildConfigs().FindByGuildID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, got, fromDB)
}
