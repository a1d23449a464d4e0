package moderation_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"

	"github.com/jmoiron/sqlx"
)

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type caseKey struct{ guildID, caseID string }

type memCases struct {
	mu        sync.Mutex
	counters  map[string]uint64
	cases     map[caseKey]model.ModerationCase
	allocErr  error
	updateErr error
	deleteErr error
}

func newMemCases() *memCases {
	return &memCases{
		counters: make(map[string]uint64),
		cases:    make(map[caseKey]model.ModerationCase),
	}
}

func (m *memCases) NextCaseNumber(ctx context.Context, tx *sqlx.Tx, guildID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allocErr != nil {
		return 0, m.allocErr
	}
	m.counters[guildID]++
	return m.counters[guildID], nil
}

func (m *memCases) Save(ctx context.Context, tx *sqlx.Tx, c model.ModerationCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := caseKey{c.GuildID, c.CaseID}
	if _, ok := m.cases[k]; ok {
		return fmt.Errorf("case %s already exists", c.CaseID)
	}
	m.cases[k] = c
	return nil
}

func (m *memCases) Update(ctx context.Context, tx *sqlx.Tx, c model.ModerationCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	k := caseKey{c.GuildID, c.CaseID}
	if _, ok := m.cases[k]; !ok {
		return fmt.Errorf("no case %s", c.CaseID)
	}
	m.cases[k] = c
	return nil
}

func (m *memCases) Delete(ctx context.Context, tx *sqlx.Tx, guildID, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.cases, caseKey{guildID, caseID})
	return nil
}

func (m *memCases) get(guildID, caseID string) (model.ModerationCase, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[caseKey{guildID, caseID}]
	return c, ok
}

func (m *memCases) forTarget(guildID, userID string) []model.ModerationCase {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ModerationCase
	for k, c := range m.cases {
		if k.guildID == guildID && c.TargetUserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].CaseID)
		b, _ := strconv.Atoi(out[j].CaseID)
		return a < b
	})
	return out
}

func (m *memCases) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cases)
}

type memTempBans struct {
	mu      sync.Mutex
	records map[[2]string]model.TempBan
	saveErr error
}

func newMemTempBans() *memTempBans {
	return &memTempBans{records: make(map[[2]string]model.TempBan)}
}

func (m *memTempBans) Save(ctx context.Context, tx *sqlx.Tx, tb model.TempBan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[[2]string{tb.GuildID, tb.UserID}] = tb
	return nil
}

func (m *memTempBans) Delete(ctx context.Context, tx *sqlx.Tx, guildID, userID string) (*model.TempBan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]string{guildID, userID}
	tb, ok := m.records[k]
	if !ok {
		return nil, nil
	}
	delete(m.records, k)
	return &tb, nil
}

func (m *memTempBans) get(guildID, userID string) (model.TempBan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tb, ok := m.records[[2]string{guildID, userID}]
	return tb, ok
}

type staticConfigs struct {
	cfg   model.GuildModerationConfig
	err   error
	calls int
}

func (s *staticConfigs) FindByGuildID(ctx context.Context, guildID string) (model.GuildModerationConfig, error) {
	s.calls++
	if s.err != nil {
		return model.GuildModerationConfig{}, s.err
	}
	cfg := s.cfg
	cfg.GuildID = guildID
	return cfg, nil
}

type fakePlatform struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
}

func (f *fakePlatform) record(op, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+":"+userID)
	if err, ok := f.failFor[userID]; ok {
		return err
	}
	return nil
}

func (f *fakePlatform) Ban(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error {
	return f.record("ban", userID)
}

func (f *fakePlatform) Unban(ctx context.Context, guildID, userID, reason string) error {
	return f.record("unban", userID)
}

func (f *fakePlatform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return f.record("kick", userID)
}

func (f *fakePlatform) SetTimeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return f.record("timeout", userID)
}

func (f *fakePlatform) ClearTimeout(ctx context.Context, guildID, userID, reason string) error {
	return f.record("untimeout", userID)
}

func (f *fakePlatform) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu        sync.Mutex
	next      int
	sent      map[string]moderation.DirectMessage
	deleted   []string
	createErr error
	sendErr   error
	deleteErr error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[string]moderation.DirectMessage)}
}

func (f *fakeNotifier) CreateDirectChannel(ctx context.Context, userID string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "dm-" + userID, nil
}

func (f *fakeNotifier) Send(ctx context.Context, channelID string, msg moderation.DirectMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.next++
	id := fmt.Sprintf("msg-%d", f.next)
	f.sent[id] = msg
	return id, nil
}

func (f *fakeNotifier) Delete(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.sent, messageID)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeModLog struct {
	mu    sync.Mutex
	posts []model.ModerationCase
	err   error
}

func (f *fakeModLog) Post(ctx context.Context, guildID string, kind model.ActionKind, target moderation.Target, c model.ModerationCase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.posts = append(f.posts, c)
	return nil
}

var errPlatform = errors.New("boom")
