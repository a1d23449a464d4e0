package modcases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a lookup or delete matches no row.
var ErrNotFound = errors.New("record not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS moderation_case_counters (
		guild_id TEXT NOT NULL PRIMARY KEY,
		last_case_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS moderation_cases (
		guild_id TEXT NOT NULL,
		case_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		action_time BIGINT NOT NULL,
		user_id TEXT NOT NULL,
		user_tag TEXT NOT NULL,
		executor_id TEXT,
		reason TEXT,
		msg_id TEXT,
		attachments TEXT NOT NULL DEFAULT '[]',
		dm_result TEXT,
		PRIMARY KEY (guild_id, case_id)
	)`,
	`CREATE INDEX IF NOT EXISTS moderation_cases_user_idx ON moderation_cases (guild_id, user_id)`,
	`CREATE TABLE IF NOT EXISTS temp_bans (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		expires_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (guild_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS temp_bans_expires_idx ON temp_bans (expires_at)`,
	`CREATE TABLE IF NOT EXISTS guild_moderation_configs (
		guild_id TEXT NOT NULL PRIMARY KEY,
		ban_dm_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		timeout_dm_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at BIGINT NOT NULL DEFAULT 0
	)`,
}

// Columns added after the first release.
var migrations = []string{
	`ALTER TABLE moderation_cases ADD COLUMN pending BOOLEAN NOT NULL DEFAULT FALSE`,
	`ALTER TABLE guild_moderation_configs ADD COLUMN mod_log_channel_id TEXT NOT NULL DEFAULT ''`,
}

// Open connects to the moderation database and makes sure the schema is current.
// SQLite connections are limited to one so case allocation is serialized.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to moderation database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := Init(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "_busy_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if !strings.Contains(dsn, "_foreign_keys=") {
		params = append(params, "_foreign_keys=on")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Init creates the tables and applies column migrations.
func Init(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create moderation schema: %w", err)
		}
	}

	for _, stmt := range migrations {
		_, err := db.Exec(stmt)
		if err != nil && !isDuplicateColumn(err) {
			return fmt.Errorf("failed to execute ALTER statement %s: %w", stmt, err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists")
}

// Store owns the moderation tables. It hands out the repositories and runs
// transactions for them.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sqlx.DB { return s.db }

// RunInTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Cases() *CaseRepository { return &CaseRepository{db: s.db} }

func (s *Store) TempBans() *TempBanRepository { return &TempBanRepository{db: s.db} }

func (s *Store) GuildConfigs() *GuildConfigRepository { return &GuildConfigRepository{db: s.db} }

// ext returns tx when a transaction is in progress, else the pool.
func ext(db *sqlx.DB, tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return db
}
