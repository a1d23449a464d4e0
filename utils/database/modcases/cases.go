package modcases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
)

const caseColumns = "guild_id, case_id, action, action_time, user_id, user_tag, executor_id, reason, msg_id, attachments, dm_result, pending"

// CaseRepository persists moderation cases and their per-guild counters.
type CaseRepository struct {
	db *sqlx.DB
}

type caseRow struct {
	GuildID     string         `db:"guild_id"`
	CaseID      int64          `db:"case_id"`
	Action      string         `db:"action"`
	ActionTime  int64          `db:"action_time"`
	UserID      string         `db:"user_id"`
	UserTag     string         `db:"user_tag"`
	ExecutorID  sql.NullString `db:"executor_id"`
	Reason      sql.NullString `db:"reason"`
	MsgID       sql.NullString `db:"msg_id"`
	Attachments string         `db:"attachments"`
	DMResult    sql.NullString `db:"dm_result"`
	Pending     bool           `db:"pending"`
}

func parseCaseID(caseID string) (int64, error) {
	id, err := strconv.ParseInt(caseID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid case id %q: %w", caseID, err)
	}
	return id, nil
}

func toRow(c model.ModerationCase) (caseRow, error) {
	id, err := parseCaseID(c.CaseID)
	if err != nil {
		return caseRow{}, err
	}

	attachments := c.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	rawAttachments, err := json.Marshal(attachments)
	if err != nil {
		return caseRow{}, fmt.Errorf("failed to encode attachments: %w", err)
	}

	row := caseRow{
		GuildID:     c.GuildID,
		CaseID:      id,
		Action:      string(c.ActionKind),
		ActionTime:  c.ActionTime.Unix(),
		UserID:      c.TargetUserID,
		UserTag:     c.TargetUserTag,
		ExecutorID:  nullString(c.ExecutorID),
		Reason:      nullString(c.Reason),
		MsgID:       nullString(c.MessageID),
		Attachments: string(rawAttachments),
		Pending:     c.Pending,
	}
	if c.DMResult != nil {
		raw, err := json.Marshal(c.DMResult)
		if err != nil {
			return caseRow{}, fmt.Errorf("failed to encode dm result: %w", err)
		}
		row.DMResult = sql.NullString{String: string(raw), Valid: true}
	}
	return row, nil
}

func (r caseRow) toModel() (model.ModerationCase, error) {
	c := model.ModerationCase{
		GuildID:       r.GuildID,
		CaseID:        strconv.FormatInt(r.CaseID, 10),
		ActionKind:    model.ActionKind(r.Action),
		ActionTime:    time.Unix(r.ActionTime, 0).UTC(),
		TargetUserID:  r.UserID,
		TargetUserTag: r.UserTag,
		ExecutorID:    stringPtr(r.ExecutorID),
		Reason:        stringPtr(r.Reason),
		MessageID:     stringPtr(r.MsgID),
		Pending:       r.Pending,
	}
	if r.Attachments != "" {
		if err := json.Unmarshal([]byte(r.Attachments), &c.Attachments); err != nil {
			return model.ModerationCase{}, fmt.Errorf("failed to decode attachments of case %d: %w", r.CaseID, err)
		}
	}
	if r.DMResult.Valid {
		var dm model.DMResult
		if err := json.Unmarshal([]byte(r.DMResult.String), &dm); err != nil {
			return model.ModerationCase{}, fmt.Errorf("failed to decode dm result of case %d: %w", r.CaseID, err)
		}
		c.DMResult = &dm
	}
	return c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// NextCaseNumber increments the guild's counter and returns the new value.
// Callers run it in the same transaction as the insert that uses the number.
func (r *CaseRepository) NextCaseNumber(ctx context.Context, tx *sqlx.Tx, guildID string) (uint64, error) {
	q := ext(r.db, tx)
	query := q.Rebind(`INSERT INTO moderation_case_counters (guild_id, last_case_id) VALUES (?, 1)
		ON CONFLICT (guild_id) DO UPDATE SET last_case_id = moderation_case_counters.last_case_id + 1
		RETURNING last_case_id`)

	var next int64
	if err := q.QueryRowxContext(ctx, query, guildID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to allocate case number for guild %s: %w", guildID, err)
	}
	return uint64(next), nil
}

// Save inserts a new case.
func (r *CaseRepository) Save(ctx context.Context, tx *sqlx.Tx, c model.ModerationCase) error {
	row, err := toRow(c)
	if err != nil {
		return err
	}

	query := `INSERT INTO moderation_cases (` + caseColumns + `)
		VALUES (:guild_id, :case_id, :action, :action_time, :user_id, :user_tag, :executor_id, :reason, :msg_id, :attachments, :dm_result, :pending)`
	if _, err := sqlx.NamedExecContext(ctx, ext(r.db, tx), query, row); err != nil {
		return fmt.Errorf("failed to insert case %s in guild %s: %w", c.CaseID, c.GuildID, err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing case.
func (r *CaseRepository) Update(ctx context.Context, tx *sqlx.Tx, c model.ModerationCase) error {
	row, err := toRow(c)
	if err != nil {
		return err
	}

	query := `UPDATE moderation_cases SET
		user_tag = :user_tag, reason = :reason, msg_id = :msg_id,
		attachments = :attachments, dm_result = :dm_result, pending = :pending
		WHERE guild_id = :guild_id AND case_id = :case_id`
	result, err := sqlx.NamedExecContext(ctx, ext(r.db, tx), query, row)
	if err != nil {
		return fmt.Errorf("failed to update case %s in guild %s: %w", c.CaseID, c.GuildID, err)
	}
	return checkAffected(result, fmt.Sprintf("case %s in guild %s", c.CaseID, c.GuildID))
}

// Delete removes a case. It does not rewind the guild counter.
func (r *CaseRepository) Delete(ctx context.Context, tx *sqlx.Tx, guildID, caseID string) error {
	id, err := parseCaseID(caseID)
	if err != nil {
		return err
	}
	q := ext(r.db, tx)
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM moderation_cases WHERE guild_id = ? AND case_id = ?`), guildID, id)
	if err != nil {
		return fmt.Errorf("failed to delete case %s in guild %s: %w", caseID, guildID, err)
	}
	return checkAffected(result, fmt.Sprintf("case %s in guild %s", caseID, guildID))
}

// Get loads a single case.
func (r *CaseRepository) Get(ctx context.Context, guildID, caseID string) (model.ModerationCase, error) {
	id, err := parseCaseID(caseID)
	if err != nil {
		return model.ModerationCase{}, err
	}
	var row caseRow
	query := r.db.Rebind(`SELECT ` + caseColumns + ` FROM moderation_cases WHERE guild_id = ? AND case_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, guildID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ModerationCase{}, fmt.Errorf("case %s in guild %s: %w", caseID, guildID, ErrNotFound)
		}
		return model.ModerationCase{}, fmt.Errorf("failed to get case %s in guild %s: %w", caseID, guildID, err)
	}
	return row.toModel()
}

// CountByGuild returns the number of stored cases for a guild.
func (r *CaseRepository) CountByGuild(ctx context.Context, guildID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM moderation_cases WHERE guild_id = ?`), guildID); err != nil {
		return 0, fmt.Errorf("failed to count cases for guild %s: %w", guildID, err)
	}
	return n, nil
}

func checkAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for %s: %w", what, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
