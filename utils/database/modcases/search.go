package modcases

import (
	"context"
	"fmt"
	"time"

	"discord-modbot/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"
)

const defaultSearchLimit = 25

// CaseFilter narrows a case search. Zero values are ignored.
type CaseFilter struct {
	GuildID    string
	UserID     string
	ExecutorID string
	Kinds      []model.ActionKind
	Since      *time.Time
	Limit      uint64
	Offset     uint64
}

func (r *CaseRepository) builder() sq.StatementBuilderType {
	if r.db.DriverName() == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Search returns cases matching f, newest first.
func (r *CaseRepository) Search(ctx context.Context, f CaseFilter) ([]model.ModerationCase, error) {
	if f.GuildID == "" {
		return nil, fmt.Errorf("guild id is required to search cases")
	}

	q := r.builder().
		Select(caseColumns).
		From("moderation_cases").
		Where(sq.Eq{"guild_id": f.GuildID}).
		OrderBy("case_id DESC")

	if f.UserID != "" {
		q = q.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.ExecutorID != "" {
		q = q.Where(sq.Eq{"executor_id": f.ExecutorID})
	}
	if len(f.Kinds) > 0 {
		q = q.Where(sq.Eq{"action": lo.Map(f.Kinds, func(k model.ActionKind, _ int) string { return string(k) })})
	}
	if f.Since != nil {
		q = q.Where(sq.GtOrEq{"action_time": f.Since.Unix()})
	}

	limit := f.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	q = q.Limit(limit)
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build case search: %w", err)
	}

	var rows []caseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search cases in guild %s: %w", f.GuildID, err)
	}

	cases := make([]model.ModerationCase, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}
