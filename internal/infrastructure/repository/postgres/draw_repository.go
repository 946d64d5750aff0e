package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/suwei8/lotto-ai4/internal/domain/draw"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	qb "github.com/suwei8/lotto-ai4/internal/platform/querybuilder"
)

type DrawRepository struct {
	db *sqlx.DB
}

func NewDrawRepository(db *sqlx.DB) *DrawRepository {
	return &DrawRepository{db: db}
}

// Upsert keys on (lottery_name, issue_name). A draw whose open code is
// unchanged is skipped; otherwise every derived column is rewritten.
func (r *DrawRepository) Upsert(ctx context.Context, item draw.Result) (upsert.Outcome, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	model := drawToModel(item)

	return upsertRow(ctx, r.db, "upsert draw", func(tx *sqlx.Tx) (upsert.Outcome, error) {
		query, args, err := qb.Select("open_code").From("lottery_results").
			Where(
				qb.Eq("lottery_name", item.LotteryName),
				qb.Eq("issue_name", item.IssueName),
			).
			ForUpdate().
			ToSQL()
		if err != nil {
			return "", fmt.Errorf("build select draw query: %w", err)
		}

		var openCode string
		err = tx.GetContext(ctx, &openCode, query, args...)
		switch {
		case isNotFound(err):
			insertErr := execQuery(ctx, tx, "insert draw", func() (string, []any, error) {
				return qb.InsertModel("lottery_results", model, "")
			})
			return upsert.Inserted, insertErr
		case err != nil:
			return "", fmt.Errorf("select draw for update: %w", err)
		case openCode == item.OpenCode:
			return upsert.Skipped, nil
		}

		updateErr := execQuery(ctx, tx, "update draw", func() (string, []any, error) {
			return qb.Update("lottery_results").
				Set("open_code", model.OpenCode).
				Set("sum", model.Sum).
				Set("span", model.Span).
				Set("odd_even_ratio", model.OddEvenRatio).
				Set("big_small_ratio", model.BigSmallRatio).
				Set("open_time", model.OpenTime).
				SetExpr("updated_at", "NOW()").
				Where(
					qb.Eq("lottery_name", item.LotteryName),
					qb.Eq("issue_name", item.IssueName),
				).
				ToSQL()
		})
		return upsert.Updated, updateErr
	})
}

func (r *DrawRepository) GetByIssue(ctx context.Context, lotteryName, issueName string) (draw.Result, bool, error) {
	query, args, err := qb.Select(drawColumns...).From("lottery_results").
		Where(
			qb.Eq("lottery_name", lotteryName),
			qb.Eq("issue_name", issueName),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return draw.Result{}, false, fmt.Errorf("build select draw by issue query: %w", err)
	}

	var row drawTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draw.Result{}, false, nil
		}
		return draw.Result{}, false, fmt.Errorf("select draw by issue: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *DrawRepository) ListRecent(ctx context.Context, lotteryName string, limit int) ([]draw.Result, error) {
	query, args, err := qb.Select(drawColumns...).From("lottery_results").
		Where(qb.Eq("lottery_name", lotteryName)).
		OrderBy("issue_name DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent draws query: %w", err)
	}

	var rows []drawTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list recent draws: %w", err)
	}

	out := make([]draw.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
