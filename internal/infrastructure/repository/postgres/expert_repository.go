package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/suwei8/lotto-ai4/internal/domain/expert"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	qb "github.com/suwei8/lotto-ai4/internal/platform/querybuilder"
)

type ExpertRepository struct {
	db *sqlx.DB
}

func NewExpertRepository(db *sqlx.DB) *ExpertRepository {
	return &ExpertRepository{db: db}
}

func (r *ExpertRepository) Upsert(ctx context.Context, item expert.Expert) (upsert.Outcome, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}

	return upsertRow(ctx, r.db, "upsert expert", func(tx *sqlx.Tx) (upsert.Outcome, error) {
		query, args, err := qb.Select("user_id", "nick_name").From("expert_info").
			Where(qb.Eq("user_id", item.UserID)).
			ForUpdate().
			ToSQL()
		if err != nil {
			return "", fmt.Errorf("build select expert query: %w", err)
		}

		var row expertTableModel
		err = tx.GetContext(ctx, &row, query, args...)
		switch {
		case isNotFound(err):
			insertErr := execQuery(ctx, tx, "insert expert", func() (string, []any, error) {
				return qb.InsertModel("expert_info", expertTableModel{UserID: item.UserID, NickName: item.NickName}, "")
			})
			return upsert.Inserted, insertErr
		case err != nil:
			return "", fmt.Errorf("select expert for update: %w", err)
		case row.NickName == item.NickName:
			return upsert.Skipped, nil
		}

		updateErr := execQuery(ctx, tx, "update expert", func() (string, []any, error) {
			return qb.Update("expert_info").
				Set("nick_name", item.NickName).
				SetExpr("updated_at", "NOW()").
				Where(qb.Eq("user_id", item.UserID)).
				ToSQL()
		})
		return upsert.Updated, updateErr
	})
}

func (r *ExpertRepository) GetByID(ctx context.Context, userID int64) (expert.Expert, bool, error) {
	query, args, err := qb.Select("user_id", "nick_name").From("expert_info").
		Where(qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return expert.Expert{}, false, fmt.Errorf("build select expert by id query: %w", err)
	}

	var row expertTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return expert.Expert{}, false, nil
		}
		return expert.Expert{}, false, fmt.Errorf("select expert by id: %w", err)
	}
	return expert.Expert{UserID: row.UserID, NickName: row.NickName}, true, nil
}

func (r *ExpertRepository) List(ctx context.Context, limit int) ([]expert.Expert, error) {
	query, args, err := qb.Select("user_id", "nick_name").From("expert_info").
		OrderBy("user_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list experts query: %w", err)
	}

	var rows []expertTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list experts: %w", err)
	}

	out := make([]expert.Expert, 0, len(rows))
	for _, row := range rows {
		out = append(out, expert.Expert{UserID: row.UserID, NickName: row.NickName})
	}
	return out, nil
}
