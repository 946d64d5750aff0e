package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	qb "github.com/suwei8/lotto-ai4/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Upsert keys on (user_id, issue_name, playtype_id). Only a changed numbers
// string counts as an update.
func (r *PredictionRepository) Upsert(ctx context.Context, item prediction.Prediction) (upsert.Outcome, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}

	return upsertRow(ctx, r.db, "upsert prediction", func(tx *sqlx.Tx) (upsert.Outcome, error) {
		query, args, err := qb.Select("numbers").From("expert_predictions").
			Where(
				qb.Eq("user_id", item.UserID),
				qb.Eq("issue_name", item.IssueName),
				qb.Eq("playtype_id", item.PlaytypeID),
			).
			ForUpdate().
			ToSQL()
		if err != nil {
			return "", fmt.Errorf("build select prediction query: %w", err)
		}

		var numbers string
		err = tx.GetContext(ctx, &numbers, query, args...)
		switch {
		case isNotFound(err):
			insertErr := execQuery(ctx, tx, "insert prediction", func() (string, []any, error) {
				return qb.InsertModel("expert_predictions", predictionTableModel{
					UserID:     item.UserID,
					IssueName:  item.IssueName,
					LotteryID:  item.LotteryID,
					PlaytypeID: item.PlaytypeID,
					Numbers:    item.Numbers,
				}, "")
			})
			return upsert.Inserted, insertErr
		case err != nil:
			return "", fmt.Errorf("select prediction for update: %w", err)
		case numbers == item.Numbers:
			return upsert.Skipped, nil
		}

		updateErr := execQuery(ctx, tx, "update prediction", func() (string, []any, error) {
			return qb.Update("expert_predictions").
				Set("numbers", item.Numbers).
				SetExpr("updated_at", "NOW()").
				Where(
					qb.Eq("user_id", item.UserID),
					qb.Eq("issue_name", item.IssueName),
					qb.Eq("playtype_id", item.PlaytypeID),
				).
				ToSQL()
		})
		return upsert.Updated, updateErr
	})
}

func (r *PredictionRepository) List(ctx context.Context, filter prediction.Filter) ([]prediction.Prediction, error) {
	var conds []qb.Condition
	if filter.IssueName != "" {
		conds = append(conds, qb.Eq("issue_name", filter.IssueName))
	}
	if filter.LotteryID > 0 {
		conds = append(conds, qb.Eq("lottery_id", filter.LotteryID))
	}
	if len(filter.PlaytypeIDs) > 0 {
		conds = append(conds, qb.In("playtype_id", int64sToAny(filter.PlaytypeIDs)))
	}
	if len(filter.UserIDs) > 0 {
		conds = append(conds, qb.In("user_id", int64sToAny(filter.UserIDs)))
	}

	query, args, err := qb.Select(predictionColumns...).From("expert_predictions").
		Where(conds...).
		OrderBy("user_id", "playtype_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			UserID:     row.UserID,
			IssueName:  row.IssueName,
			LotteryID:  row.LotteryID,
			PlaytypeID: row.PlaytypeID,
			Numbers:    row.Numbers,
		})
	}
	return out, nil
}
