package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

const uniqueViolationCode = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// upsertRow classifies one write inside its own transaction. The natural key
// cannot be locked before the row exists, so a concurrent insert of the same
// key surfaces as a unique violation; the row is then re-read once and
// classified against the winner.
func upsertRow(ctx context.Context, db *sqlx.DB, label string, fn func(tx *sqlx.Tx) (upsert.Outcome, error)) (upsert.Outcome, error) {
	outcome, err := upsertTx(ctx, db, label, fn)
	if err != nil && isUniqueViolation(err) {
		return upsertTx(ctx, db, label, fn)
	}
	return outcome, err
}

func upsertTx(ctx context.Context, db *sqlx.DB, label string, fn func(tx *sqlx.Tx) (upsert.Outcome, error)) (upsert.Outcome, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx %s: %w", label, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	outcome, err := fn(tx)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx %s: %w", label, err)
	}
	return outcome, nil
}

func execQuery(ctx context.Context, tx *sqlx.Tx, label string, build func() (string, []any, error)) error {
	query, args, err := build()
	if err != nil {
		return fmt.Errorf("build %s query: %w", label, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

func int64sToAny(values []int64) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
