package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	qb "github.com/suwei8/lotto-ai4/internal/platform/querybuilder"
)

type playtypeTableModel struct {
	ID   int64  `db:"playtype_id"`
	Name string `db:"playtype_name"`
}

type PlaytypeRepository struct {
	db *sqlx.DB
}

func NewPlaytypeRepository(db *sqlx.DB) *PlaytypeRepository {
	return &PlaytypeRepository{db: db}
}

func (r *PlaytypeRepository) Upsert(ctx context.Context, entry playtype.Entry) (upsert.Outcome, error) {
	if err := entry.Validate(); err != nil {
		return "", err
	}

	return upsertRow(ctx, r.db, "upsert playtype", func(tx *sqlx.Tx) (upsert.Outcome, error) {
		query, args, err := qb.Select("playtype_name").From("playtype_dict").
			Where(qb.Eq("playtype_id", entry.ID)).
			ForUpdate().
			ToSQL()
		if err != nil {
			return "", fmt.Errorf("build select playtype query: %w", err)
		}

		var name string
		err = tx.GetContext(ctx, &name, query, args...)
		switch {
		case isNotFound(err):
			insertErr := execQuery(ctx, tx, "insert playtype", func() (string, []any, error) {
				return qb.InsertModel("playtype_dict", playtypeTableModel{ID: entry.ID, Name: entry.Name}, "")
			})
			return upsert.Inserted, insertErr
		case err != nil:
			return "", fmt.Errorf("select playtype for update: %w", err)
		case name == entry.Name:
			return upsert.Skipped, nil
		}

		updateErr := execQuery(ctx, tx, "update playtype", func() (string, []any, error) {
			return qb.Update("playtype_dict").
				Set("playtype_name", entry.Name).
				Where(qb.Eq("playtype_id", entry.ID)).
				ToSQL()
		})
		return upsert.Updated, updateErr
	})
}

func (r *PlaytypeRepository) List(ctx context.Context) ([]playtype.Entry, error) {
	query, args, err := qb.Select("playtype_id", "playtype_name").From("playtype_dict").
		OrderBy("playtype_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list playtypes query: %w", err)
	}

	var rows []playtypeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list playtypes: %w", err)
	}

	out := make([]playtype.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, playtype.Entry{ID: row.ID, Name: row.Name})
	}
	return out, nil
}
