package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/suwei8/lotto-ai4/internal/infrastructure/repository/memory"
)

// BootstrapSeed fills an empty play-type dictionary with the built-in names
// and the composite children.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM playtype_dict`); err != nil {
		return fmt.Errorf("count playtypes for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range memory.SeedPlaytypes() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO playtype_dict (playtype_id, playtype_name)
VALUES ($1, $2)
ON CONFLICT (playtype_id) DO NOTHING`, entry.ID, entry.Name); err != nil {
			return fmt.Errorf("seed playtype %d: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
