package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	qb "github.com/suwei8/lotto-ai4/internal/platform/querybuilder"
)

type cacheVersionInsertModel struct {
	Name    string `db:"name"`
	Version int64  `db:"version"`
}

type CacheVersionRepository struct {
	db *sqlx.DB
}

func NewCacheVersionRepository(db *sqlx.DB) *CacheVersionRepository {
	return &CacheVersionRepository{db: db}
}

// Bump is a single statement so concurrent runs never lose an increment.
func (r *CacheVersionRepository) Bump(ctx context.Context, name string) (int64, error) {
	query, args, err := qb.InsertModel("cache_versions", cacheVersionInsertModel{Name: name, Version: 1},
		"ON CONFLICT (name) DO UPDATE SET version = cache_versions.version + 1, updated_at = NOW() RETURNING version")
	if err != nil {
		return 0, fmt.Errorf("build bump cache version query: %w", err)
	}

	var version int64
	if err := r.db.GetContext(ctx, &version, query, args...); err != nil {
		return 0, fmt.Errorf("bump cache version %s: %w", name, err)
	}
	return version, nil
}

func (r *CacheVersionRepository) Current(ctx context.Context, name string) (int64, error) {
	query, args, err := qb.Select("version").From("cache_versions").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select cache version query: %w", err)
	}

	var version int64
	if err := r.db.GetContext(ctx, &version, query, args...); err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("select cache version %s: %w", name, err)
	}
	return version, nil
}
