package playtype

import (
	"context"

	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

// Repository persists the play-type dictionary.
type Repository interface {
	Upsert(ctx context.Context, entry Entry) (upsert.Outcome, error)
	List(ctx context.Context) ([]Entry, error)
}
