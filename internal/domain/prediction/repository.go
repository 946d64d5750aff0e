package prediction

import (
	"context"

	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

// Repository describes prediction persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Prediction) (upsert.Outcome, error)
	List(ctx context.Context, filter Filter) ([]Prediction, error)
}
