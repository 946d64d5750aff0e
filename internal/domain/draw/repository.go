package draw

import (
	"context"

	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

// Repository describes draw persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, result Result) (upsert.Outcome, error)
	GetByIssue(ctx context.Context, lotteryName, issueName string) (Result, bool, error)
	ListRecent(ctx context.Context, lotteryName string, limit int) ([]Result, error)
}
