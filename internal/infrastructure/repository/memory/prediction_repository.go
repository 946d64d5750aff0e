package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

type predictionKey struct {
	userID     int64
	issueName  string
	playtypeID int64
}

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[predictionKey]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[predictionKey]prediction.Prediction)}
}

func (r *PredictionRepository) Upsert(_ context.Context, item prediction.Prediction) (upsert.Outcome, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	key := predictionKey{userID: item.UserID, issueName: item.IssueName, playtypeID: item.PlaytypeID}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[key]
	switch {
	case !ok:
		r.items[key] = item
		return upsert.Inserted, nil
	case existing.Numbers == item.Numbers:
		return upsert.Skipped, nil
	default:
		existing.Numbers = item.Numbers
		r.items[key] = existing
		return upsert.Updated, nil
	}
}

func (r *PredictionRepository) List(_ context.Context, filter prediction.Filter) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if filter.IssueName != "" && item.IssueName != filter.IssueName {
			continue
		}
		if filter.LotteryID > 0 && item.LotteryID != filter.LotteryID {
			continue
		}
		if len(filter.PlaytypeIDs) > 0 && !slices.Contains(filter.PlaytypeIDs, item.PlaytypeID) {
			continue
		}
		if len(filter.UserIDs) > 0 && !slices.Contains(filter.UserIDs, item.UserID) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].PlaytypeID < out[j].PlaytypeID
	})
	return out, nil
}
