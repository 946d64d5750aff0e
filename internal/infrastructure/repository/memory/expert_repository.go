package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/suwei8/lotto-ai4/internal/domain/expert"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

type ExpertRepository struct {
	mu     sync.RWMutex
	byUser map[int64]expert.Expert
}

func NewExpertRepository(items ...expert.Expert) *ExpertRepository {
	byUser := make(map[int64]expert.Expert, len(items))
	for _, item := range items {
		byUser[item.UserID] = item
	}
	return &ExpertRepository{byUser: byUser}
}

func (r *ExpertRepository) Upsert(_ context.Context, item expert.Expert) (upsert.Outcome, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byUser[item.UserID]
	switch {
	case !ok:
		r.byUser[item.UserID] = item
		return upsert.Inserted, nil
	case existing.NickName == item.NickName:
		return upsert.Skipped, nil
	default:
		r.byUser[item.UserID] = item
		return upsert.Updated, nil
	}
}

func (r *ExpertRepository) GetByID(_ context.Context, userID int64) (expert.Expert, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byUser[userID]
	return item, ok, nil
}

func (r *ExpertRepository) List(_ context.Context, limit int) ([]expert.Expert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]expert.Expert, 0, len(r.byUser))
	for _, item := range r.byUser {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
