package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/suwei8/lotto-ai4/internal/domain/draw"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

type drawKey struct {
	lotteryName string
	issueName   string
}

type DrawRepository struct {
	mu    sync.RWMutex
	items map[drawKey]draw.Result
}

func NewDrawRepository(items ...draw.Result) *DrawRepository {
	r := &DrawRepository{items: make(map[drawKey]draw.Result, len(items))}
	for _, item := range items {
		r.items[drawKey{lotteryName: item.LotteryName, issueName: item.IssueName}] = item
	}
	return r
}

func (r *DrawRepository) Upsert(_ context.Context, item draw.Result) (upsert.Outcome, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	key := drawKey{lotteryName: item.LotteryName, issueName: item.IssueName}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[key]
	switch {
	case !ok:
		r.items[key] = item
		return upsert.Inserted, nil
	case existing.OpenCode == item.OpenCode:
		return upsert.Skipped, nil
	default:
		r.items[key] = item
		return upsert.Updated, nil
	}
}

func (r *DrawRepository) GetByIssue(_ context.Context, lotteryName, issueName string) (draw.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[drawKey{lotteryName: lotteryName, issueName: issueName}]
	return item, ok, nil
}

func (r *DrawRepository) ListRecent(_ context.Context, lotteryName string, limit int) ([]draw.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]draw.Result, 0)
	for key, item := range r.items {
		if key.lotteryName == lotteryName {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueName > out[j].IssueName })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
