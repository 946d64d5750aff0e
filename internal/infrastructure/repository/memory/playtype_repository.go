package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

type PlaytypeRepository struct {
	mu    sync.RWMutex
	names map[int64]string
}

func NewPlaytypeRepository(entries ...playtype.Entry) *PlaytypeRepository {
	names := make(map[int64]string, len(entries))
	for _, e := range entries {
		names[e.ID] = e.Name
	}
	return &PlaytypeRepository{names: names}
}

func (r *PlaytypeRepository) Upsert(_ context.Context, entry playtype.Entry) (upsert.Outcome, error) {
	if err := entry.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[entry.ID]
	switch {
	case !ok:
		r.names[entry.ID] = entry.Name
		return upsert.Inserted, nil
	case name == entry.Name:
		return upsert.Skipped, nil
	default:
		r.names[entry.ID] = entry.Name
		return upsert.Updated, nil
	}
}

func (r *PlaytypeRepository) List(_ context.Context) ([]playtype.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playtype.Entry, 0, len(r.names))
	for id, name := range r.names {
		out = append(out, playtype.Entry{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
