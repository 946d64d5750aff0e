package memory

import (
	"context"
	"sync"
)

type CacheVersionRepository struct {
	mu       sync.Mutex
	versions map[string]int64
}

func NewCacheVersionRepository() *CacheVersionRepository {
	return &CacheVersionRepository{versions: make(map[string]int64)}
}

func (r *CacheVersionRepository) Bump(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.versions[name]++
	return r.versions[name], nil
}

func (r *CacheVersionRepository) Current(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.versions[name], nil
}
