// Package cacheversion owns the monotonically increasing token readers
// compare to learn that persisted data changed.
package cacheversion

import "context"

// Name is the counter bumped by every collection run that changed rows.
const Name = "lotto_data"

type Repository interface {
	// Bump increments the named counter, creating it at 1, and returns the
	// new value.
	Bump(ctx context.Context, name string) (int64, error)
	// Current returns 0 for a counter that was never bumped.
	Current(ctx context.Context, name string) (int64, error)
}
