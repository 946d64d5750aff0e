package resilience

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy is a bounded attempt budget with a jittered fixed delay.
// Delay returns BaseDelay * [1-Jitter, 1+Jitter).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      float64

	// Rand returns a value in [0, 1). Tests replace it for deterministic delays.
	Rand func() float64
	// Sleep blocks for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1500 * time.Millisecond,
		Jitter:      0.2,
	}
}

func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) Delay() time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	jitter := p.Jitter
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	factor := 1 - jitter + p.random()*2*jitter
	return time.Duration(float64(p.BaseDelay) * factor)
}

// Wait sleeps for one jittered delay.
func (p RetryPolicy) Wait(ctx context.Context) error {
	d := p.Delay()
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (p RetryPolicy) random() float64 {
	if p.Rand != nil {
		return p.Rand()
	}
	return rand.Float64()
}

// SleepContext waits for d, returning early with ctx.Err() on cancellation.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomPause sleeps for a uniform duration in [min, max]. It is a no-op
// unless 0 < min <= max.
func RandomPause(ctx context.Context, min, max time.Duration, rnd func() float64) (time.Duration, error) {
	if min <= 0 || max <= 0 || max < min {
		return 0, nil
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	d := min + time.Duration(rnd()*float64(max-min))
	return d, SleepContext(ctx, d)
}
