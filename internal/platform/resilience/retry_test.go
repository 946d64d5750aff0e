package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_DelayBounds(t *testing.T) {
	cases := []struct {
		name string
		rnd  float64
		want time.Duration
	}{
		{name: "lower bound", rnd: 0, want: 1200 * time.Millisecond},
		{name: "midpoint", rnd: 0.5, want: 1500 * time.Millisecond},
		{name: "near upper bound", rnd: 0.999, want: 1799400 * time.Microsecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultRetryPolicy()
			p.Rand = func() float64 { return tc.rnd }
			if got := p.Delay(); absDuration(got-tc.want) > time.Microsecond {
				t.Fatalf("delay: want %s got %s", tc.want, got)
			}
		})
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func TestRetryPolicy_WaitUsesInjectedSleep(t *testing.T) {
	var slept []time.Duration
	p := RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		Rand:        func() float64 { return 0.5 },
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(slept) != 1 || absDuration(slept[0]-time.Second) > time.Microsecond {
		t.Fatalf("unexpected sleeps: %v", slept)
	}
}

func TestRetryPolicy_AttemptsFloor(t *testing.T) {
	if got := (RetryPolicy{}).Attempts(); got != 1 {
		t.Fatalf("expected at least one attempt, got %d", got)
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRandomPause(t *testing.T) {
	d, err := RandomPause(context.Background(), time.Millisecond, 3*time.Millisecond, func() float64 { return 0.5 })
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if absDuration(d-2*time.Millisecond) > time.Microsecond {
		t.Fatalf("expected 2ms pause, got %s", d)
	}

	d, err = RandomPause(context.Background(), 2*time.Second, time.Second, nil)
	if err != nil || d != 0 {
		t.Fatalf("invalid range should be a no-op, got %s %v", d, err)
	}
}
