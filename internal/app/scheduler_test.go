package app

import (
	"context"
	"testing"
	"time"

	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	s, err := NewScheduler(a)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Fatalf("expected 2 cron entries, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}
}

func TestNewScheduler_EmptySpecDisablesJob(t *testing.T) {
	cfg := memoryConfig()
	cfg.Schedule.DrawCron = ""
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	s, err := NewScheduler(a)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("expected 1 cron entry, got %d", got)
	}
}

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	cfg := memoryConfig()
	cfg.Schedule.ExpertCron = "not a cron"
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	if _, err := NewScheduler(a); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}
