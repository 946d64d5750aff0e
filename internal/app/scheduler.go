package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

// cronLogger routes cron's internal messages into the structured logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron "+msg, append(keysAndValues, "error", err)...)
}

// Scheduler triggers expert and draw collections on cron expressions. Runs of
// the same job never overlap and each is bounded by the configured budget.
type Scheduler struct {
	cron   *cron.Cron
	app    *App
	logger *logging.Logger
	base   context.Context
}

func NewScheduler(a *App) (*Scheduler, error) {
	logger := a.Logger.With("component", "scheduler")
	cl := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		app:    a,
		logger: logger,
		base:   context.Background(),
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"experts", a.Config.Schedule.ExpertCron, func(ctx context.Context) error {
			res, err := a.Experts.Run(ctx, DefaultExpertInput())
			if err == nil {
				logger.InfoContext(ctx, "scheduled expert collection finished",
					"run_id", res.RunID, "experts", res.Experts.Total(), "predictions", res.Predictions.Total(), "cache_version", res.CacheVersion)
			}
			return err
		}},
		{"draws", a.Config.Schedule.DrawCron, func(ctx context.Context) error {
			res, err := a.Draws.Run(ctx, a.DefaultDrawInput())
			if err == nil {
				logger.InfoContext(ctx, "scheduled draw collection finished",
					"run_id", res.RunID, "inserted", res.Inserted, "updated", res.Updated, "skipped", res.Skipped, "cache_version", res.CacheVersion)
			}
			return err
		}},
	}
	for _, job := range jobs {
		if job.spec == "" {
			logger.Info("scheduled job disabled", "job", job.name)
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return nil, fmt.Errorf("schedule %s job %q: %w", job.name, job.spec, err)
		}
		logger.Info("scheduled job registered", "job", job.name, "spec", job.spec)
	}

	return s, nil
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.base, s.app.Config.Schedule.RunTimeout)
		defer cancel()

		if err := run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled job failed", "job", name, "error", err)
		}
	}
}

// Run blocks until ctx is done. In-flight jobs see ctx cancelled and are
// awaited before Run returns.
func (s *Scheduler) Run(ctx context.Context) {
	s.base = ctx
	s.cron.Start()
	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
}
