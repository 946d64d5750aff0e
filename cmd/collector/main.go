package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/suwei8/lotto-ai4/internal/app"
	"github.com/suwei8/lotto-ai4/internal/config"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	"github.com/suwei8/lotto-ai4/internal/observability"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

// summary is the single JSON line printed on stdout after a run.
type summary struct {
	Command   string `json:"command"`
	RunID     string `json:"run_id"`
	IssueName string `json:"issue_name,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	upsert.Stats
	Experts      *upsert.Stats `json:"experts,omitempty"`
	CacheVersion int64         `json:"cache_version"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	if cmd != "experts" && cmd != "draws" && cmd != "schedule" {
		printUsage(stderr)
		return 2
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%s: init tracing: %v\n", cmd, err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("shutdown tracing", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	defer func() { _ = a.Close() }()

	switch cmd {
	case "experts":
		err = runExperts(ctx, a, args[1:], stdout, stderr)
	case "draws":
		err = runDraws(ctx, a, args[1:], stdout, stderr)
	case "schedule":
		err = runSchedule(ctx, a, cfg, logger)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed: %v\n", cmd, err)
		return 1
	}
	return 0
}

func runExperts(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) error {
	defaults := app.DefaultExpertInput()
	fset := flag.NewFlagSet("experts", flag.ContinueOnError)
	fset.SetOutput(stderr)
	limit := fset.Int("limit", defaults.Limit, "leaderboard size per play-type and sort order")
	issueCount := fset.Int("issue-count", defaults.IssueCount, "number of past issues the leaderboard ranks on")
	sortTypes := fset.String("sort-types", "", "comma-separated sort orders overriding each play-type's own (e.g. 2,4,5)")
	if err := fset.Parse(args); err != nil {
		return err
	}

	input := defaults
	input.Limit = *limit
	input.IssueCount = *issueCount
	parsed, err := parseSortTypes(*sortTypes)
	if err != nil {
		return err
	}
	input.SortTypes = parsed

	res, err := a.Experts.Run(ctx, input)
	if err != nil {
		return err
	}

	experts := res.Experts
	if err := writeSummary(stdout, summary{
		Command:      "experts",
		RunID:        res.RunID,
		IssueName:    res.IssueName,
		Stats:        res.Predictions,
		Experts:      &experts,
		CacheVersion: res.CacheVersion,
	}); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "experts: issue %s, %d experts, predictions inserted=%d updated=%d skipped=%d, cache version %d\n",
		res.IssueName, res.Experts.Total(), res.Predictions.Inserted, res.Predictions.Updated, res.Predictions.Skipped, res.CacheVersion)
	return nil
}

func runDraws(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) error {
	defaults := a.DefaultDrawInput()
	fset := flag.NewFlagSet("draws", flag.ContinueOnError)
	fset.SetOutput(stderr)
	lotteryName := fset.String("lottery-name", defaults.LotteryName, "lottery name stored with each draw")
	lottoType := fset.String("lotto-type", defaults.LottoType, "draw feed lottery type code")
	pageSize := fset.Int("page-size", defaults.PageSize, "draws per page")
	maxPages := fset.Int("max-pages", defaults.MaxPages, "page limit, 0 walks every page")
	sleepMin := fset.Duration("sleep-min", defaults.SleepMin, "minimum pause before each page")
	sleepMax := fset.Duration("sleep-max", defaults.SleepMax, "maximum pause before each page")
	if err := fset.Parse(args); err != nil {
		return err
	}

	input := defaults
	input.LotteryName = *lotteryName
	input.LottoType = *lottoType
	input.PageSize = *pageSize
	input.MaxPages = *maxPages
	input.SleepMin = *sleepMin
	input.SleepMax = *sleepMax

	res, err := a.Draws.Run(ctx, input)
	if err != nil {
		return err
	}

	if err := writeSummary(stdout, summary{
		Command:      "draws",
		RunID:        res.RunID,
		Pages:        res.Pages,
		Stats:        res.Stats,
		CacheVersion: res.CacheVersion,
	}); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "draws: %d pages, inserted=%d updated=%d skipped=%d, cache version %d\n",
		res.Pages, res.Inserted, res.Updated, res.Skipped, res.CacheVersion)
	return nil
}

func runSchedule(ctx context.Context, a *app.App, cfg config.Config, logger *logging.Logger) error {
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	pprofSrv := observability.StartPprofServer(cfg, logger)
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Warn("stop pprof server", "error", err)
		}
	}()

	scheduler, err := app.NewScheduler(a)
	if err != nil {
		return err
	}
	logger.Info("scheduler started")
	scheduler.Run(ctx)
	logger.Info("scheduler stopped")
	return nil
}

func parseSortTypes(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid sort type %q: %w", part, err)
		}
		out = append(out, value)
	}
	return out, nil
}

func writeSummary(w io.Writer, s summary) error {
	raw, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: collector <experts|draws|schedule> [flags]")
	fmt.Fprintln(w, "examples:")
	fmt.Fprintln(w, "  collector experts -limit 1000 -issue-count 5 -sort-types 2,4,5")
	fmt.Fprintln(w, "  collector draws -lottery-name 福彩3D -lotto-type 102 -page-size 5 -max-pages 1")
	fmt.Fprintln(w, "  collector schedule")
}
