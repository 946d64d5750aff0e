package usecase

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"github.com/suwei8/lotto-ai4/internal/domain/cacheversion"
	"github.com/suwei8/lotto-ai4/internal/domain/draw"
	"github.com/suwei8/lotto-ai4/internal/domain/expert"
	"github.com/suwei8/lotto-ai4/internal/domain/hitrule"
	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/platform/cache"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 1000
)

// HitRow is one stored prediction judged against a draw.
type HitRow struct {
	UserID       int64  `json:"user_id"`
	PlaytypeID   int64  `json:"playtype_id"`
	PlaytypeName string `json:"playtype_name"`
	Numbers      string `json:"numbers"`
	Hit          bool   `json:"hit"`
}

type HitReport struct {
	LotteryName string   `json:"lottery_name"`
	IssueName   string   `json:"issue_name"`
	OpenCode    string   `json:"open_code"`
	Total       int      `json:"total"`
	Hits        int      `json:"hits"`
	Rows        []HitRow `json:"rows"`
}

type PlaytypeHits struct {
	PlaytypeID   int64  `json:"playtype_id"`
	PlaytypeName string `json:"playtype_name"`
	Total        int    `json:"total"`
	Hits         int    `json:"hits"`
}

// ExpertHitSummary aggregates one expert's hits over recent drawn issues.
type ExpertHitSummary struct {
	UserID     int64          `json:"user_id"`
	Issues     []string       `json:"issues"`
	Total      int            `json:"total"`
	Hits       int            `json:"hits"`
	ByPlaytype []PlaytypeHits `json:"by_playtype"`
}

type QueryConfig struct {
	LotteryID int64
}

// QueryService is the read side consumed by the dashboard. Results are cached
// in-process until the persisted cache version moves or CACHE_TTL elapses.
type QueryService struct {
	expertRepo     expert.Repository
	predictionRepo prediction.Repository
	drawRepo       draw.Repository
	playtypeRepo   playtype.Repository
	versionRepo    cacheversion.Repository
	catalog        *playtype.Catalog
	store          *cache.Store
	cfg            QueryConfig
	logger         *logging.Logger
}

func NewQueryService(
	expertRepo expert.Repository,
	predictionRepo prediction.Repository,
	drawRepo draw.Repository,
	playtypeRepo playtype.Repository,
	versionRepo cacheversion.Repository,
	catalog *playtype.Catalog,
	store *cache.Store,
	cfg QueryConfig,
	logger *logging.Logger,
) *QueryService {
	if logger == nil {
		logger = logging.Default()
	}
	if catalog == nil {
		catalog = playtype.DefaultCatalog()
	}
	if cfg.LotteryID <= 0 {
		cfg.LotteryID = playtype.LotteryFC3D
	}

	return &QueryService{
		expertRepo:     expertRepo,
		predictionRepo: predictionRepo,
		drawRepo:       drawRepo,
		playtypeRepo:   playtypeRepo,
		versionRepo:    versionRepo,
		catalog:        catalog,
		store:          store,
		cfg:            cfg,
		logger:         logger,
	}
}

// CacheVersion reads the persisted version and drops cached results when it
// changed since the last observation.
func (s *QueryService) CacheVersion(ctx context.Context) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.CacheVersion")
	defer span.End()

	return s.observeVersion(ctx)
}

func (s *QueryService) observeVersion(ctx context.Context) (int64, error) {
	if s.versionRepo == nil {
		return 0, nil
	}
	version, err := s.versionRepo.Current(ctx, cacheversion.Name)
	if err != nil {
		return 0, fmt.Errorf("read cache version: %w", err)
	}
	if s.store != nil && s.store.Observe(version) {
		s.logger.DebugContext(ctx, "query cache flushed", "cache_version", version)
	}
	return version, nil
}

func (s *QueryService) RecentDraws(ctx context.Context, lotteryName string, limit int) ([]draw.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.RecentDraws")
	defer span.End()

	lotteryName = strings.TrimSpace(lotteryName)
	if lotteryName == "" {
		return nil, fmt.Errorf("%w: lottery name is required", ErrInvalidInput)
	}
	limit = normalizeQueryLimit(limit)

	key := "draws:recent:" + lotteryName + ":" + strconv.Itoa(limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]draw.Result, error) {
		items, err := s.drawRepo.ListRecent(ctx, lotteryName, limit)
		if err != nil {
			return nil, fmt.Errorf("list recent draws: %w", err)
		}
		return items, nil
	})
}

func (s *QueryService) DrawByIssue(ctx context.Context, lotteryName, issueName string) (draw.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.DrawByIssue")
	defer span.End()

	lotteryName = strings.TrimSpace(lotteryName)
	issueName = draw.NormalizeIssue(issueName)
	if lotteryName == "" || issueName == "" {
		return draw.Result{}, fmt.Errorf("%w: lottery name and issue name are required", ErrInvalidInput)
	}

	item, ok, err := s.drawRepo.GetByIssue(ctx, lotteryName, issueName)
	if err != nil {
		return draw.Result{}, fmt.Errorf("get draw by issue: %w", err)
	}
	if !ok {
		return draw.Result{}, fmt.Errorf("%w: draw lottery=%s issue=%s", ErrNotFound, lotteryName, issueName)
	}
	return item, nil
}

func (s *QueryService) Experts(ctx context.Context, limit int) ([]expert.Expert, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Experts")
	defer span.End()

	limit = normalizeQueryLimit(limit)
	return cached(ctx, s, "experts:"+strconv.Itoa(limit), func(ctx context.Context) ([]expert.Expert, error) {
		items, err := s.expertRepo.List(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list experts: %w", err)
		}
		return items, nil
	})
}

func (s *QueryService) Predictions(ctx context.Context, filter prediction.Filter) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Predictions")
	defer span.End()

	filter.IssueName = strings.TrimSpace(filter.IssueName)
	if filter.IssueName == "" {
		return nil, fmt.Errorf("%w: issue name is required", ErrInvalidInput)
	}
	if filter.LotteryID <= 0 {
		filter.LotteryID = s.cfg.LotteryID
	}

	items, err := s.predictionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list predictions issue=%s: %w", filter.IssueName, err)
	}
	return items, nil
}

func (s *QueryService) PlaytypeDictionary(ctx context.Context) ([]playtype.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.PlaytypeDictionary")
	defer span.End()

	return cached(ctx, s, "playtypes", func(ctx context.Context) ([]playtype.Entry, error) {
		if s.playtypeRepo == nil {
			return nil, nil
		}
		items, err := s.playtypeRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list playtype dictionary: %w", err)
		}
		return items, nil
	})
}

// IssueHitReport judges every prediction of filter.IssueName against the
// issue's draw. Play-types the catalog cannot classify count as misses.
func (s *QueryService) IssueHitReport(ctx context.Context, lotteryName string, filter prediction.Filter) (HitReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.IssueHitReport")
	defer span.End()

	filter.IssueName = draw.NormalizeIssue(filter.IssueName)
	result, err := s.DrawByIssue(ctx, lotteryName, filter.IssueName)
	if err != nil {
		return HitReport{}, err
	}
	preds, err := s.Predictions(ctx, filter)
	if err != nil {
		return HitReport{}, err
	}
	names, err := s.playtypeNames(ctx)
	if err != nil {
		return HitReport{}, err
	}

	rows := s.evaluate(preds, names, result.OpenCode)
	report := HitReport{
		LotteryName: result.LotteryName,
		IssueName:   result.IssueName,
		OpenCode:    result.OpenCode,
		Total:       len(rows),
		Rows:        rows,
	}
	for _, row := range rows {
		if row.Hit {
			report.Hits++
		}
	}
	return report, nil
}

// ExpertHitSummary judges one expert's predictions against the most recent
// draws of lotteryName. Issues the expert did not predict are left out.
func (s *QueryService) ExpertHitSummary(ctx context.Context, lotteryName string, userID int64, issues int) (ExpertHitSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ExpertHitSummary")
	defer span.End()

	if userID <= 0 {
		return ExpertHitSummary{}, fmt.Errorf("%w: user id must be > 0", ErrInvalidInput)
	}
	draws, err := s.RecentDraws(ctx, lotteryName, issues)
	if err != nil {
		return ExpertHitSummary{}, err
	}
	names, err := s.playtypeNames(ctx)
	if err != nil {
		return ExpertHitSummary{}, err
	}

	summary := ExpertHitSummary{UserID: userID, Issues: make([]string, 0, len(draws))}
	byPlaytype := make(map[int64]*PlaytypeHits)
	for _, d := range draws {
		preds, err := s.Predictions(ctx, prediction.Filter{IssueName: d.IssueName, UserIDs: []int64{userID}})
		if err != nil {
			return ExpertHitSummary{}, err
		}
		if len(preds) == 0 {
			continue
		}
		summary.Issues = append(summary.Issues, d.IssueName)
		for _, row := range s.evaluate(preds, names, d.OpenCode) {
			agg, ok := byPlaytype[row.PlaytypeID]
			if !ok {
				agg = &PlaytypeHits{PlaytypeID: row.PlaytypeID, PlaytypeName: row.PlaytypeName}
				byPlaytype[row.PlaytypeID] = agg
			}
			agg.Total++
			summary.Total++
			if row.Hit {
				agg.Hits++
				summary.Hits++
			}
		}
	}

	summary.ByPlaytype = make([]PlaytypeHits, 0, len(byPlaytype))
	for _, agg := range byPlaytype {
		summary.ByPlaytype = append(summary.ByPlaytype, *agg)
	}
	slices.SortFunc(summary.ByPlaytype, func(a, b PlaytypeHits) int {
		return int(a.PlaytypeID - b.PlaytypeID)
	})
	return summary, nil
}

func (s *QueryService) evaluate(preds []prediction.Prediction, names map[int64]string, openCode string) []HitRow {
	return iter.Map(preds, func(p *prediction.Prediction) HitRow {
		name := names[p.PlaytypeID]
		if name == "" {
			name, _ = s.catalog.Name(p.PlaytypeID)
		}
		rule := s.catalog.Rule(p.PlaytypeID, name)
		return HitRow{
			UserID:       p.UserID,
			PlaytypeID:   p.PlaytypeID,
			PlaytypeName: name,
			Numbers:      p.Numbers,
			Hit:          hitrule.Evaluate(rule, p.Numbers, openCode),
		}
	})
}

func (s *QueryService) playtypeNames(ctx context.Context) (map[int64]string, error) {
	entries, err := s.PlaytypeDictionary(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(entries))
	for _, e := range entries {
		names[e.ID] = e.Name
	}
	return names, nil
}

func cached[T any](ctx context.Context, s *QueryService, key string, load func(context.Context) (T, error)) (T, error) {
	if s.store == nil {
		return load(ctx)
	}
	// Every cached read checks the version first so a finished run is visible
	// without waiting for the TTL.
	if _, err := s.observeVersion(ctx); err != nil {
		s.logger.WarnContext(ctx, "cache version unavailable, reading through", "key", key, "error", err)
		return load(ctx)
	}
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return load(ctx)
	}
	return typed, nil
}

func normalizeQueryLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultQueryLimit
	case limit > maxQueryLimit:
		return maxQueryLimit
	default:
		return limit
	}
}
