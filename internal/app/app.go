package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/suwei8/lotto-ai4/external/drawfeed"
	"github.com/suwei8/lotto-ai4/external/expertapi"
	"github.com/suwei8/lotto-ai4/internal/config"
	"github.com/suwei8/lotto-ai4/internal/domain/cacheversion"
	"github.com/suwei8/lotto-ai4/internal/domain/draw"
	"github.com/suwei8/lotto-ai4/internal/domain/expert"
	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/infrastructure/repository/memory"
	"github.com/suwei8/lotto-ai4/internal/infrastructure/repository/postgres"
	"github.com/suwei8/lotto-ai4/internal/platform/cache"
	"github.com/suwei8/lotto-ai4/internal/platform/id"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
	"github.com/suwei8/lotto-ai4/internal/platform/resilience"
	"github.com/suwei8/lotto-ai4/internal/usecase"
)

// Draw run defaults used by the command surface and the scheduler.
const (
	DefaultDrawPageSize = 5
	DefaultDrawMaxPages = 1
	DefaultDrawSleepMin = 1200 * time.Millisecond
	DefaultDrawSleepMax = 2400 * time.Millisecond
)

// App holds the wired collection and query services.
type App struct {
	Config config.Config
	Logger *logging.Logger

	Experts *usecase.ExpertCollectionService
	Draws   *usecase.DrawCollectionService
	Query   *usecase.QueryService

	db *sqlx.DB
}

type repositories struct {
	experts     expert.Repository
	predictions prediction.Repository
	draws       draw.Repository
	playtypes   playtype.Repository
	versions    cacheversion.Repository
}

// New wires repositories, upstream clients and services. A DB_URL of
// memory:// keeps every table in process.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		return nil, err
	}

	expertClient, err := expertapi.NewClient(expertapi.ClientConfig{
		PrimaryDomain:   cfg.Collector.PrimaryDomain,
		SecondaryDomain: cfg.Collector.SecondaryDomain,
		EndpointPath:    cfg.Collector.EndpointPath,
		Token:           cfg.Collector.Token,
		UserAgent:       cfg.Collector.UserAgent,
		AESKey:          cfg.Collector.AESKey,
		AESIV:           cfg.Collector.AESIV,
		Timeout:         cfg.Collector.Timeout,
		Retry: resilience.RetryPolicy{
			MaxAttempts: cfg.Collector.Retries,
			BaseDelay:   cfg.Collector.RetryDelay,
			Jitter:      cfg.Collector.RetryJitter,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.Collector.CircuitEnabled,
			FailureThreshold: cfg.Collector.CircuitFailureCount,
			OpenTimeout:      cfg.Collector.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.Collector.CircuitHalfOpenMaxReq,
		},
		Logger: logger,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build expert api client: %w", err)
	}

	feed := drawfeed.NewClient(drawfeed.ClientConfig{
		BaseURL:   cfg.DrawFeed.BaseURL,
		Timeout:   cfg.DrawFeed.Timeout,
		UserAgent: cfg.DrawFeed.UserAgent,
		Logger:    logger,
	})

	ids := id.NewUUIDGenerator()
	a.Experts = usecase.NewExpertCollectionService(
		expertClient,
		repos.experts,
		repos.predictions,
		repos.playtypes,
		repos.versions,
		ids,
		usecase.ExpertCollectionConfig{LotteryID: cfg.Collector.LotteryID},
		logger,
	)
	a.Draws = usecase.NewDrawCollectionService(feed, repos.draws, repos.versions, ids, logger)
	a.Query = usecase.NewQueryService(
		repos.experts,
		repos.predictions,
		repos.draws,
		repos.playtypes,
		repos.versions,
		playtype.DefaultCatalog(),
		cache.NewStore(cfg.CacheTTL),
		usecase.QueryConfig{LotteryID: cfg.Collector.LotteryID},
		logger,
	)

	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	if isMemoryURL(a.Config.DBURL) {
		a.Logger.Warn("using in-memory repositories", "db_url", memoryScheme)
		return repositories{
			experts:     memory.NewExpertRepository(),
			predictions: memory.NewPredictionRepository(),
			draws:       memory.NewDrawRepository(),
			playtypes:   memory.NewPlaytypeRepository(memory.SeedPlaytypes()...),
			versions:    memory.NewCacheVersionRepository(),
		}, nil
	}

	db, err := openDB(ctx, a.Config)
	if err != nil {
		return repositories{}, err
	}
	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		_ = db.Close()
		return repositories{}, err
	}
	a.db = db

	return repositories{
		experts:     postgres.NewExpertRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		draws:       postgres.NewDrawRepository(db),
		playtypes:   postgres.NewPlaytypeRepository(db),
		versions:    postgres.NewCacheVersionRepository(db),
	}, nil
}

// DefaultExpertInput polls every built-in play-type with its own sort orders.
func DefaultExpertInput() usecase.ExpertCollectionInput {
	return usecase.ExpertCollectionInput{
		Limit:      playtype.DefaultLimit,
		IssueCount: playtype.DefaultIssueCount,
	}
}

func (a *App) DefaultDrawInput() usecase.DrawCollectionInput {
	return usecase.DrawCollectionInput{
		LotteryName: a.Config.Schedule.LotteryName,
		LottoType:   a.Config.Schedule.LottoType,
		PageSize:    DefaultDrawPageSize,
		MaxPages:    DefaultDrawMaxPages,
		SleepMin:    DefaultDrawSleepMin,
		SleepMax:    DefaultDrawSleepMax,
	}
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
