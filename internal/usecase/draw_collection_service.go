package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/suwei8/lotto-ai4/internal/domain/cacheversion"
	"github.com/suwei8/lotto-ai4/internal/domain/draw"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	"github.com/suwei8/lotto-ai4/internal/platform/id"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
	"github.com/suwei8/lotto-ai4/internal/platform/resilience"
)

// DrawCollectionInput bounds one run. MaxPages 0 walks every page the feed
// reports. The pause before each page is skipped unless 0 < SleepMin <= SleepMax.
type DrawCollectionInput struct {
	LotteryName string        `validate:"required"`
	LottoType   string        `validate:"required"`
	PageSize    int           `validate:"gte=1,lte=100"`
	MaxPages    int           `validate:"gte=0"`
	SleepMin    time.Duration `validate:"gte=0"`
	SleepMax    time.Duration `validate:"gte=0"`
}

type DrawCollectionResult struct {
	RunID string `json:"run_id"`
	Pages int    `json:"pages"`
	upsert.Stats
	CacheVersion int64 `json:"cache_version"`
}

type DrawCollectionService struct {
	feed        DrawFeed
	drawRepo    draw.Repository
	versionRepo cacheversion.Repository
	ids         id.Generator
	validate    *validator.Validate
	logger      *logging.Logger

	rand  func() float64
	pause func(ctx context.Context, min, max time.Duration, rnd func() float64) (time.Duration, error)
}

func NewDrawCollectionService(
	feed DrawFeed,
	drawRepo draw.Repository,
	versionRepo cacheversion.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *DrawCollectionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}

	return &DrawCollectionService{
		feed:        feed,
		drawRepo:    drawRepo,
		versionRepo: versionRepo,
		ids:         ids,
		validate:    validator.New(),
		logger:      logger,
		rand:        rand.Float64,
		pause:       resilience.RandomPause,
	}
}

// Run walks the feed page by page and persists every parsed draw. A failed
// page ends pagination; draws already stored stay stored.
func (s *DrawCollectionService) Run(ctx context.Context, input DrawCollectionInput) (DrawCollectionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DrawCollectionService.Run")
	defer span.End()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return DrawCollectionResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.feed == nil {
		return DrawCollectionResult{}, fmt.Errorf("%w: draw feed is not configured", ErrDependencyUnavailable)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return DrawCollectionResult{}, fmt.Errorf("create run id: %w", err)
	}
	logger := s.logger.With("run_id", runID, "command", "draws", "lottery_name", input.LotteryName)
	result := DrawCollectionResult{RunID: runID}

	totalPage := 0
	for page := 1; input.MaxPages == 0 || page <= input.MaxPages; page++ {
		logger.InfoContext(ctx, "fetch draw page", "page", page)
		if _, err := s.pause(ctx, input.SleepMin, input.SleepMax, s.rand); err != nil {
			return result, fmt.Errorf("collect draws: %w", err)
		}

		block, err := s.feed.FetchPage(ctx, DrawPageQuery{
			LottoType: input.LottoType,
			PageSize:  input.PageSize,
			Page:      page,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("collect draws: %w", ctxErr)
			}
			logger.WarnContext(ctx, "fetch draw page failed", "page", page, "error", err)
			break
		}
		if len(block.Items) == 0 {
			logger.InfoContext(ctx, "draw feed has no more items", "page", page)
			break
		}
		result.Pages++

		for _, item := range block.Items {
			record, ok := draw.NewResult(input.LotteryName, item.IssueNo, item.OpenTime, drawNumbers(input.LotteryName, item))
			if !ok {
				continue
			}
			outcome, err := s.drawRepo.Upsert(ctx, record)
			if err != nil {
				return result, fmt.Errorf("%w: upsert draw issue=%s: %w", ErrPersistence, record.IssueName, err)
			}
			result.Record(outcome)
		}

		if totalPage == 0 {
			totalPage = max(block.TotalPage, 1)
		}
		if page >= totalPage {
			logger.InfoContext(ctx, "reached last draw page", "total_page", totalPage)
			break
		}
	}

	if result.Total() == 0 {
		logger.WarnContext(ctx, "no draw results collected")
	}

	version, err := bumpOrCurrent(ctx, s.versionRepo, result.Changed())
	if err != nil {
		return result, err
	}
	result.CacheVersion = version

	logger.InfoContext(ctx, "draw collection finished",
		"pages", result.Pages,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"cache_version", result.CacheVersion,
	)
	return result, nil
}

func drawNumbers(lotteryName string, item DrawItem) []string {
	if _, ok := draw.TwoToneLotteries[lotteryName]; ok {
		out := make([]string, 0, len(item.RedResults)+len(item.BlueResults))
		out = append(out, item.RedResults...)
		return append(out, item.BlueResults...)
	}
	return item.OpenResults
}
