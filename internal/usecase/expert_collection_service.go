package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/suwei8/lotto-ai4/internal/domain/cacheversion"
	"github.com/suwei8/lotto-ai4/internal/domain/expert"
	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	"github.com/suwei8/lotto-ai4/internal/platform/id"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

const expertProgressEvery = 20

type ExpertCollectionConfig struct {
	LotteryID int64
	Specs     []playtype.Spec
}

// ExpertCollectionInput bounds one run. Empty SortTypes polls each spec's
// own sort orders.
type ExpertCollectionInput struct {
	Limit      int   `validate:"gte=1,lte=5000"`
	IssueCount int   `validate:"gte=1,lte=100"`
	SortTypes  []int `validate:"omitempty,dive,gte=1"`
}

type ExpertCollectionResult struct {
	RunID            string       `json:"run_id"`
	IssueName        string       `json:"issue_name"`
	LeaderboardCalls int          `json:"leaderboard_calls"`
	DetailCalls      int          `json:"detail_calls"`
	Experts          upsert.Stats `json:"experts"`
	Predictions      upsert.Stats `json:"predictions"`
	CacheVersion     int64        `json:"cache_version"`
}

type ExpertCollectionService struct {
	provider       ExpertProvider
	expertRepo     expert.Repository
	predictionRepo prediction.Repository
	playtypeRepo   playtype.Repository
	versionRepo    cacheversion.Repository
	ids            id.Generator
	cfg            ExpertCollectionConfig
	validate       *validator.Validate
	logger         *logging.Logger
}

func NewExpertCollectionService(
	provider ExpertProvider,
	expertRepo expert.Repository,
	predictionRepo prediction.Repository,
	playtypeRepo playtype.Repository,
	versionRepo cacheversion.Repository,
	ids id.Generator,
	cfg ExpertCollectionConfig,
	logger *logging.Logger,
) *ExpertCollectionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.LotteryID <= 0 {
		cfg.LotteryID = playtype.LotteryFC3D
	}
	if len(cfg.Specs) == 0 {
		cfg.Specs = playtype.DefaultSpecs()
	}

	return &ExpertCollectionService{
		provider:       provider,
		expertRepo:     expertRepo,
		predictionRepo: predictionRepo,
		playtypeRepo:   playtypeRepo,
		versionRepo:    versionRepo,
		ids:            ids,
		cfg:            cfg,
		validate:       validator.New(),
		logger:         logger,
	}
}

type knownExpert struct {
	userID   int64
	nickName string
}

// Run polls every configured leaderboard, then fetches and stores the schemes
// of each distinct expert. Failures of a single leaderboard or detail call are
// logged and skipped; a persistence failure aborts the run.
func (s *ExpertCollectionService) Run(ctx context.Context, input ExpertCollectionInput) (ExpertCollectionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExpertCollectionService.Run")
	defer span.End()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return ExpertCollectionResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.provider == nil {
		return ExpertCollectionResult{}, fmt.Errorf("%w: expert provider is not configured", ErrDependencyUnavailable)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return ExpertCollectionResult{}, fmt.Errorf("create run id: %w", err)
	}
	logger := s.logger.With("run_id", runID, "command", "experts")
	result := ExpertCollectionResult{RunID: runID}

	lotteryID := s.cfg.LotteryID
	issueName := ""
	known := make([]knownExpert, 0, input.Limit)
	seen := make(map[int64]struct{}, input.Limit)

	for _, spec := range s.cfg.Specs {
		sortTypes := spec.SortTypes
		if len(input.SortTypes) > 0 {
			sortTypes = input.SortTypes
		}
		for _, sortType := range sortTypes {
			board, err := s.provider.FetchLeaderboard(ctx, LeaderboardQuery{
				LotteryID:  s.cfg.LotteryID,
				PlaytypeID: spec.ID,
				SortType:   sortType,
				Limit:      input.Limit,
				IssueCount: input.IssueCount,
			})
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return result, fmt.Errorf("collect leaderboards: %w", ctxErr)
				}
				logger.WarnContext(ctx, "fetch leaderboard failed",
					"playtype_id", spec.ID,
					"sort_type", sortType,
					"error", err,
				)
				continue
			}

			if issueName == "" {
				issueName = strings.TrimSpace(board.IssueName)
			}
			if board.LotteryID > 0 {
				lotteryID = board.LotteryID
			}

			for _, entry := range board.Entries {
				outcome, err := s.expertRepo.Upsert(ctx, expert.Expert{UserID: entry.UserID, NickName: entry.NickName})
				if err != nil {
					return result, fmt.Errorf("%w: upsert expert user_id=%d: %w", ErrPersistence, entry.UserID, err)
				}
				result.Experts.Record(outcome)
				if _, ok := seen[entry.UserID]; ok {
					continue
				}
				seen[entry.UserID] = struct{}{}
				known = append(known, knownExpert{userID: entry.UserID, nickName: entry.NickName})
			}
			result.LeaderboardCalls++
		}
	}

	if len(known) == 0 {
		return result, ErrNoExperts
	}
	if issueName == "" {
		logger.WarnContext(ctx, "leaderboards returned no issue name, relying on detail responses")
	}
	result.IssueName = issueName
	logger.InfoContext(ctx, "collecting expert schemes", "experts", len(known), "issue_name", issueName)

	dictionary := make(map[int64]struct{})
	for idx, item := range known {
		detail, err := s.provider.FetchDetail(ctx, DetailQuery{
			LotteryID: lotteryID,
			UserID:    item.userID,
			IssueName: issueName,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("collect details: %w", ctxErr)
			}
			logger.WarnContext(ctx, "fetch expert detail failed", "user_id", item.userID, "error", err)
			continue
		}

		resolvedIssue := strings.TrimSpace(detail.IssueName)
		if resolvedIssue == "" {
			resolvedIssue = issueName
		}
		if resolvedIssue == "" {
			logger.WarnContext(ctx, "skip expert without issue name", "user_id", item.userID)
			continue
		}

		for _, scheme := range detail.Schemes {
			for _, expanded := range prediction.Expand(scheme.PlaytypeID, scheme.PlaytypeName, scheme.Numbers) {
				if err := s.rememberPlaytype(ctx, dictionary, expanded); err != nil {
					return result, err
				}
				outcome, err := s.predictionRepo.Upsert(ctx, prediction.Prediction{
					UserID:     item.userID,
					IssueName:  resolvedIssue,
					LotteryID:  lotteryID,
					PlaytypeID: expanded.PlaytypeID,
					Numbers:    expanded.Numbers,
				})
				if err != nil {
					return result, fmt.Errorf("%w: upsert prediction user_id=%d playtype_id=%d: %w",
						ErrPersistence, item.userID, expanded.PlaytypeID, err)
				}
				result.Predictions.Record(outcome)
			}
		}
		result.DetailCalls++

		if (idx+1)%expertProgressEvery == 0 {
			logger.InfoContext(ctx, "expert collection progress", "done", idx+1, "total", len(known))
		}
	}

	version, err := bumpOrCurrent(ctx, s.versionRepo, result.Experts.Changed() || result.Predictions.Changed())
	if err != nil {
		return result, err
	}
	result.CacheVersion = version

	logger.InfoContext(ctx, "expert collection finished",
		"leaderboard_calls", result.LeaderboardCalls,
		"detail_calls", result.DetailCalls,
		"inserted", result.Predictions.Inserted,
		"updated", result.Predictions.Updated,
		"skipped", result.Predictions.Skipped,
		"cache_version", result.CacheVersion,
	)
	return result, nil
}

func (s *ExpertCollectionService) rememberPlaytype(ctx context.Context, seen map[int64]struct{}, scheme prediction.Scheme) error {
	if s.playtypeRepo == nil {
		return nil
	}
	if _, ok := seen[scheme.PlaytypeID]; ok {
		return nil
	}
	seen[scheme.PlaytypeID] = struct{}{}

	entry := playtype.Entry{ID: scheme.PlaytypeID, Name: strings.TrimSpace(scheme.PlaytypeName)}
	if err := entry.Validate(); err != nil {
		return nil
	}
	if _, err := s.playtypeRepo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("%w: upsert playtype playtype_id=%d: %w", ErrPersistence, entry.ID, err)
	}
	return nil
}

// bumpOrCurrent advances the cache version when a run changed rows and
// otherwise reports the current one.
func bumpOrCurrent(ctx context.Context, repo cacheversion.Repository, changed bool) (int64, error) {
	if repo == nil {
		return 0, nil
	}
	if changed {
		v, err := repo.Bump(ctx, cacheversion.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: bump cache version: %w", ErrPersistence, err)
		}
		return v, nil
	}
	v, err := repo.Current(ctx, cacheversion.Name)
	if err != nil {
		return 0, fmt.Errorf("%w: read cache version: %w", ErrPersistence, err)
	}
	return v, nil
}
