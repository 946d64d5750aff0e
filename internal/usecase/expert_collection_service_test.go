package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
	"github.com/suwei8/lotto-ai4/internal/infrastructure/repository/memory"
	"github.com/suwei8/lotto-ai4/internal/platform/id"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

type boardKey struct {
	playtypeID int64
	sortType   int
}

type fakeExpertProvider struct {
	boards      map[boardKey]Leaderboard
	boardErrs   map[boardKey]error
	details     map[int64]Detail
	detailErrs  map[int64]error
	boardCalls  []LeaderboardQuery
	detailCalls []DetailQuery
}

func (f *fakeExpertProvider) FetchLeaderboard(_ context.Context, q LeaderboardQuery) (Leaderboard, error) {
	f.boardCalls = append(f.boardCalls, q)
	key := boardKey{playtypeID: q.PlaytypeID, sortType: q.SortType}
	if err := f.boardErrs[key]; err != nil {
		return Leaderboard{}, err
	}
	return f.boards[key], nil
}

func (f *fakeExpertProvider) FetchDetail(_ context.Context, q DetailQuery) (Detail, error) {
	f.detailCalls = append(f.detailCalls, q)
	if err := f.detailErrs[q.UserID]; err != nil {
		return Detail{}, err
	}
	return f.details[q.UserID], nil
}

type expertFixture struct {
	provider    *fakeExpertProvider
	experts     *memory.ExpertRepository
	predictions *memory.PredictionRepository
	playtypes   *memory.PlaytypeRepository
	versions    *memory.CacheVersionRepository
	svc         *ExpertCollectionService
}

func newExpertFixture(provider *fakeExpertProvider) expertFixture {
	f := expertFixture{
		provider:    provider,
		experts:     memory.NewExpertRepository(),
		predictions: memory.NewPredictionRepository(),
		playtypes:   memory.NewPlaytypeRepository(),
		versions:    memory.NewCacheVersionRepository(),
	}
	f.svc = NewExpertCollectionService(
		provider,
		f.experts,
		f.predictions,
		f.playtypes,
		f.versions,
		id.Static("run-1"),
		ExpertCollectionConfig{
			LotteryID: 6,
			Specs: []playtype.Spec{
				{ID: 3003, Name: "定位3*3*3", SortTypes: []int{4}},
				{ID: 1001, Name: "独胆", SortTypes: []int{4, 5}},
			},
		},
		logging.NewNop(),
	)
	return f
}

func standardProvider() *fakeExpertProvider {
	return &fakeExpertProvider{
		boards: map[boardKey]Leaderboard{
			{3003, 4}: {IssueName: "2025061", LotteryID: 6, Entries: []LeaderboardEntry{
				{UserID: 1, NickName: "alpha"},
				{UserID: 2, NickName: "beta"},
			}},
			{1001, 4}: {IssueName: "2025061", LotteryID: 6, Entries: []LeaderboardEntry{
				{UserID: 1, NickName: "alpha"},
			}},
		},
		boardErrs: map[boardKey]error{
			{1001, 5}: fmt.Errorf("%w: timeout", ErrTransport),
		},
		details: map[int64]Detail{
			1: {IssueName: "2025061", LotteryID: 6, Schemes: []ExternalScheme{
				{PlaytypeID: 3003, PlaytypeName: "定位3*3*3", Numbers: prediction.NestedGroups{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}},
				{PlaytypeID: 1001, PlaytypeName: "独胆", Numbers: prediction.FlatDigits{5}},
			}},
		},
		detailErrs: map[int64]error{
			2: &UpstreamError{Action: 40016, Code: 500, Message: "busy"},
		},
	}
}

func TestExpertCollectionService_Run(t *testing.T) {
	ctx := context.Background()
	f := newExpertFixture(standardProvider())

	result, err := f.svc.Run(ctx, ExpertCollectionInput{Limit: 100, IssueCount: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.RunID != "run-1" || result.IssueName != "2025061" {
		t.Fatalf("unexpected run identity: %+v", result)
	}
	if result.LeaderboardCalls != 2 || result.DetailCalls != 1 {
		t.Fatalf("unexpected call counts: %+v", result)
	}
	if result.Predictions != (upsert.Stats{Inserted: 4}) {
		t.Fatalf("unexpected prediction stats: %+v", result.Predictions)
	}
	if result.Experts != (upsert.Stats{Inserted: 2, Skipped: 1}) {
		t.Fatalf("unexpected expert stats: %+v", result.Experts)
	}
	if result.CacheVersion != 1 {
		t.Fatalf("expected cache version 1, got %d", result.CacheVersion)
	}
	if len(f.provider.detailCalls) != 2 {
		t.Fatalf("expected each distinct expert fetched once, got %d calls", len(f.provider.detailCalls))
	}

	rows, _ := f.predictions.List(ctx, prediction.Filter{IssueName: "2025061", UserIDs: []int64{1}})
	want := map[int64]string{1001: "5", 30031: "1,2,3", 30032: "4,5,6", 30033: "7,8,9"}
	if len(rows) != len(want) {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	for _, row := range rows {
		if want[row.PlaytypeID] != row.Numbers {
			t.Fatalf("unexpected row %+v", row)
		}
	}

	entries, _ := f.playtypes.List(ctx)
	if len(entries) != 4 || entries[1].ID != 30031 || entries[1].Name != "定位3*3*3-百位" {
		t.Fatalf("unexpected playtype dictionary: %+v", entries)
	}
}

func TestExpertCollectionService_RerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newExpertFixture(standardProvider())

	if _, err := f.svc.Run(ctx, ExpertCollectionInput{Limit: 100, IssueCount: 5}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := f.svc.Run(ctx, ExpertCollectionInput{Limit: 100, IssueCount: 5})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Predictions != (upsert.Stats{Skipped: 4}) {
		t.Fatalf("expected all predictions skipped, got %+v", result.Predictions)
	}
	if result.CacheVersion != 1 {
		t.Fatalf("unchanged run must not bump the version, got %d", result.CacheVersion)
	}
}

func TestExpertCollectionService_SortTypeOverride(t *testing.T) {
	f := newExpertFixture(standardProvider())

	if _, err := f.svc.Run(context.Background(), ExpertCollectionInput{Limit: 10, IssueCount: 3, SortTypes: []int{4}}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(f.provider.boardCalls) != 2 {
		t.Fatalf("expected one leaderboard per spec, got %d", len(f.provider.boardCalls))
	}
	for _, q := range f.provider.boardCalls {
		if q.SortType != 4 || q.Limit != 10 || q.IssueCount != 3 || q.LotteryID != 6 {
			t.Fatalf("unexpected leaderboard query: %+v", q)
		}
	}
}

func TestExpertCollectionService_DetailIssueOverridesLeaderboard(t *testing.T) {
	provider := standardProvider()
	provider.details[1] = Detail{IssueName: "2025062", Schemes: []ExternalScheme{
		{PlaytypeID: 1001, PlaytypeName: "独胆", Numbers: prediction.OpaqueString("7")},
	}}
	f := newExpertFixture(provider)

	if _, err := f.svc.Run(context.Background(), ExpertCollectionInput{Limit: 10, IssueCount: 3}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if provider.detailCalls[0].IssueName != "2025061" {
		t.Fatalf("detail should be asked for the leaderboard issue, got %q", provider.detailCalls[0].IssueName)
	}
	rows, _ := f.predictions.List(context.Background(), prediction.Filter{IssueName: "2025062"})
	if len(rows) != 1 || rows[0].Numbers != "7" {
		t.Fatalf("expected prediction stored under detail issue, got %+v", rows)
	}
}

func TestExpertCollectionService_NoExperts(t *testing.T) {
	provider := &fakeExpertProvider{boardErrs: map[boardKey]error{
		{3003, 4}: errors.New("boom"),
		{1001, 4}: errors.New("boom"),
		{1001, 5}: errors.New("boom"),
	}}
	f := newExpertFixture(provider)

	_, err := f.svc.Run(context.Background(), ExpertCollectionInput{Limit: 10, IssueCount: 3})
	if !errors.Is(err, ErrNoExperts) {
		t.Fatalf("expected ErrNoExperts, got %v", err)
	}
}

type failingPredictionRepo struct{}

func (failingPredictionRepo) Upsert(context.Context, prediction.Prediction) (upsert.Outcome, error) {
	return "", errors.New("connection reset")
}

func (failingPredictionRepo) List(context.Context, prediction.Filter) ([]prediction.Prediction, error) {
	return nil, nil
}

func TestExpertCollectionService_PersistenceErrorAbortsRun(t *testing.T) {
	f := newExpertFixture(standardProvider())
	f.svc.predictionRepo = failingPredictionRepo{}

	_, err := f.svc.Run(context.Background(), ExpertCollectionInput{Limit: 10, IssueCount: 3})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if v, _ := f.versions.Current(context.Background(), "lotto_data"); v != 0 {
		t.Fatalf("aborted run must not bump the version, got %d", v)
	}
}

func TestExpertCollectionService_InvalidInput(t *testing.T) {
	f := newExpertFixture(standardProvider())

	cases := []ExpertCollectionInput{
		{Limit: 0, IssueCount: 5},
		{Limit: 10, IssueCount: 0},
		{Limit: 10, IssueCount: 5, SortTypes: []int{0}},
	}
	for _, input := range cases {
		if _, err := f.svc.Run(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestUpstreamError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("fetch detail: %w", &UpstreamError{Action: 40016, Code: 9, Message: "denied"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream match")
	}
	if errors.Is(err, ErrTransport) {
		t.Fatalf("upstream error must not match ErrTransport")
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.Code != 9 {
		t.Fatalf("expected errors.As to recover the code, got %+v", upstream)
	}
}
