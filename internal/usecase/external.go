package usecase

import (
	"context"

	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
)

// ExpertProvider is the upstream serving expert leaderboards and schemes.
type ExpertProvider interface {
	FetchLeaderboard(ctx context.Context, query LeaderboardQuery) (Leaderboard, error)
	FetchDetail(ctx context.Context, query DetailQuery) (Detail, error)
}

// DrawFeed is the public paginated draw-result feed.
type DrawFeed interface {
	FetchPage(ctx context.Context, query DrawPageQuery) (DrawPage, error)
}

type LeaderboardQuery struct {
	LotteryID  int64
	PlaytypeID int64
	SortType   int
	Limit      int
	IssueCount int
}

type Leaderboard struct {
	IssueName string
	LotteryID int64
	Entries   []LeaderboardEntry
}

type LeaderboardEntry struct {
	UserID   int64
	NickName string
	Raw      map[string]any
}

// DetailQuery asks for one expert's schemes. An empty IssueName lets the
// upstream pick the current issue.
type DetailQuery struct {
	LotteryID int64
	UserID    int64
	IssueName string
}

type Detail struct {
	IssueName string
	LotteryID int64
	Schemes   []ExternalScheme
}

type ExternalScheme struct {
	PlaytypeID   int64
	PlaytypeName string
	Numbers      prediction.Numbers
}

type DrawPageQuery struct {
	LottoType string
	PageSize  int
	Page      int
}

type DrawPage struct {
	Items     []DrawItem
	TotalPage int
}

type DrawItem struct {
	IssueNo     string
	OpenTime    string
	OpenResults []string
	RedResults  []string
	BlueResults []string
}
