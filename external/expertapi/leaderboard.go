package expertapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/suwei8/lotto-ai4/internal/usecase"
)

type leaderboardData struct {
	IssueName string           `json:"issueName"`
	LotteryID flexInt          `json:"lotteryId"`
	RankList  []map[string]any `json:"rankList"`
}

// FetchLeaderboard returns the ranked experts of one play-type and sort order.
// Entries without a user id are dropped.
func (c *Client) FetchLeaderboard(ctx context.Context, query usecase.LeaderboardQuery) (usecase.Leaderboard, error) {
	env, err := c.Send(ctx, ActionLeaderboard, leaderboardBody{
		IssueCount: query.IssueCount,
		Limit:      query.Limit,
		LotteryID:  strconv.FormatInt(query.LotteryID, 10),
		PlayTypeID: query.PlaytypeID,
		SortType:   query.SortType,
	})
	if err != nil {
		return usecase.Leaderboard{}, fmt.Errorf("fetch leaderboard playtype_id=%d sort_type=%d: %w", query.PlaytypeID, query.SortType, err)
	}

	var data leaderboardData
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := sonic.Unmarshal(env.Data, &data); err != nil {
			return usecase.Leaderboard{}, fmt.Errorf("%w: decode leaderboard: %v", usecase.ErrUpstream, err)
		}
	}

	out := usecase.Leaderboard{
		IssueName: strings.TrimSpace(data.IssueName),
		LotteryID: int64(data.LotteryID),
		Entries:   make([]usecase.LeaderboardEntry, 0, len(data.RankList)),
	}
	if out.LotteryID <= 0 {
		out.LotteryID = query.LotteryID
	}
	for _, item := range data.RankList {
		userID, ok := anyInt64(item["userId"])
		if !ok || userID <= 0 {
			continue
		}
		nick, _ := item["nickName"].(string)
		out.Entries = append(out.Entries, usecase.LeaderboardEntry{
			UserID:   userID,
			NickName: strings.TrimSpace(nick),
			Raw:      item,
		})
	}
	return out, nil
}

func anyInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case float64:
		return int64(value), true
	case int64:
		return value, true
	case int:
		return int64(value), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
