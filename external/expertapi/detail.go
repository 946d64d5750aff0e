package expertapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/suwei8/lotto-ai4/internal/domain/prediction"
	"github.com/suwei8/lotto-ai4/internal/usecase"
)

const recomTenantCode = "recom"

type detailData struct {
	IssueName  string       `json:"issueName"`
	LotteryID  flexInt      `json:"lotteryId"`
	SchemeList []schemeItem `json:"schemeContentModelList"`
}

type schemeItem struct {
	PlaytypeID   flexInt      `json:"playtypeId"`
	PlaytypeName string       `json:"playtypeName"`
	DWNumberList [][]*flexInt `json:"dwNumberList"`
	NumberList   []*flexInt   `json:"numberList"`
	Numbers      any          `json:"numbers"`
}

// FetchDetail returns every scheme one expert published for an issue.
func (c *Client) FetchDetail(ctx context.Context, query usecase.DetailQuery) (usecase.Detail, error) {
	env, err := c.Send(ctx, ActionDetail, detailBody{
		IssueName:       strings.TrimSpace(query.IssueName),
		LotteryID:       strconv.FormatInt(query.LotteryID, 10),
		RecomTenantCode: recomTenantCode,
		RecomUserID:     strconv.FormatInt(query.UserID, 10),
	})
	if err != nil {
		return usecase.Detail{}, fmt.Errorf("fetch detail user_id=%d: %w", query.UserID, err)
	}

	var data detailData
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := sonic.Unmarshal(env.Data, &data); err != nil {
			return usecase.Detail{}, fmt.Errorf("%w: decode detail user_id=%d: %v", usecase.ErrUpstream, query.UserID, err)
		}
	}

	out := usecase.Detail{
		IssueName: strings.TrimSpace(data.IssueName),
		LotteryID: int64(data.LotteryID),
		Schemes:   make([]usecase.ExternalScheme, 0, len(data.SchemeList)),
	}
	if out.IssueName == "" {
		out.IssueName = strings.TrimSpace(query.IssueName)
	}
	if out.LotteryID <= 0 {
		out.LotteryID = query.LotteryID
	}
	for _, item := range data.SchemeList {
		out.Schemes = append(out.Schemes, usecase.ExternalScheme{
			PlaytypeID:   int64(item.PlaytypeID),
			PlaytypeName: strings.TrimSpace(item.PlaytypeName),
			Numbers:      item.numbers(),
		})
	}
	return out, nil
}

// numbers resolves the payload shape: position groups first, then a flat
// list, then whatever the numbers field holds. Null digits are dropped.
func (s schemeItem) numbers() prediction.Numbers {
	if len(s.DWNumberList) > 0 {
		groups := make(prediction.NestedGroups, 0, len(s.DWNumberList))
		for _, group := range s.DWNumberList {
			groups = append(groups, compactDigits(group))
		}
		return groups
	}
	if len(s.NumberList) > 0 {
		return prediction.FlatDigits(compactDigits(s.NumberList))
	}
	switch v := s.Numbers.(type) {
	case string:
		return prediction.OpaqueString(v)
	case nil:
		return prediction.OpaqueString("")
	default:
		raw, err := sonic.MarshalString(v)
		if err != nil {
			return prediction.OpaqueString("")
		}
		return prediction.OpaqueString(raw)
	}
}

func compactDigits(values []*flexInt) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, int(*v))
	}
	return out
}
