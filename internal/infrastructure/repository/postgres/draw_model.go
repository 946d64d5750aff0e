package postgres

import (
	"database/sql"

	"github.com/suwei8/lotto-ai4/internal/domain/draw"
)

type drawTableModel struct {
	LotteryName   string       `db:"lottery_name"`
	IssueName     string       `db:"issue_name"`
	OpenCode      string       `db:"open_code"`
	Sum           int          `db:"sum"`
	Span          int          `db:"span"`
	OddEvenRatio  string       `db:"odd_even_ratio"`
	BigSmallRatio string       `db:"big_small_ratio"`
	OpenTime      sql.NullTime `db:"open_time"`
}

var drawColumns = []string{"lottery_name", "issue_name", "open_code", "sum", "span", "odd_even_ratio", "big_small_ratio", "open_time"}

func drawToModel(item draw.Result) drawTableModel {
	out := drawTableModel{
		LotteryName:   item.LotteryName,
		IssueName:     item.IssueName,
		OpenCode:      item.OpenCode,
		Sum:           item.Sum,
		Span:          item.Span,
		OddEvenRatio:  item.OddEvenRatio,
		BigSmallRatio: item.BigSmallRatio,
	}
	if item.OpenTime != nil {
		out.OpenTime = sql.NullTime{Time: *item.OpenTime, Valid: true}
	}
	return out
}

func (m drawTableModel) toDomain() draw.Result {
	out := draw.Result{
		LotteryName:   m.LotteryName,
		IssueName:     m.IssueName,
		OpenCode:      m.OpenCode,
		Sum:           m.Sum,
		Span:          m.Span,
		OddEvenRatio:  m.OddEvenRatio,
		BigSmallRatio: m.BigSmallRatio,
	}
	if m.OpenTime.Valid {
		t := m.OpenTime.Time
		out.OpenTime = &t
	}
	return out
}
