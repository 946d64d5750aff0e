package prediction

import (
	"fmt"
	"strings"
)

// Prediction is one expert's numbers for one play-type in one issue.
// (UserID, IssueName, PlaytypeID) is unique.
type Prediction struct {
	UserID     int64
	IssueName  string
	LotteryID  int64
	PlaytypeID int64
	Numbers    string
}

func (p Prediction) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("prediction user id must be > 0")
	}
	if strings.TrimSpace(p.IssueName) == "" {
		return fmt.Errorf("prediction issue name is required")
	}
	if p.PlaytypeID <= 0 {
		return fmt.Errorf("prediction playtype id must be > 0")
	}
	return nil
}

// Filter narrows prediction listings. Empty slices do not filter.
type Filter struct {
	IssueName   string
	LotteryID   int64
	PlaytypeIDs []int64
	UserIDs     []int64
}
