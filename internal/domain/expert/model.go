package expert

import (
	"context"
	"fmt"

	"github.com/suwei8/lotto-ai4/internal/domain/upsert"
)

// Expert is an upstream predictor. The nickname is last-write-wins.
type Expert struct {
	UserID   int64  `json:"user_id"`
	NickName string `json:"nick_name"`
}

func (e Expert) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("expert user id must be > 0")
	}
	return nil
}

// Repository describes expert persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Expert) (upsert.Outcome, error)
	GetByID(ctx context.Context, userID int64) (Expert, bool, error)
	List(ctx context.Context, limit int) ([]Expert, error)
}
