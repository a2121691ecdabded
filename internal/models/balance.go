package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a point-in-time read of a user's stored balance.
type Balance struct {
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"balance"`
	CheckedAt time.Time       `json:"checked_at"`
}
