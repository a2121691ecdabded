package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType values are stored verbatim in transactions.type.
type TransactionType string

const (
	TxnDeposit  TransactionType = "Deposit"
	TxnWithdraw TransactionType = "Withdraw"
)

func (t TransactionType) Valid() bool {
	return t == TxnDeposit || t == TxnWithdraw
}

type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"date"`
}
