package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("record not found")

type UserFilter struct {
	NameContains string // case-insensitive substring
	Limit        int
	Offset       int
}

type TransactionFilter struct {
	Type   models.TransactionType // empty = all types
	Limit  int
	Offset int
}

type Users interface {
	Create(ctx context.Context, name, pin string, balance decimal.Decimal) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	// ListByName returns every user with exactly this name, oldest first.
	// Duplicate (name, pin) registrations are allowed; callers take the first match.
	ListByName(ctx context.Context, name string) ([]models.User, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	List(ctx context.Context, f UserFilter) ([]models.User, error)
}

type Transactions interface {
	Create(ctx context.Context, userID int64, typ models.TransactionType, amount decimal.Decimal) (models.Transaction, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Transaction, error)
	List(ctx context.Context, f TransactionFilter) ([]models.Transaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// UserTx is a unit of work scoped to one locked user row.
type UserTx interface {
	User() models.User
	UpdateBalance(ctx context.Context, balance decimal.Decimal) error
	AppendTransaction(ctx context.Context, typ models.TransactionType, amount decimal.Decimal) (models.Transaction, error)
}

// Atomic runs fn with the user's row locked; nothing fn wrote survives an error.
type Atomic interface {
	WithUserTx(ctx context.Context, userID int64, fn func(tx UserTx) error) error
}

type Repositories struct {
	Users        Users
	Transactions Transactions
	AuditLogs    AuditLogs
	Atomic       Atomic
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// NormalizePage clamps limit/offset to sane bounds.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
