package postgres

import (
	"context"

	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:        &usersRepo{db: pool},
		Transactions: &transactionsRepo{db: pool},
		AuditLogs:    &auditLogsRepo{db: pool},
		Atomic:       &atomicRepo{pool: pool},
	}
}
