package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type atomicRepo struct{ pool *pgxpool.Pool }

// WithUserTx locks the user row with SELECT ... FOR UPDATE so concurrent
// mutations of the same account queue behind each other.
func (r *atomicRepo) WithUserTx(ctx context.Context, userID int64, fn func(repository.UserTx) error) error {
	const op = "repository.postgres.WithUserTx"

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("%s: lock user: %w", op, err)
	}

	ut := &userTx{
		user:  u,
		users: &usersRepo{db: tx},
		txns:  &transactionsRepo{db: tx},
	}
	if err := fn(ut); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

type userTx struct {
	user  models.User
	users *usersRepo
	txns  *transactionsRepo
}

func (t *userTx) User() models.User { return t.user }

func (t *userTx) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	if err := t.users.UpdateBalance(ctx, t.user.ID, balance); err != nil {
		return err
	}
	t.user.Balance = balance
	return nil
}

func (t *userTx) AppendTransaction(ctx context.Context, typ models.TransactionType, amount decimal.Decimal) (models.Transaction, error) {
	return t.txns.Create(ctx, t.user.ID, typ, amount)
}
