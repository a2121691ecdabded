package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type transactionsRepo struct{ db querier }

const txnColumns = `id, user_id, type, amount, date`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.CreatedAt)
	return tx, err
}

func (r *transactionsRepo) Create(ctx context.Context, userID int64, typ models.TransactionType, amount decimal.Decimal) (models.Transaction, error) {
	const op = "repository.postgres.Transactions.Create"

	tx, err := scanTransaction(r.db.QueryRow(ctx,
		`INSERT INTO transactions(user_id, type, amount) VALUES($1,$2,$3) RETURNING `+txnColumns,
		userID, string(typ), amount,
	))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}
	return tx, nil
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Transaction, error) {
	const op = "repository.postgres.Transactions.ListByUser"

	limit, offset = repository.NormalizePage(limit, offset)
	out, err := r.query(ctx,
		`SELECT `+txnColumns+`
		   FROM transactions
		  WHERE user_id=$1
		  ORDER BY date DESC, id DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *transactionsRepo) List(ctx context.Context, f repository.TransactionFilter) ([]models.Transaction, error) {
	const op = "repository.postgres.Transactions.List"

	q, args := buildTransactionListQuery(f)
	out, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *transactionsRepo) query(ctx context.Context, q string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func buildTransactionListQuery(f repository.TransactionFilter) (string, []any) {
	limit, offset := repository.NormalizePage(f.Limit, f.Offset)

	var b strings.Builder
	b.WriteString(`SELECT ` + txnColumns + ` FROM transactions`)
	args := []any{}
	if f.Type != "" {
		args = append(args, string(f.Type))
		fmt.Fprintf(&b, ` WHERE type=$%d`, len(args))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, ` ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return b.String(), args
}
