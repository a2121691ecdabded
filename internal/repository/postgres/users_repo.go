// internal/repository/postgres/users_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type usersRepo struct{ db querier }

const userColumns = `id, name, pin, balance, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.PIN, &u.Balance, &u.CreatedAt)
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, name, pin string, balance decimal.Decimal) (models.User, error) {
	const op = "repository.postgres.Users.Create"

	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users(name, pin, balance) VALUES($1,$2,$3) RETURNING `+userColumns,
		name, pin, balance,
	))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	const op = "repository.postgres.Users.GetByID"

	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, repository.ErrNotFound
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *usersRepo) ListByName(ctx context.Context, name string) ([]models.User, error) {
	const op = "repository.postgres.Users.ListByName"

	out, err := r.query(ctx, `SELECT `+userColumns+` FROM users WHERE name=$1 ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *usersRepo) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	const op = "repository.postgres.Users.UpdateBalance"

	tag, err := r.db.Exec(ctx, `UPDATE users SET balance=$2 WHERE id=$1`, id, balance)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *usersRepo) List(ctx context.Context, f repository.UserFilter) ([]models.User, error) {
	const op = "repository.postgres.Users.List"

	q, args := buildUserListQuery(f)
	out, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *usersRepo) query(ctx context.Context, q string, args ...any) ([]models.User, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// buildUserListQuery renders the admin listing query. LIKE metacharacters in
// the filter are escaped so the match stays a plain substring match.
func buildUserListQuery(f repository.UserFilter) (string, []any) {
	limit, offset := repository.NormalizePage(f.Limit, f.Offset)

	var b strings.Builder
	b.WriteString(`SELECT ` + userColumns + ` FROM users`)
	args := []any{}
	if s := strings.TrimSpace(f.NameContains); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		fmt.Fprintf(&b, ` WHERE name ILIKE $%d`, len(args))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, ` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
