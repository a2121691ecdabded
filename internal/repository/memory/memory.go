// Package memory is an in-process implementation of the repository
// interfaces. Nothing survives a restart; it backs tests and local runs
// with STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store holds every table behind one mutex. WithUserTx keeps the mutex for
// the whole unit of work, which serialises all balance mutations.
type Store struct {
	mu     sync.Mutex
	users  []models.User
	txns   []models.Transaction
	audits []models.AuditLog
	nextU  int64
	nextT  int64
	now    func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// WithClock replaces the timestamp source; tests use it to get distinct,
// ordered timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Repositories() repo.Repositories {
	return repo.Repositories{
		Users:        usersRepo{s},
		Transactions: transactionsRepo{s},
		AuditLogs:    auditLogsRepo{s},
		Atomic:       atomicRepo{s},
	}
}

func (s *Store) indexOf(id int64) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) insertTxn(userID int64, typ models.TransactionType, amount decimal.Decimal) models.Transaction {
	s.nextT++
	tx := models.Transaction{ID: s.nextT, UserID: userID, Type: typ, Amount: amount, CreatedAt: s.now()}
	s.txns = append(s.txns, tx)
	return tx
}

// newestFirst orders by timestamp desc, id desc.
func newestFirst(in []models.Transaction) {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].CreatedAt.Equal(in[j].CreatedAt) {
			return in[i].ID > in[j].ID
		}
		return in[i].CreatedAt.After(in[j].CreatedAt)
	})
}

func page[T any](in []T, limit, offset int) []T {
	limit, offset = repo.NormalizePage(limit, offset)
	if offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

// ---------- users ----------

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, name, pin string, balance decimal.Decimal) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextU++
	u := models.User{ID: r.s.nextU, Name: name, PIN: pin, Balance: balance, CreatedAt: r.s.now()}
	r.s.users = append(r.s.users, u)
	return u, nil
}

func (r usersRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.indexOf(id)
	if i < 0 {
		return models.User{}, repo.ErrNotFound
	}
	return r.s.users[i], nil
}

func (r usersRepo) ListByName(_ context.Context, name string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r usersRepo) UpdateBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.indexOf(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	r.s.users[i].Balance = balance
	return nil
}

func (r usersRepo) List(_ context.Context, f repo.UserFilter) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(f.NameContains))
	out := []models.User{}
	for _, u := range r.s.users {
		if needle == "" || strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u)
		}
	}
	return page(out, f.Limit, f.Offset), nil
}

// ---------- transactions ----------

type transactionsRepo struct{ s *Store }

func (r transactionsRepo) Create(_ context.Context, userID int64, typ models.TransactionType, amount decimal.Decimal) (models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertTxn(userID, typ, amount), nil
}

func (r transactionsRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Transaction{}
	for _, tx := range r.s.txns {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	newestFirst(out)
	return page(out, limit, offset), nil
}

func (r transactionsRepo) List(_ context.Context, f repo.TransactionFilter) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Transaction{}
	for _, tx := range r.s.txns {
		if f.Type == "" || tx.Type == f.Type {
			out = append(out, tx)
		}
	}
	newestFirst(out)
	return page(out, f.Limit, f.Offset), nil
}

// ---------- audit logs ----------

type auditLogsRepo struct{ s *Store }

func (r auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = r.s.now()
	r.s.audits = append(r.s.audits, l)
	return nil
}

func (r auditLogsRepo) List(_ context.Context, limit int) ([]models.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 || limit > len(r.s.audits) {
		limit = len(r.s.audits)
	}
	out := make([]models.AuditLog, 0, limit)
	for i := len(r.s.audits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.audits[i])
	}
	return out, nil
}

// ---------- unit of work ----------

type atomicRepo struct{ s *Store }

func (r atomicRepo) WithUserTx(ctx context.Context, userID int64, fn func(repo.UserTx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(userID)
	if i < 0 {
		return repo.ErrNotFound
	}
	tx := &userTx{s: r.s, user: r.s.users[i]}
	if err := fn(tx); err != nil {
		return err
	}

	// commit staged writes
	if tx.balanceSet {
		r.s.users[i].Balance = tx.user.Balance
	}
	r.s.txns = append(r.s.txns, tx.pending...)
	return nil
}

// userTx runs while atomicRepo holds s.mu, so it may touch s directly.
type userTx struct {
	s          *Store
	user       models.User
	balanceSet bool
	pending    []models.Transaction
}

func (t *userTx) User() models.User { return t.user }

func (t *userTx) UpdateBalance(_ context.Context, balance decimal.Decimal) error {
	t.user.Balance = balance
	t.balanceSet = true
	return nil
}

// AppendTransaction reserves an id immediately; a rolled-back unit of work
// leaves a gap in the sequence, as a database sequence would.
func (t *userTx) AppendTransaction(_ context.Context, typ models.TransactionType, amount decimal.Decimal) (models.Transaction, error) {
	t.s.nextT++
	tx := models.Transaction{ID: t.s.nextT, UserID: t.user.ID, Type: typ, Amount: amount, CreatedAt: t.s.now()}
	t.pending = append(t.pending, tx)
	return tx, nil
}
