package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/shopspring/decimal"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newRepos(t *testing.T) repo.Repositories {
	t.Helper()
	return New().WithClock(tickingClock()).Repositories()
}

func TestUsersCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)

	a, _ := r.Users.Create(ctx, "Alice", "1234", decimal.NewFromInt(1000))
	_, _ = r.Users.Create(ctx, "Bob", "9999", decimal.NewFromInt(1000))
	a2, _ := r.Users.Create(ctx, "Alice", "4321", decimal.NewFromInt(1000))

	if a.ID == a2.ID {
		t.Fatal("ids must be unique")
	}
	got, err := r.Users.ListByName(ctx, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != a2.ID {
		t.Fatalf("ListByName=%+v want both Alices in creation order", got)
	}
	if got, _ := r.Users.ListByName(ctx, "alice"); len(got) != 0 {
		t.Fatalf("names match exactly, got %+v", got)
	}
	if _, err := r.Users.GetByID(ctx, 42); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := r.Users.UpdateBalance(ctx, 42, decimal.Zero); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUsersListFilterAndPage(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	for _, n := range []string{"Alice", "Bob", "Malice", "Carol"} {
		_, _ = r.Users.Create(ctx, n, "0000", decimal.NewFromInt(1000))
	}

	tests := []struct {
		name   string
		filter repo.UserFilter
		want   []string
	}{
		{"all", repo.UserFilter{}, []string{"Alice", "Bob", "Malice", "Carol"}},
		{"substring ignores case", repo.UserFilter{NameContains: "ALI"}, []string{"Alice", "Malice"}},
		{"limit", repo.UserFilter{Limit: 2}, []string{"Alice", "Bob"}},
		{"offset", repo.UserFilter{Limit: 2, Offset: 3}, []string{"Carol"}},
		{"offset past end", repo.UserFilter{Offset: 10}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Users.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d users want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Fatalf("got[%d]=%s want %s", i, got[i].Name, tt.want[i])
				}
			}
		})
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	u, _ := r.Users.Create(ctx, "Alice", "1234", decimal.NewFromInt(1000))
	other, _ := r.Users.Create(ctx, "Bob", "1234", decimal.NewFromInt(1000))

	_, _ = r.Transactions.Create(ctx, u.ID, models.TxnDeposit, decimal.NewFromInt(500))
	_, _ = r.Transactions.Create(ctx, other.ID, models.TxnDeposit, decimal.NewFromInt(1))
	last, _ := r.Transactions.Create(ctx, u.ID, models.TxnWithdraw, decimal.NewFromInt(200))

	got, err := r.Transactions.ListByUser(ctx, u.ID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d txns want 2", len(got))
	}
	if got[0].ID != last.ID || got[0].Type != models.TxnWithdraw {
		t.Fatalf("newest first violated: %+v", got)
	}

	withdrawals, _ := r.Transactions.List(ctx, repo.TransactionFilter{Type: models.TxnWithdraw})
	if len(withdrawals) != 1 {
		t.Fatalf("type filter: %+v", withdrawals)
	}
	all, _ := r.Transactions.List(ctx, repo.TransactionFilter{})
	if len(all) != 3 {
		t.Fatalf("all=%d want 3", len(all))
	}
}

func TestWithUserTxCommits(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	u, _ := r.Users.Create(ctx, "Alice", "1234", decimal.NewFromInt(1000))

	err := r.Atomic.WithUserTx(ctx, u.ID, func(tx repo.UserTx) error {
		nb := tx.User().Balance.Add(decimal.NewFromInt(500))
		if err := tx.UpdateBalance(ctx, nb); err != nil {
			return err
		}
		_, err := tx.AppendTransaction(ctx, models.TxnDeposit, decimal.NewFromInt(500))
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := r.Users.GetByID(ctx, u.ID)
	if !got.Balance.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("balance=%s want 1500", got.Balance)
	}
	txns, _ := r.Transactions.ListByUser(ctx, u.ID, 0, 0)
	if len(txns) != 1 || !txns[0].Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("txns=%+v", txns)
	}
}

func TestWithUserTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	u, _ := r.Users.Create(ctx, "Alice", "1234", decimal.NewFromInt(1000))
	boom := errors.New("append failed")

	err := r.Atomic.WithUserTx(ctx, u.ID, func(tx repo.UserTx) error {
		_ = tx.UpdateBalance(ctx, decimal.NewFromInt(9999))
		_, _ = tx.AppendTransaction(ctx, models.TxnDeposit, decimal.NewFromInt(8999))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	got, _ := r.Users.GetByID(ctx, u.ID)
	if !got.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance changed on rollback: %s", got.Balance)
	}
	if txns, _ := r.Transactions.ListByUser(ctx, u.ID, 0, 0); len(txns) != 0 {
		t.Fatalf("transaction persisted on rollback: %+v", txns)
	}
}

func TestWithUserTxUnknownUser(t *testing.T) {
	r := newRepos(t)
	called := false
	err := r.Atomic.WithUserTx(context.Background(), 7, func(repo.UserTx) error {
		called = true
		return nil
	})
	if !errors.Is(err, repo.ErrNotFound) || called {
		t.Fatalf("err=%v called=%t", err, called)
	}
}

func TestAuditLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	for _, a := range []string{"user.registered", "session.blocked"} {
		if err := r.AuditLogs.Create(ctx, models.AuditLog{EntityType: models.AuditEntityUser, Action: a}); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := r.AuditLogs.List(ctx, 0)
	if len(got) != 2 || got[0].Action != "session.blocked" || got[0].ID == "" {
		t.Fatalf("audit logs=%+v", got)
	}
}
