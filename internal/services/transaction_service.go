package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/baharkarakas/atm-backend/internal/events"
	"github.com/baharkarakas/atm-backend/internal/metrics"
	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/baharkarakas/atm-backend/internal/session"
	"github.com/shopspring/decimal"
)

var (
	MaxDeposit     = decimal.NewFromInt(50000)
	MaxWithdrawal  = decimal.NewFromInt(20000)
	MinimumBalance = decimal.NewFromInt(1000)
	NoteValue      = decimal.NewFromInt(100)
)

type TransactionService struct {
	trx    repo.Transactions
	atomic repo.Atomic
	audit  *Auditor
	log    *slog.Logger
}

func NewTransactionService(t repo.Transactions, a repo.Atomic, audit *Auditor, log *slog.Logger) *TransactionService {
	return &TransactionService{trx: t, atomic: a, audit: audit, log: log}
}

// ----------------- Helpers -----------------

// validAmount: positive with at most two fractional digits.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}

func (s *TransactionService) reject(typ models.TransactionType, reason string, err error) error {
	metrics.TransactionsFailed.WithLabelValues(string(typ), reason).Inc()
	return err
}

// apply runs mutate against the freshly locked user row, writes the new
// balance and appends one transaction record, all in one unit of work.
func (s *TransactionService) apply(ctx context.Context, sess *session.Session, typ models.TransactionType, amount decimal.Decimal,
	mutate func(balance decimal.Decimal) (decimal.Decimal, error)) (decimal.Decimal, error) {

	u, err := sess.CurrentUser()
	if err != nil {
		return decimal.Decimal{}, err
	}

	var (
		newBalance decimal.Decimal
		rec        models.Transaction
	)
	err = s.atomic.WithUserTx(ctx, u.ID, func(tx repo.UserTx) error {
		nb, err := mutate(tx.User().Balance)
		if err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, nb); err != nil {
			return err
		}
		rec, err = tx.AppendTransaction(ctx, typ, amount)
		if err != nil {
			return err
		}
		newBalance = nb
		return nil
	})
	if err != nil {
		var re *RuleError
		if errors.As(err, &re) {
			return decimal.Decimal{}, err
		}
		s.log.Error("transaction failed", "type", typ, "user_id", u.ID, "err", err)
		return decimal.Decimal{}, s.reject(typ, "storage", storageErr("services.Transaction."+string(typ), err))
	}

	sess.SetBalance(u.ID, newBalance)
	metrics.TransactionsTotal.WithLabelValues(string(typ)).Inc()
	s.log.Info("transaction committed", "type", typ, "user_id", u.ID, "transaction_id", rec.ID)

	key := events.KeyDeposited
	if typ == models.TxnWithdraw {
		key = events.KeyWithdrawn
	}
	s.audit.Record(models.AuditLog{
		EntityType: models.AuditEntityTransaction,
		EntityID:   entityID(strconv.FormatInt(rec.ID, 10)),
		Action:     "transaction." + string(typ),
		Details:    map[string]any{"user_id": u.ID, "amount": amount.String(), "balance": newBalance.String()},
	}, key, events.TransactionEvent{
		TransactionID: rec.ID,
		UserID:        u.ID,
		Type:          string(typ),
		Amount:        amount,
		Balance:       newBalance,
		Timestamp:     rec.CreatedAt,
	})
	return newBalance, nil
}

// ----------------- DEPOSIT -----------------

// Deposit credits amount to the logged-in user and returns the new balance.
// Checks run in order: limit, then amount format.
func (s *TransactionService) Deposit(ctx context.Context, sess *session.Session, amount decimal.Decimal) (decimal.Decimal, error) {
	if _, err := sess.CurrentUser(); err != nil {
		return decimal.Decimal{}, err
	}
	if amount.GreaterThan(MaxDeposit) {
		return decimal.Decimal{}, s.reject(models.TxnDeposit, "limit", rule(ErrLimitExceeded, "Deposit limit exceeded. Max 50,000"))
	}
	if !validAmount(amount) {
		return decimal.Decimal{}, s.reject(models.TxnDeposit, "amount", rule(ErrInvalidAmount, "Amount must be positive with at most 2 decimals"))
	}

	return s.apply(ctx, sess, models.TxnDeposit, amount, func(balance decimal.Decimal) (decimal.Decimal, error) {
		return balance.Add(amount), nil
	})
}

// ----------------- WITHDRAW -----------------

// Withdraw debits amount from the logged-in user and returns the new
// balance. Checks run in order: limit, amount format, denomination, then
// sufficiency against the locked balance; at least MinimumBalance stays.
func (s *TransactionService) Withdraw(ctx context.Context, sess *session.Session, amount decimal.Decimal) (decimal.Decimal, error) {
	if _, err := sess.CurrentUser(); err != nil {
		return decimal.Decimal{}, err
	}
	if amount.GreaterThan(MaxWithdrawal) {
		return decimal.Decimal{}, s.reject(models.TxnWithdraw, "limit", rule(ErrLimitExceeded, "Withdraw limit 20,000"))
	}
	if !validAmount(amount) {
		return decimal.Decimal{}, s.reject(models.TxnWithdraw, "amount", rule(ErrInvalidAmount, "Amount must be positive with at most 2 decimals"))
	}
	if !amount.Mod(NoteValue).IsZero() {
		return decimal.Decimal{}, s.reject(models.TxnWithdraw, "denomination", rule(ErrInvalidDenomination, "Amount must be multiple of 100"))
	}

	return s.apply(ctx, sess, models.TxnWithdraw, amount, func(balance decimal.Decimal) (decimal.Decimal, error) {
		if amount.GreaterThan(balance.Sub(MinimumBalance)) {
			return decimal.Decimal{}, s.reject(models.TxnWithdraw, "funds", rule(ErrInsufficientFunds, "Insufficient funds or minimum 1000 required"))
		}
		return balance.Sub(amount), nil
	})
}

// ----------------- Queries -----------------

// History lists the logged-in user's transactions, most recent first.
func (s *TransactionService) History(ctx context.Context, sess *session.Session, limit, offset int) ([]models.Transaction, error) {
	u, err := sess.CurrentUser()
	if err != nil {
		return nil, err
	}
	out, err := s.trx.ListByUser(ctx, u.ID, limit, offset)
	if err != nil {
		return nil, storageErr("services.Transaction.History", err)
	}
	return out, nil
}
