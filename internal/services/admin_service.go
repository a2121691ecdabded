package services

import (
	"context"
	"strings"

	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
)

// AdminService is the read-only reporting view over every account.
type AdminService struct {
	users repo.Users
	trx   repo.Transactions
	audit repo.AuditLogs
}

func NewAdminService(u repo.Users, t repo.Transactions, a repo.AuditLogs) *AdminService {
	return &AdminService{users: u, trx: t, audit: a}
}

func (s *AdminService) Users(ctx context.Context, nameContains string, limit, offset int) ([]models.User, error) {
	out, err := s.users.List(ctx, repo.UserFilter{NameContains: nameContains, Limit: limit, Offset: offset})
	if err != nil {
		return nil, storageErr("services.Admin.Users", err)
	}
	return out, nil
}

// Transactions lists all transactions, most recent first. typ is optional
// and must be Deposit or Withdraw when set.
func (s *AdminService) Transactions(ctx context.Context, typ string, limit, offset int) ([]models.Transaction, error) {
	t := models.TransactionType(strings.TrimSpace(typ))
	if t != "" && !t.Valid() {
		return nil, rule(ErrValidation, "type must be Deposit or Withdraw")
	}
	out, err := s.trx.List(ctx, repo.TransactionFilter{Type: t, Limit: limit, Offset: offset})
	if err != nil {
		return nil, storageErr("services.Admin.Transactions", err)
	}
	return out, nil
}

func (s *AdminService) AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	out, err := s.audit.List(ctx, limit)
	if err != nil {
		return nil, storageErr("services.Admin.AuditLogs", err)
	}
	return out, nil
}
