package services

import (
	"context"
	"time"

	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/baharkarakas/atm-backend/internal/session"
)

type BalanceService struct{ r repo.Users }

func NewBalanceService(r repo.Users) *BalanceService { return &BalanceService{r: r} }

// Check reads the stored balance of the logged-in user. It never writes.
func (s *BalanceService) Check(ctx context.Context, sess *session.Session) (models.Balance, error) {
	u, err := sess.CurrentUser()
	if err != nil {
		return models.Balance{}, err
	}
	cur, err := s.r.GetByID(ctx, u.ID)
	if err != nil {
		return models.Balance{}, storageErr("services.Balance.Check", err)
	}
	return models.Balance{UserID: cur.ID, Amount: cur.Balance, CheckedAt: time.Now()}, nil
}
