package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/baharkarakas/atm-backend/internal/auth"
	"github.com/baharkarakas/atm-backend/internal/events"
	"github.com/baharkarakas/atm-backend/internal/metrics"
	"github.com/baharkarakas/atm-backend/internal/models"
	repo "github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/baharkarakas/atm-backend/internal/session"
	"github.com/shopspring/decimal"
)

// InitialBalance is credited to every new account.
var InitialBalance = decimal.NewFromInt(1000)

type AccountService struct {
	users repo.Users
	pins  auth.PINVerifier
	audit *Auditor
	log   *slog.Logger
}

func NewAccountService(users repo.Users, pins auth.PINVerifier, audit *Auditor, log *slog.Logger) *AccountService {
	return &AccountService{users: users, pins: pins, audit: audit, log: log}
}

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// Register creates an account with the initial balance. Names are not
// unique; the same name may be registered any number of times.
func (s *AccountService) Register(ctx context.Context, name, pin string) (models.User, error) {
	if !ValidPIN(pin) {
		return models.User{}, rule(ErrValidation, "PIN must be 4 digits")
	}
	// stored exactly as given; login matches the same bytes
	if strings.TrimSpace(name) == "" {
		return models.User{}, rule(ErrValidation, "name is required")
	}

	digest, err := s.pins.Digest(pin)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.users.Create(ctx, name, digest, InitialBalance)
	if err != nil {
		return models.User{}, storageErr("services.Account.Register", err)
	}
	metrics.RegistrationsTotal.Inc()
	s.log.Info("account registered", "user_id", u.ID)

	s.audit.Record(models.AuditLog{
		EntityType: models.AuditEntityUser,
		EntityID:   entityID(strconv.FormatInt(u.ID, 10)),
		Action:     "user.registered",
		Details:    map[string]any{"name": u.Name, "balance": u.Balance.String()},
	}, events.KeyRegistered, events.AccountEvent{UserID: u.ID, Name: u.Name, Timestamp: u.CreatedAt})
	return u, nil
}

// Authenticate returns the first account, by id, whose name matches exactly
// and whose PIN verifies.
func (s *AccountService) Authenticate(ctx context.Context, name, pin string) (models.User, error) {
	candidates, err := s.users.ListByName(ctx, name)
	if err != nil {
		return models.User{}, storageErr("services.Account.Authenticate", err)
	}
	for _, u := range candidates {
		if s.pins.Verify(pin, u.PIN) == nil {
			return u, nil
		}
	}
	return models.User{}, ErrAuthFailure
}

// Login runs one attempt on sess. The error is ErrAuthFailure on a
// mismatch (check res.Blocked for the third one), session.ErrSessionBlocked
// once blocked and session.ErrAlreadyLoggedIn if a user is already in.
func (s *AccountService) Login(ctx context.Context, sess *session.Session, name, pin string) (session.LoginResult, error) {
	res, err := sess.Login(func() (models.User, error) {
		return s.Authenticate(ctx, name, pin)
	})

	switch {
	case err == nil:
		metrics.LoginsTotal.WithLabelValues("success").Inc()
		s.log.Info("login", "session_id", sess.ID(), "user_id", res.User.ID)
	case errors.Is(err, ErrAuthFailure):
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Info("login failed", "session_id", sess.ID(), "attempts_left", res.AttemptsLeft)
		if res.Blocked {
			s.log.Warn("session blocked", "session_id", sess.ID())
			s.audit.Record(models.AuditLog{
				EntityType: models.AuditEntitySession,
				EntityID:   entityID(sess.ID()),
				Action:     "session.blocked",
				Details:    map[string]any{"attempts": session.MaxAttempts},
			}, events.KeySessionBlocked, events.SessionEvent{SessionID: sess.ID(), Attempts: session.MaxAttempts, Timestamp: time.Now()})
		}
	case errors.Is(err, session.ErrSessionBlocked):
		metrics.LoginsTotal.WithLabelValues("blocked").Inc()
	case errors.Is(err, session.ErrAlreadyLoggedIn):
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.log.Error("login", "session_id", sess.ID(), "err", err)
	}
	return res, err
}
