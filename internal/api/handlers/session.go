package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
	"github.com/baharkarakas/atm-backend/internal/auth"
	"github.com/baharkarakas/atm-backend/internal/middleware"
	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/baharkarakas/atm-backend/internal/services"
	"github.com/baharkarakas/atm-backend/internal/session"
)

type SessionHandler struct {
	TM       *auth.TokenManager
	Sessions *session.Manager
	Accounts *services.AccountService
}

func NewSessionHandler(tm *auth.TokenManager, sessions *session.Manager, accounts *services.AccountService) *SessionHandler {
	return &SessionHandler{TM: tm, Sessions: sessions, Accounts: accounts}
}

type sessionResp struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	SessionID string        `json:"session_id"`
	State     session.State `json:"state"`
}

// Create starts a fresh session at the logged-out state and returns its token.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	tok, exp, err := h.TM.Generate(s.ID())
	if err != nil {
		h.Sessions.Delete(s.ID())
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sessionResp{
		Token:     tok,
		ExpiresAt: exp,
		SessionID: s.ID(),
		State:     session.LoggedOut,
	})
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	httpx.WriteJSON(w, http.StatusOK, s.Snapshot())
}

type credentialsReq struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type userResp struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

type loginFailure struct {
	AttemptsLeft int    `json:"attempts_left"`
	Blocked      bool   `json:"blocked"`
	Warning      string `json:"warning,omitempty"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())

	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}

	// blank credentials are an attempt like any other mismatch
	res, err := h.Accounts.Login(r.Context(), s, req.Name, req.PIN)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, userResp{
			Message: fmt.Sprintf("Welcome %s!", res.User.Name),
			User:    res.User,
		})
	case errors.Is(err, services.ErrAuthFailure):
		details := loginFailure{AttemptsLeft: res.AttemptsLeft, Blocked: res.Blocked}
		if res.Blocked {
			details.Warning = "Card Blocked. Please contact bank."
		}
		httpx.WriteError(w, http.StatusUnauthorized, "auth_failure",
			fmt.Sprintf("Invalid credentials. %d attempts left.", res.AttemptsLeft), details)
	default:
		httpx.WriteServiceError(w, r, err)
	}
}

// Exit logs out and clears failed attempts, including a blocked card.
func (h *SessionHandler) Exit(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	s.Exit()
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Thank you for banking with us!"})
}
