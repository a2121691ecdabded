package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/atm-backend/internal/services"
	"github.com/baharkarakas/atm-backend/internal/session"
)

const maxBodyBytes = 1 << 16

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Message is the body of a successful ATM action.
type Message struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// DecodeJSON reads a single JSON object from the request body and rejects
// unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

// Status maps a service or session error to its HTTP status and error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, services.ErrInvalidDenomination):
		return http.StatusBadRequest, "invalid_denomination"
	case errors.Is(err, services.ErrLimitExceeded):
		return http.StatusUnprocessableEntity, "limit_exceeded"
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, services.ErrAuthFailure):
		return http.StatusUnauthorized, "auth_failure"
	case errors.Is(err, session.ErrSessionBlocked):
		return http.StatusLocked, "session_blocked"
	case errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized, "not_logged_in"
	case errors.Is(err, session.ErrAlreadyLoggedIn):
		return http.StatusConflict, "already_logged_in"
	case errors.Is(err, services.ErrStorage):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// WriteServiceError renders err with the mapping of Status. Customer-facing
// rule messages pass through; internal failures are logged and hidden.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	msg := err.Error()
	switch {
	case errors.Is(err, session.ErrSessionBlocked):
		msg = "Card Blocked. Please contact bank."
	case errors.Is(err, session.ErrNotLoggedIn):
		msg = "Please log in first."
	case status >= http.StatusInternalServerError:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "code", code, "err", err)
		msg = "internal error"
	}
	WriteError(w, status, code, msg, nil)
}
