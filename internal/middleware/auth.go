package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
	"github.com/baharkarakas/atm-backend/internal/auth"
	"github.com/baharkarakas/atm-backend/internal/session"
)

// SessionAuth resolves the bearer token of a request to a live ATM session.
type SessionAuth struct {
	TM       *auth.TokenManager
	Sessions *session.Manager
}

func NewSessionAuth(tm *auth.TokenManager, sessions *session.Manager) *SessionAuth {
	return &SessionAuth{TM: tm, Sessions: sessions}
}

// Auth expects "Authorization: Bearer <JWT>" carrying the session id.
func (m *SessionAuth) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, err := m.TM.Parse(token)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid session token", nil)
			return
		}
		sess, err := m.Sessions.Get(claims.SessionID)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "session_expired", "session expired, start a new one", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}
