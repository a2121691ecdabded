package middleware

import (
	"context"

	"github.com/baharkarakas/atm-backend/internal/session"
)

type sessionKey struct{}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session put in place by SessionAuth.Auth.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok && s != nil
}
