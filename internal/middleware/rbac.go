package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
)

// RequireAdmin lets a request through only when X-Admin-Key equals key.
// An empty key rejects everything.
func RequireAdmin(key string) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("X-Admin-Key"))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "admin key required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
