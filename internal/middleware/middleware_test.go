package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baharkarakas/atm-backend/internal/auth"
	"github.com/baharkarakas/atm-backend/internal/session"
	"github.com/google/uuid"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestLimiterPerClient(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(2)
	l.now = func() time.Time { return now }

	if !l.allow("a") || !l.allow("a") {
		t.Fatal("burst should be allowed")
	}
	if l.allow("a") {
		t.Fatal("third request within the second should be limited")
	}
	if !l.allow("b") {
		t.Fatal("another client has its own bucket")
	}
	now = now.Add(500 * time.Millisecond)
	if !l.allow("a") {
		t.Fatal("half a second refills one token at 2 rps")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0)(noContent)
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("code=%d", rr.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name, key, header string
		want              int
	}{
		{"match", "s3cret", "s3cret", http.StatusNoContent},
		{"mismatch", "s3cret", "nope", http.StatusForbidden},
		{"missing", "s3cret", "", http.StatusForbidden},
		{"unconfigured", "", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("X-Admin-Key", tt.header)
			}
			rr := httptest.NewRecorder()
			RequireAdmin(tt.key)(noContent).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("code=%d want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(seen); err != nil || rr.Header().Get("X-Request-Id") != seen {
		t.Fatalf("minted id=%q header=%q", seen, rr.Header().Get("X-Request-Id"))
	}

	in := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", in)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != in {
		t.Fatalf("incoming id not propagated: %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "<script>" {
		t.Fatal("malformed id must be replaced")
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d", rr.Code)
	}
}

func TestSessionAuth(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "atm-test", time.Minute)
	sessions := session.NewManager()
	live := sessions.Create()
	m := NewSessionAuth(tm, sessions)

	var got *session.Session
	h := m.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFrom(r.Context())
	}))

	liveTok, _, _ := tm.Generate(live.ID())
	goneTok, _, _ := tm.Generate("no-such-session")
	otherTok, _, _ := auth.NewTokenManager("other", "atm-test", time.Minute).Generate(live.ID())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + liveTok, http.StatusOK},
		{"lowercase scheme", "bearer " + liveTok, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherTok, http.StatusUnauthorized},
		{"unknown session", "Bearer " + goneTok, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("code=%d want %d body=%s", rr.Code, tt.want, rr.Body)
			}
			if tt.want == http.StatusOK && got != live {
				t.Fatal("session not put in context")
			}
		})
	}
}
