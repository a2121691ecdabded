package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
)

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// limiter keeps one token bucket per client address.
type limiter struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	buckets map[string]*tokenBucket
	now     func() time.Time
}

const maxTrackedClients = 10000

func newLimiter(rps int) *limiter {
	return &limiter{
		rate:    float64(rps),
		burst:   float64(rps),
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
	}
}

func (l *limiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	tb, ok := l.buckets[client]
	if !ok {
		if len(l.buckets) >= maxTrackedClients {
			// drop everything rather than grow without bound
			l.buckets = make(map[string]*tokenBucket)
		}
		tb = &tokenBucket{tokens: l.burst, last: now}
		l.buckets[client] = tb
	}
	if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
		tb.tokens += elapsed * l.rate
		if tb.tokens > l.burst {
			tb.tokens = l.burst
		}
		tb.last = now
	}
	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit allows rps requests per second per client; rps <= 0 disables it.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newLimiter(rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientKey(r)) {
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
