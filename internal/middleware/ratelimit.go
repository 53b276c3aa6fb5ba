package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter keeps a token bucket per client key (usually IP).
type Limiter struct {
	limit rate.Limit
	burst int

	mu sync.Mutex
	m  map[string]*rate.Limiter
}

// New returns a limiter allowing perSec events with the given burst per key.
// perSec <= 0 disables limiting (always allow).
func New(perSec float64, burst int) *Limiter {
	return &Limiter{
		limit: rate.Limit(perSec),
		burst: burst,
		m:     make(map[string]*rate.Limiter),
	}
}

// Allow reports whether an event for the given key is allowed right now.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	lim := l.m[key]
	if lim == nil {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.m[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// Middleware wraps an http.Handler with this limiter.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(KeyFromRequest(r)) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte("rate limit"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AllowWS checks allowance for a WebSocket upgrade request (use before Upgrader.Upgrade).
func (l *Limiter) AllowWS(r *http.Request) bool {
	return l.Allow(KeyFromRequest(r))
}

// KeyFromRequest extracts a best-effort client key from the request.
// Prefers the first X-Forwarded-For entry (if present), else RemoteAddr host.
func KeyFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
