package server

import (
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultWriteRateLimitRequests = 60
	defaultWriteRateLimitWindow   = time.Minute
)

type rateLimitVisitor struct {
	limiter    *rate.Limiter
	lastSeenAt time.Time
}

// rateLimiter keeps one token bucket per key. A bucket holds up to limit
// tokens and refills at limit per window.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rateLimitVisitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		limit = defaultWriteRateLimitRequests
	}
	if window <= 0 {
		window = defaultWriteRateLimitWindow
	}
	return &rateLimiter{
		visitors: make(map[string]*rateLimitVisitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (l *rateLimiter) limitByIP(scope string) func(http.Handler) http.Handler {
	scope = strings.TrimSpace(scope)
	if l == nil || scope == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + normalizedClientIP(r)
			if allowed, retryAfter := l.allow(key); !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeErrorJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *rateLimiter) allow(key string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked(now)

	v, ok := l.visitors[key]
	if !ok {
		// A window shorter than limit nanoseconds would truncate to a zero
		// interval, which rate.Every turns into an unlimited bucket.
		interval := max(l.window/time.Duration(l.limit), time.Nanosecond)
		v = &rateLimitVisitor{limiter: rate.NewLimiter(rate.Every(interval), l.limit)}
		l.visitors[key] = v
	}
	v.lastSeenAt = now

	res := v.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, l.window
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// cleanupLocked drops visitors whose bucket has long since refilled.
func (l *rateLimiter) cleanupLocked(now time.Time) {
	staleAfter := l.window * 2
	for key, v := range l.visitors {
		if now.Sub(v.lastSeenAt) >= staleAfter {
			delete(l.visitors, key)
		}
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func normalizedClientIP(r *http.Request) string {
	if r == nil {
		return "unknown"
	}
	value := strings.TrimSpace(r.RemoteAddr)
	if value == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(value); err == nil {
		return addr.Addr().String()
	}
	if host, _, err := net.SplitHostPort(value); err == nil && strings.TrimSpace(host) != "" {
		return strings.TrimSpace(strings.Trim(host, "[]"))
	}
	value = strings.Trim(value, "[]")
	if addr, err := netip.ParseAddr(value); err == nil {
		return addr.String()
	}
	return value
}
