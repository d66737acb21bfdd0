package httpmiddleware

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client token bucket limiter.
type RateLimitConfig struct {
	// Max is the bucket capacity and the number of requests refilled per Window.
	Max int
	// Window is the period over which a full bucket is replenished.
	Window time.Duration
	// KeyFunc derives the bucket key from a request. Defaults to client IP.
	KeyFunc func(*http.Request) string
}

// bucket holds the remaining tokens for one client. Tokens refill
// continuously at Max/Window and cap at Max.
type bucket struct {
	tokens   float64
	refilled time.Time
}

type limiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiter{cfg: cfg, buckets: make(map[string]*bucket)}
}

// take attempts to spend one token for key. It reports the tokens left after
// the attempt and, when denied, how long until the next token arrives.
func (l *limiter) take(key string, now time.Time) (remaining int, retryIn time.Duration, ok bool) {
	perToken := l.cfg.Window / time.Duration(l.cfg.Max)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, found := l.buckets[key]
	if !found {
		b = &bucket{tokens: float64(l.cfg.Max), refilled: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.refilled).Seconds() / l.cfg.Window.Seconds() * float64(l.cfg.Max)
	if b.tokens > float64(l.cfg.Max) {
		b.tokens = float64(l.cfg.Max)
	}
	b.refilled = now

	if b.tokens < 1 {
		deficit := 1 - b.tokens
		return 0, time.Duration(deficit * float64(perToken)), false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

// sweep drops buckets that have been idle long enough to refill completely.
func (l *limiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.refilled) >= l.cfg.Window {
			delete(l.buckets, key)
		}
	}
}

// noLimit passes requests through untouched.
func noLimit(next http.Handler) http.Handler { return next }

// RateLimit returns a middleware enforcing a per-key token bucket. Exceeding
// the limit yields 429 with the standard error envelope; every response
// carries X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset.
// A non-positive Max disables limiting entirely.
//
// Stale buckets are never evicted; prefer RateLimitWithCleanup on servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Max <= 0 {
		return noLimit
	}
	return newLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that sweeps
// idle buckets every Window. The goroutine exits when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.Max <= 0 {
		return noLimit
	}
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.sweep(now)
			}
		}
	}()
	return l.middleware()
}

func (l *limiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			remaining, retryIn, ok := l.take(l.cfg.KeyFunc(r), now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(retryIn).Unix(), 10))

			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryIn.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller's address, trusting X-Forwarded-For and
// X-Real-IP set by the fronting proxy before falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the originating client.
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
