package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(cfg RateLimitConfig) http.Handler {
	return RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(t *testing.T, h http.Handler, remoteAddr string, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if mod != nil {
		mod(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUpToCapacity(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Max: 5, Window: time.Minute})

	for i := range 5 {
		w := hit(t, h, "192.168.1.1:12345", nil)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_DeniesWhenExhausted(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Max: 2, Window: time.Minute})

	for range 2 {
		require.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:9999", nil).Code)
	}

	w := hit(t, h, "10.0.0.1:9999", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(429), body["code"])
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimit_BucketsAreIndependent(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Max: 1, Window: time.Minute})

	assert.Equal(t, http.StatusOK, hit(t, h, "10.0.0.1:1234", nil).Code)
	assert.Equal(t, http.StatusOK, hit(t, h, "10.0.0.2:1234", nil).Code)
	// Ports differ but the bucket key is the host only.
	assert.Equal(t, http.StatusTooManyRequests, hit(t, h, "10.0.0.1:5678", nil).Code)
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	h := limitedHandler(RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-API-Key")
		},
	})

	byKey := func(key string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("X-API-Key", key) }
	}

	assert.Equal(t, http.StatusOK, hit(t, h, "1.1.1.1:1", byKey("key-a")).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(t, h, "2.2.2.2:2", byKey("key-a")).Code)
	assert.Equal(t, http.StatusOK, hit(t, h, "1.1.1.1:1", byKey("key-b")).Code)
}

func TestRateLimit_TrustsForwardedFor(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Max: 1, Window: time.Minute})

	forwarded := func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.50, 70.41.3.18")
	}

	assert.Equal(t, http.StatusOK, hit(t, h, "192.168.1.1:4444", forwarded).Code)
	// Different proxy hop, same originating client.
	assert.Equal(t, http.StatusTooManyRequests, hit(t, h, "192.168.1.2:5555", forwarded).Code)
}

func TestRateLimit_ZeroMaxDisablesLimiting(t *testing.T) {
	h := limitedHandler(RateLimitConfig{Max: 0, Window: time.Minute})

	for range 20 {
		w := hit(t, h, "10.0.0.1:9999", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	now := time.Now()

	_, _, ok := l.take("c", now)
	require.True(t, ok)
	_, _, ok = l.take("c", now)
	require.True(t, ok)

	_, retryIn, ok := l.take("c", now)
	require.False(t, ok)
	assert.InDelta(t, (30 * time.Second).Seconds(), retryIn.Seconds(), 1)

	// Half a window refills one token.
	_, _, ok = l.take("c", now.Add(30*time.Second))
	assert.True(t, ok)
}

func TestLimiter_RefillCapsAtMax(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	now := time.Now()

	_, _, ok := l.take("c", now)
	require.True(t, ok)

	// A long idle period must not bank more than Max tokens.
	remaining, _, ok := l.take("c", now.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	now := time.Now()

	l.take("stale", now)
	l.take("fresh", now.Add(30*time.Second))

	l.sweep(now.Add(65 * time.Second))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.buckets, "stale")
	assert.Contains(t, l.buckets, "fresh")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:4444"
	assert.Equal(t, "192.168.1.1", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.50, 70.41.3.18")
	assert.Equal(t, "203.0.113.50", clientIP(req))
}
