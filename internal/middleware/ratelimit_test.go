package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTestLimiter(rps float64, burst int) (*RateLimiter, *fakeNow) {
	clock := &fakeNow{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rps, burst)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, clock := newTestLimiter(1, 2)

	assert.True(t, rl.Allow("acme:10.0.0.1"))
	assert.True(t, rl.Allow("acme:10.0.0.1"))
	assert.False(t, rl.Allow("acme:10.0.0.1"))
	// buckets are per key
	assert.True(t, rl.Allow("globex:10.0.0.1"))

	clock.t = clock.t.Add(time.Second)
	assert.True(t, rl.Allow("acme:10.0.0.1"))
	assert.False(t, rl.Allow("acme:10.0.0.1"))
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(1, 1)
	rl.Allow("old")
	clock.t = clock.t.Add(20 * time.Minute)
	rl.Allow("fresh")

	rl.Cleanup(10 * time.Minute)

	assert.NotContains(t, rl.visitors, "old")
	assert.Contains(t, rl.visitors, "fresh")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(0.5, 1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(path, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("/api/documents/analyze", "192.0.2.1:5000").Code)
	// same client, different source port
	limited := call("/api/documents/analyze", "192.0.2.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("/api/documents/analyze", "192.0.2.2:5000").Code)
	assert.Equal(t, http.StatusOK, call("/health", "192.0.2.1:5002").Code)
}
