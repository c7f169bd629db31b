package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustion(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "empty bucket must reject until refill")
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("bkk-radio:10.0.0.1"))
	assert.False(t, rl.Allow("bkk-radio:10.0.0.1"))

	// a different station/IP pair has its own bucket
	assert.True(t, rl.Allow("chiang-mai:10.0.0.2"))
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(2, 1)(next)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/v1/bkk-radio/stats").Code)
	assert.Equal(t, http.StatusOK, get("/v1/bkk-radio/stats").Code)

	rec := get("/v1/bkk-radio/stats")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// health probes bypass the limiter
	assert.Equal(t, http.StatusOK, get("/health").Code)
}
