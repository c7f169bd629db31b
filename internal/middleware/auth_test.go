package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedHandler(t *testing.T, keys map[string]string) http.Handler {
	t.Helper()
	return APIKeyAuth(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetStationFromContext(r.Context())))
	}))
}

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]string{"bkk-radio": "secret-key-1"}
	h := authedHandler(t, keys)

	t.Run("valid bearer key resolves station", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/bkk-radio/stats", nil)
		req.Header.Set("Authorization", "Bearer secret-key-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bkk-radio", w.Body.String())
	})

	t.Run("bare key also accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/bkk-radio/stats", nil)
		req.Header.Set("Authorization", "secret-key-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/bkk-radio/stats", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/bkk-radio/stats", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health bypasses auth", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
