package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirot/functions/internal/config"
	"github.com/hadirot/functions/internal/handler"
	"github.com/hadirot/functions/internal/logger"
	"github.com/hadirot/functions/internal/middleware"
)

func newRouter() http.Handler {
	log := logger.Nop()
	h := handler.New(&config.Config{}, log, handler.Deps{})
	return New(h, middleware.New(log))
}

func TestPreflight(t *testing.T) {
	r := newRouter()

	for _, path := range []string{"/functions/v1/delete-user", "/functions/v1/send-email"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://hadirot.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"), path)
		assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "authorization", path)
	}
}

func TestCORSOnActualRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/send-email", strings.NewReader(`{}`))
	req.Header.Set("Origin", "https://hadirot.com")
	rec := httptest.NewRecorder()

	newRouter().ServeHTTP(rec, req)

	// No sender is wired in this router.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"error":"Email service not configured"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/functions/v1/delete-user", nil)
	rec := httptest.NewRecorder()

	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}

func TestHealthRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	newRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()

	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
