package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
)

func newTestMiddleware(cfg *config.Config, skip ...string) (*Middleware, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(cfg, zap.New(core), skip...), logs
}

func TestRequestID(t *testing.T) {
	m, _ := newTestMiddleware(&config.Config{})

	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestLogger_LevelByStatus(t *testing.T) {
	m, logs := newTestMiddleware(&config.Config{}, "/live")

	status := http.StatusOK
	h := m.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	for _, tc := range []struct {
		status int
		level  zapcore.Level
		msg    string
	}{
		{http.StatusOK, zapcore.InfoLevel, "Request completed"},
		{http.StatusSeeOther, zapcore.InfoLevel, "Redirection"},
		{http.StatusNotFound, zapcore.WarnLevel, "Client error"},
		{http.StatusInternalServerError, zapcore.ErrorLevel, "Server error"},
	} {
		status = tc.status
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recipe/a.jpg?x=1", nil))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, tc.level, entries[0].Level)
		assert.Equal(t, tc.msg, entries[0].Message)
		assert.Equal(t, "/recipe/a.jpg?x=1", entries[0].ContextMap()["path"])
		assert.EqualValues(t, tc.status, entries[0].ContextMap()["status"])
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Zero(t, logs.Len())
}

func TestRecovery(t *testing.T) {
	m, logs := newTestMiddleware(&config.Config{})

	h := m.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Environment: "production"},
		Storage: config.StorageConfig{Provider: "s3", PublicBaseURL: "https://cdn.example.com/"},
	}
	m, _ := newTestMiddleware(cfg)

	rec := httptest.NewRecorder()
	m.Security(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data: https://cdn.example.com;")
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
