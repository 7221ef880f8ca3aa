package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeiot/command_service/internal/httputil"
	"github.com/edgeiot/command_service/pkg/logger"
)

// =============================================================================
// CORS
// =============================================================================

func TestCORS_AllowAll(t *testing.T) {
	h := NewCORSMiddleware([]string{"*"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := NewCORSMiddleware([]string{"http://a.local"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/gateway/command/get/available-sensors", nil)
	req.Header.Set("Origin", "http://a.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_OriginCaseInsensitive(t *testing.T) {
	h := NewCORSMiddleware([]string{"http://Dashboard.Local"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	h := NewCORSMiddleware([]string{"http://a.local"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// =============================================================================
// Tracing
// =============================================================================

func TestTracing_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := NewTracingMiddleware(logger.NewDiscard()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(httputil.TraceIDHeader))
}

func TestTracing_KeepsIncomingTraceID(t *testing.T) {
	var seen string
	h := NewTracingMiddleware(logger.NewDiscard()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(httputil.TraceIDHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc", seen)
}

// =============================================================================
// Rate limiting
// =============================================================================

func TestRateLimiter_NilAllowsAll(t *testing.T) {
	rl := NewRateLimiter(0, 0, logger.NewDiscard())
	assert.Nil(t, rl)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.NewDiscard())
	fixed := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return fixed }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	fixed = fixed.Add(time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_EvictsIdle(t *testing.T) {
	rl := NewRateLimiter(100, 100, logger.NewDiscard())
	start := time.Unix(1700000000, 0)
	current := start
	rl.now = func() time.Time { return current }

	rl.Allow("idle")
	current = start.Add(time.Hour)
	for i := 0; i < sweepEvery; i++ {
		rl.Allow("busy")
	}

	rl.mu.Lock()
	_, ok := rl.byKey["idle"]
	rl.mu.Unlock()
	assert.False(t, ok)
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewDiscard())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"detail":"rate limit exceeded"}`, second.Body.String())
}

// =============================================================================
// Metrics
// =============================================================================

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	var template string
	router := mux.NewRouter()
	router.Use(MetricsMiddleware())
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		template = routeTemplate(r)
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "/items/{id}", template)
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
