package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsMaxAge       = "600"
)

// CORSMiddleware lets browser dashboards call the command API from the
// configured origins. Origins compare case-insensitively.
type CORSMiddleware struct {
	origins   map[string]struct{}
	anyOrigin bool
}

// NewCORSMiddleware builds the middleware. An entry of "*" admits every origin.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	m := &CORSMiddleware{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			m.anyOrigin = true
			continue
		}
		m.origins[strings.ToLower(origin)] = struct{}{}
	}
	return m
}

func (m *CORSMiddleware) admits(origin string) bool {
	if origin == "" {
		return false
	}
	if m.anyOrigin {
		return true
	}
	_, ok := m.origins[strings.ToLower(origin)]
	return ok
}

// Handler wraps next. Preflight requests are answered with 204 and never
// reach the router.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); m.admits(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", "*")
			h.Set("Access-Control-Expose-Headers", "X-Trace-ID")
			h.Set("Access-Control-Max-Age", corsMaxAge)
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
