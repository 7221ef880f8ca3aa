// Package middleware provides HTTP middleware for the command service
package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/edgeiot/command_service/internal/metrics"
)

// unmatchedRoute labels requests that no route matched, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			metrics.IncInFlight()
			defer metrics.DecInFlight()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			metrics.RecordHTTPRequest(r.Method, routeTemplate(r), wrapped.statusCode, time.Since(start))
		})
	}
}

// routeTemplate returns the matched mux path template for r.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return unmatchedRoute
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
