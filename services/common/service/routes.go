// Package service provides common HTTP service infrastructure.
package service

import (
	"net/http"
	"time"

	"github.com/edgeiot/command_service/internal/httputil"
)

// =============================================================================
// Standard Response Types
// =============================================================================

// HealthResponse is the standard response for /health endpoint.
type HealthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// InfoResponse is the standard response for /info endpoint.
type InfoResponse struct {
	Status     string         `json:"status"`
	Service    string         `json:"service"`
	Version    string         `json:"version"`
	Timezone   string         `json:"timezone"`
	Timestamp  string         `json:"timestamp"`
	Uptime     string         `json:"uptime"`
	Host       *HostStats     `json:"host,omitempty"`
	Statistics map[string]any `json:"statistics,omitempty"`
}

// =============================================================================
// Standard Handlers
// =============================================================================

// HealthHandler returns the /health handler. A failing dependency probe
// answers 503 with status "degraded".
func HealthHandler(s *BaseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.CheckHealth(r.Context())
		resp := HealthResponse{
			Status:    s.HealthStatus(),
			Service:   s.Name(),
			Version:   s.Version(),
			Timestamp: time.Now().In(s.Location()).Format(time.RFC3339),
			Details:   s.HealthDetails(),
		}
		status := http.StatusOK
		if resp.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}

// InfoHandler returns the /info handler, including host statistics and the
// registered stats provider.
func InfoHandler(s *BaseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := InfoResponse{
			Status:    "active",
			Service:   s.Name(),
			Version:   s.Version(),
			Timezone:  s.Location().String(),
			Timestamp: time.Now().In(s.Location()).Format(time.RFC3339),
			Uptime:    s.Uptime().String(),
		}

		if host, err := CollectHostStats(r.Context()); err == nil {
			resp.Host = host
		} else {
			s.Logger().WithContext(r.Context()).WithError(err).Debug("host stats unavailable")
		}

		if s.statsFn != nil {
			resp.Statistics = s.statsFn()
		}

		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterStandardRoutes registers the standard /health and /info endpoints.
func (b *BaseService) RegisterStandardRoutes() {
	b.router.HandleFunc("/health", HealthHandler(b)).Methods(http.MethodGet)
	b.router.HandleFunc("/info", InfoHandler(b)).Methods(http.MethodGet)
}
