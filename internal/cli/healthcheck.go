package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeiot/command_service/internal/config"
	"github.com/edgeiot/command_service/internal/httputil"
	commonservice "github.com/edgeiot/command_service/services/common/service"
)

// NewHealthcheckCommand creates the healthcheck command used by the
// container HEALTHCHECK. It exits non-zero unless /health answers 2xx.
func NewHealthcheckCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /health on the local server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			baseURL := probeBaseURL(cfg.Server)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			health, err := CheckHealth(ctx, baseURL)
			if err != nil {
				return err
			}
			Success(cmd.OutOrStdout(), fmt.Sprintf("%s %s", health.Service, health.Status))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}

// probeBaseURL returns the URL the local server answers on. Wildcard binds
// are probed over loopback.
func probeBaseURL(server config.ServerConfig) string {
	host := server.Host
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::", "[::]":
		host = "::1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(server.Port))
}

// CheckHealth GETs baseURL/health and decodes the reply.
func CheckHealth(ctx context.Context, baseURL string) (*commonservice.HealthResponse, error) {
	client := httputil.NewClient(httputil.ClientConfig{BaseURL: baseURL})
	resp, err := client.Get(ctx, "/health")
	if err != nil {
		return nil, fmt.Errorf("health probe: %w", err)
	}

	var health commonservice.HealthResponse
	if err := httputil.DecodeResponse(resp, &health); err != nil {
		return nil, fmt.Errorf("health probe: %w", err)
	}
	return &health, nil
}
