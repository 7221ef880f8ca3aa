package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeiot/command_service/internal/cache"
	"github.com/edgeiot/command_service/internal/config"
	"github.com/edgeiot/command_service/internal/gateway"
	"github.com/edgeiot/command_service/internal/metrics"
	"github.com/edgeiot/command_service/internal/middleware"
	"github.com/edgeiot/command_service/pkg/logger"
	commandservice "github.com/edgeiot/command_service/services/command/service"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(logger.LoggingConfig{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cfg.Logging.Output,
			}).WithService(commandservice.ServiceID)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			lis, err := net.Listen("tcp", cfg.Server.Addr())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Addr(), err)
			}
			return Serve(ctx, cfg, log, lis)
		},
	}
}

// Serve runs the command service on lis until ctx is cancelled, then shuts
// down gracefully.
func Serve(ctx context.Context, cfg *config.Config, log *logger.Logger, lis net.Listener) error {
	store, err := cache.New(cfg)
	if err != nil {
		lis.Close()
		return fmt.Errorf("create response cache: %w", err)
	}
	defer store.Close()

	svc, err := commandservice.New(commandservice.Config{
		Logger:              log,
		Location:            cfg.Location(),
		Gateway:             gateway.NewClient(cfg.Gateway.Timeout),
		Cache:               store,
		HealthProbeSchedule: cfg.Cache.HealthProbeSchedule,
	})
	if err != nil {
		lis.Close()
		return fmt.Errorf("create command service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		lis.Close()
		return fmt.Errorf("start command service: %w", err)
	}
	defer func() {
		if err := svc.Stop(); err != nil {
			log.WithError(err).Warn("service stop")
		}
	}()

	server := &http.Server{
		Handler:      NewHandler(svc, cfg, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", lis.Addr().String()).Info("command service listening")
		if err := server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("command service stopped")
	return nil
}

// NewHandler assembles the router and middleware chain. Tracing runs
// outermost so every request, matched or not, is logged.
func NewHandler(svc *commandservice.Service, cfg *config.Config, log *logger.Logger) http.Handler {
	router := svc.Router()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.Use(middleware.MetricsMiddleware())

	var handler http.Handler = router
	handler = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log).Handler(handler)
	handler = middleware.NewCORSMiddleware(cfg.Origins()).Handler(handler)
	handler = middleware.NewTracingMiddleware(log).Handler(handler)
	return handler
}
