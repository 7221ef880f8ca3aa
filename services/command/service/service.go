// Package commandservice relays cloud commands to edge Gateway APIs and
// caches the asynchronous sensor responses until they are retrieved.
package commandservice

import (
	"context"
	"errors"
	"time"

	"github.com/edgeiot/command_service/internal/cache"
	"github.com/edgeiot/command_service/internal/gateway"
	"github.com/edgeiot/command_service/internal/metrics"
	"github.com/edgeiot/command_service/pkg/logger"
	commonservice "github.com/edgeiot/command_service/services/common/service"
)

const (
	ServiceID   = "command"
	ServiceName = "Edge Command Service"
	Version     = "1.0.0"
)

// Gateway is the Gateway API surface used by the relay handlers.
type Gateway interface {
	PostJSON(ctx context.Context, baseURL, endpoint string, body any) (*gateway.Response, error)
}

// Service implements the command relay and the sensor response cache.
type Service struct {
	*commonservice.BaseService
	gateway Gateway
	cache   cache.Store
	stats   *commonservice.OperationStats
}

// Config configures the command service.
type Config struct {
	Logger   *logger.Logger
	Location *time.Location
	Gateway  Gateway
	Cache    cache.Store
	// HealthProbeSchedule is a cron spec for the background cache probe.
	// Empty disables the probe; /health still probes on demand.
	HealthProbeSchedule string
}

// New creates a new command service.
func New(cfg Config) (*Service, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("command service requires a gateway client")
	}
	if cfg.Cache == nil {
		return nil, errors.New("command service requires a response cache")
	}

	base := commonservice.NewBase(commonservice.BaseConfig{
		ID:       ServiceID,
		Name:     ServiceName,
		Version:  Version,
		Logger:   cfg.Logger,
		Location: cfg.Location,
	})

	s := &Service{
		BaseService: base,
		gateway:     cfg.Gateway,
		cache:       cfg.Cache,
		stats:       commonservice.NewOperationStats(),
	}

	base.WithHealthCheck(s.probeCache)
	base.WithStats(s.statistics)
	if cfg.HealthProbeSchedule != "" {
		if err := base.AddCronJob(cfg.HealthProbeSchedule, func(ctx context.Context) error {
			s.CheckHealth(ctx)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	base.RegisterStandardRoutes()
	s.registerRoutes()

	return s, nil
}

func (s *Service) probeCache(ctx context.Context) error {
	err := s.cache.Ping(ctx)
	metrics.SetCacheUp(err == nil)
	return err
}

func (s *Service) statistics() map[string]any {
	return map[string]any{
		"operations": s.stats.Export(),
	}
}
