package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"

	"github.com/edgeiot/command_service/pkg/logger"
)

const healthCheckTimeout = 5 * time.Second

// Health states reported on /health.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// BaseConfig contains shared configuration for HTTP services.
type BaseConfig struct {
	ID       string
	Name     string
	Version  string
	Logger   *logger.Logger
	Location *time.Location
}

// BaseService carries the router, lifecycle and health state shared by
// services. Scheduled jobs run on a cron scheduler started by Start.
type BaseService struct {
	id      string
	name    string
	version string
	router  *mux.Router
	logger  *logger.Logger
	loc     *time.Location

	stopOnce sync.Once

	statsFn     func() map[string]any
	healthCheck func(context.Context) error

	scheduler *cron.Cron

	healthMu        sync.RWMutex
	healthy         bool
	lastHealthError string
	lastHealthCheck time.Time
	startTime       time.Time
}

// NewBase constructs a BaseService from shared config.
func NewBase(cfg BaseConfig) *BaseService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault(cfg.ID)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &BaseService{
		id:        cfg.ID,
		name:      cfg.Name,
		version:   cfg.Version,
		router:    mux.NewRouter(),
		logger:    log,
		loc:       loc,
		scheduler: cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		healthy:   true,
	}
}

// ID returns the service identifier.
func (b *BaseService) ID() string { return b.id }

// Name returns the human readable service name.
func (b *BaseService) Name() string { return b.name }

// Version returns the service version.
func (b *BaseService) Version() string { return b.version }

// Router returns the service router.
func (b *BaseService) Router() *mux.Router { return b.router }

// Logger returns the service logger.
func (b *BaseService) Logger() *logger.Logger { return b.logger }

// Location returns the time zone used for reported timestamps.
func (b *BaseService) Location() *time.Location { return b.loc }

// WithStats sets a statistics provider function for the /info endpoint.
func (b *BaseService) WithStats(fn func() map[string]any) *BaseService {
	b.statsFn = fn
	return b
}

// WithHealthCheck sets the dependency probe used by CheckHealth.
func (b *BaseService) WithHealthCheck(fn func(context.Context) error) *BaseService {
	b.healthCheck = fn
	return b
}

// AddCronJob schedules fn on a cron spec such as "@every 30s". Jobs run
// between Start and Stop.
func (b *BaseService) AddCronJob(spec string, fn func(context.Context) error) error {
	_, err := b.scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			b.logger.WithContext(ctx).WithError(err).Warn("scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}

// Start records the start time, runs one health check and starts the
// scheduler.
func (b *BaseService) Start(ctx context.Context) error {
	b.healthMu.Lock()
	if b.startTime.IsZero() {
		b.startTime = time.Now()
	}
	b.healthMu.Unlock()

	b.CheckHealth(ctx)
	b.scheduler.Start()
	return nil
}

// Stop halts the scheduler and waits for running jobs. It is idempotent.
func (b *BaseService) Stop() error {
	b.stopOnce.Do(func() {
		<-b.scheduler.Stop().Done()
	})
	return nil
}

// CheckHealth runs the health probe and caches its result.
func (b *BaseService) CheckHealth(ctx context.Context) bool {
	healthy := true
	var lastErr string
	if b.healthCheck != nil {
		probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := b.healthCheck(probeCtx)
		cancel()
		if err != nil {
			healthy = false
			lastErr = err.Error()
		}
	}

	b.healthMu.Lock()
	b.healthy = healthy
	b.lastHealthError = lastErr
	b.lastHealthCheck = time.Now()
	b.healthMu.Unlock()
	return healthy
}

// HealthStatus returns the status from the most recent health check.
func (b *BaseService) HealthStatus() string {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	if !b.healthy {
		return StatusDegraded
	}
	return StatusHealthy
}

// HealthDetails returns a map describing the most recent health state.
func (b *BaseService) HealthDetails() map[string]any {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()

	details := map[string]any{
		"dependencies_ok": b.healthy,
		"last_check":      "",
	}
	if !b.lastHealthCheck.IsZero() {
		details["last_check"] = b.lastHealthCheck.In(b.loc).Format(time.RFC3339)
	}
	if b.lastHealthError != "" {
		details["last_error"] = b.lastHealthError
	}
	details["uptime"] = b.uptimeLocked().String()
	return details
}

// Uptime returns the time since Start.
func (b *BaseService) Uptime() time.Duration {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.uptimeLocked()
}

func (b *BaseService) uptimeLocked() time.Duration {
	if b.startTime.IsZero() {
		return 0
	}
	return time.Since(b.startTime).Truncate(time.Second)
}
