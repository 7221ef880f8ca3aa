// Package config loads the command service configuration from .env files,
// an optional YAML file and the process environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `env:"COMMAND_MICROSERVICE_HOST" yaml:"host"`
	Port            int           `env:"COMMAND_MICROSERVICE_PORT" yaml:"port"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RedisConfig locates the response cache.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" yaml:"host"`
	Port     int    `env:"REDIS_PORT" yaml:"port"`
	DB       int    `env:"REDIS_DB" yaml:"db"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// CacheConfig selects the response store.
type CacheConfig struct {
	Driver      string        `env:"CACHE_DRIVER" yaml:"driver"`
	ResponseTTL time.Duration `env:"RESPONSE_TTL" yaml:"response_ttl"`
	// HealthProbeSchedule is a cron spec for the background cache probe.
	HealthProbeSchedule string `env:"HEALTH_PROBE_SCHEDULE" yaml:"health_probe_schedule"`
}

// GatewayConfig controls calls to the edge Gateway API.
type GatewayConfig struct {
	Timeout time.Duration `env:"GATEWAY_TIMEOUT" yaml:"timeout"`
}

// LoggingConfig mirrors logger.LoggingConfig.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
	Output string `env:"LOG_OUTPUT" yaml:"output"`
}

// RateLimitConfig enables per-client request limiting when RPS > 0.
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" yaml:"rps"`
	Burst int     `env:"RATE_LIMIT_BURST" yaml:"burst"`
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	SecretKey   string `env:"SECRET_KEY" yaml:"secret_key"`
	CloudAPIURL string `env:"CLOUD_API_URL" yaml:"cloud_api_url"`
	Timezone    string `env:"TIMEZONE" yaml:"timezone"`
	// AllowedOrigins is a comma separated list; "*" allows every origin.
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" yaml:"cors_allowed_origins"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
			DB:   0,
		},
		Cache: CacheConfig{
			Driver:              CacheDriverRedis,
			HealthProbeSchedule: "@every 30s",
		},
		Gateway: GatewayConfig{
			Timeout: 20 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		RateLimit: RateLimitConfig{
			Burst: 20,
		},
		Timezone:       "Chile/Continental",
		AllowedOrigins: "*",
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment. Later sources override earlier ones.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom builds a config from defaults, the YAML file at path (optional)
// and the current environment.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := checkEnvSyntax(); err != nil {
		return nil, err
	}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envdecode leaves a field at its default when a numeric value does not
// parse, so those variables are checked before decoding.
var (
	intEnv      = []string{"COMMAND_MICROSERVICE_PORT", "REDIS_PORT", "REDIS_DB", "RATE_LIMIT_BURST"}
	floatEnv    = []string{"RATE_LIMIT_RPS"}
	durationEnv = []string{
		"SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT",
		"SERVER_SHUTDOWN_TIMEOUT",
		"RESPONSE_TTL",
		"GATEWAY_TIMEOUT",
	}
)

func checkEnvSyntax() error {
	parse := func(names []string, fn func(string) error) error {
		for _, name := range names {
			raw := os.Getenv(name)
			if raw == "" {
				continue
			}
			if err := fn(raw); err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, raw, err)
			}
		}
		return nil
	}

	if err := parse(intEnv, func(v string) error {
		_, err := strconv.Atoi(v)
		return err
	}); err != nil {
		return err
	}
	if err := parse(floatEnv, func(v string) error {
		_, err := strconv.ParseFloat(v, 64)
		return err
	}); err != nil {
		return err
	}
	return parse(durationEnv, func(v string) error {
		_, err := time.ParseDuration(v)
		return err
	})
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid COMMAND_MICROSERVICE_PORT %d", c.Server.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid REDIS_PORT %d", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid REDIS_DB %d", c.Redis.DB)
	}
	switch c.Cache.Driver {
	case CacheDriverRedis, CacheDriverMemory:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.Cache.Driver)
	}
	if c.Cache.ResponseTTL < 0 {
		return fmt.Errorf("RESPONSE_TTL must not be negative")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	return splitAndTrimCSV(c.AllowedOrigins)
}

func splitAndTrimCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
