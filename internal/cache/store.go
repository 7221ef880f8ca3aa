// Package cache stores sensor command responses until the cloud retrieves them.
//
// Entries are keyed by command UUID and hold the JSON encoding of the
// response. Reads are destructive: Take returns the entry and removes it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/edgeiot/command_service/internal/config"
)

// ErrUnavailable wraps backend failures.
var ErrUnavailable = errors.New("cache unavailable")

// Store is the response cache used by the command service.
type Store interface {
	// Put stores raw under commandUUID, replacing any previous entry.
	Put(ctx context.Context, commandUUID string, raw json.RawMessage) error
	// Take returns and deletes the entry. found is false when absent.
	Take(ctx context.Context, commandUUID string) (raw json.RawMessage, found bool, err error)
	Ping(ctx context.Context) error
	Close() error
}

// New builds the store selected by cfg.Cache.Driver.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		return NewMemoryStore(cfg.Cache.ResponseTTL), nil
	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Cache.ResponseTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// expiry returns the absolute expiry for ttl, or zero for no expiry.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
