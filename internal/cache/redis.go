package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps responses in Redis as plain string values.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. ttl <= 0 stores entries without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, commandUUID string, raw json.RawMessage) error {
	if err := s.client.Set(ctx, commandUUID, []byte(raw), s.ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

// Take implements Store. GET and DEL run in one MULTI/EXEC so concurrent
// retrievals cannot both observe the same entry.
func (s *RedisStore) Take(ctx context.Context, commandUUID string) (json.RawMessage, bool, error) {
	var get *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, commandUUID)
		pipe.Del(ctx, commandUUID)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", err)
	}

	data, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", err)
	}
	return json.RawMessage(data), true, nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
