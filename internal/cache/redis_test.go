package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, ttl)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_PutTake(t *testing.T) {
	store, mr := newTestRedis(t, 0)
	ctx := context.Background()

	payload := json.RawMessage(`{"metadata":{"command_uuid":"c-1"},"state":"active"}`)
	require.NoError(t, store.Put(ctx, "c-1", payload))

	stored, err := mr.Get("c-1")
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), stored)
	assert.Equal(t, time.Duration(0), mr.TTL("c-1"))

	raw, found, err := store.Take(ctx, "c-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, string(payload), string(raw))
	assert.False(t, mr.Exists("c-1"), "entry must be deleted after take")

	_, found, err = store.Take(ctx, "c-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_TakeMissing(t *testing.T) {
	store, _ := newTestRedis(t, 0)
	raw, found, err := store.Take(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, raw)
}

func TestRedisStore_PutOverwrites(t *testing.T) {
	store, _ := newTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c-1", json.RawMessage(`{"v":1}`)))
	require.NoError(t, store.Put(ctx, "c-1", json.RawMessage(`{"v":2}`)))

	raw, found, err := store.Take(ctx, "c-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(raw))
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c-1", json.RawMessage(`{}`)))
	assert.Equal(t, time.Minute, mr.TTL("c-1"))

	mr.FastForward(2 * time.Minute)
	_, found, err := store.Take(ctx, "c-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_ConcurrentTakeIsExclusive(t *testing.T) {
	store, _ := newTestRedis(t, 0)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "c-1", json.RawMessage(`{}`)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found, err := store.Take(ctx, "c-1")
			assert.NoError(t, err)
			if found {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, hits)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newTestRedis(t, 0)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	mr.Close()

	assert.ErrorIs(t, store.Ping(ctx), ErrUnavailable)
	assert.ErrorIs(t, store.Put(ctx, "c-1", json.RawMessage(`{}`)), ErrUnavailable)
	_, _, err := store.Take(ctx, "c-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
