package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeiot/command_service/pkg/logger"
)

func newTestBase(t *testing.T) *BaseService {
	t.Helper()
	loc, err := time.LoadLocation("Chile/Continental")
	require.NoError(t, err)
	return NewBase(BaseConfig{
		ID:       "test",
		Name:     "Test Service",
		Version:  "0.0.1",
		Logger:   logger.NewDiscard(),
		Location: loc,
	})
}

func TestBaseService_Health(t *testing.T) {
	b := newTestBase(t)
	failing := true
	b.WithHealthCheck(func(context.Context) error {
		if failing {
			return errors.New("redis down")
		}
		return nil
	})
	b.RegisterStandardRoutes()

	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()

	rec := httptest.NewRecorder()
	b.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "redis down", resp.Details["last_error"])

	failing = false
	rec = httptest.NewRecorder()
	b.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusHealthy, b.HealthStatus())
}

func TestBaseService_Info(t *testing.T) {
	b := newTestBase(t)
	b.WithStats(func() map[string]any { return map[string]any{"relayed": 3} })
	b.RegisterStandardRoutes()

	rec := httptest.NewRecorder()
	b.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Test Service", resp.Service)
	assert.Equal(t, "Chile/Continental", resp.Timezone)
	assert.EqualValues(t, 3, resp.Statistics["relayed"])
}

func TestBaseService_CronJob(t *testing.T) {
	b := newTestBase(t)
	ran := make(chan struct{}, 1)
	require.NoError(t, b.AddCronJob("@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))
	require.NoError(t, b.Start(context.Background()))

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("cron job did not run")
	}

	require.NoError(t, b.Stop())
	require.NoError(t, b.Stop())
}

func TestBaseService_BadCronSpec(t *testing.T) {
	b := newTestBase(t)
	assert.Error(t, b.AddCronJob("not a spec", func(context.Context) error { return nil }))
}

func TestOperationStats(t *testing.T) {
	s := NewOperationStats()
	s.Record("relay", 5*time.Millisecond, true)
	s.Record("relay", 2*time.Second, false)
	s.Record("cache", time.Millisecond, true)

	snaps := s.Export()
	require.Len(t, snaps, 2)
	assert.Equal(t, "cache", snaps[0].Operation)

	relay := snaps[1]
	assert.EqualValues(t, 2, relay.Total)
	assert.EqualValues(t, 1, relay.Failed)
	assert.InDelta(t, 50.0, relay.SuccessRate, 0.001)
	assert.EqualValues(t, 1, relay.Latency["lt_10ms"])
	assert.EqualValues(t, 1, relay.Latency["gt_1s"])
}
