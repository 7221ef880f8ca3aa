package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	l := New(LoggingConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	_, ok := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "expected text formatter")

	l = New(LoggingConfig{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, ok = l.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "expected json formatter by default")
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))
	assert.Equal(t, "", GetTraceID(context.Background()))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}

func TestLogRequest_IncludesTraceAndService(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggingConfig{Level: "info", Format: "json"}).WithService("command-service")
	l.SetOutput(&buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	l.LogRequest(ctx, http.MethodPost, "/sensor/command/set/sensor-state", http.StatusBadGateway, 15*time.Millisecond)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "command-service", entry["service"])
	assert.Equal(t, "error", entry["level"])
	assert.EqualValues(t, http.StatusBadGateway, entry["status"])
}
