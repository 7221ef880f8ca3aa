// Package logger provides the structured logger shared by the command service.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// LoggingConfig configures the logger output.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	Output string // stdout, stderr or a file path
}

// Logger wraps logrus.Logger with request/trace helpers.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a logger from config. Unknown levels fall back to info.
func New(cfg LoggingConfig) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	l.SetOutput(openOutput(cfg.Output))
	return &Logger{Logger: l}
}

// NewDefault returns an info-level JSON logger on stdout.
func NewDefault(service string) *Logger {
	l := New(LoggingConfig{Level: "info", Format: "json"})
	l.service = service
	return l
}

// NewDiscard returns a logger that drops everything. Used by tests.
func NewDiscard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// WithService tags every entry with the service name.
func (l *Logger) WithService(service string) *Logger {
	return &Logger{Logger: l.Logger, service: service}
}

func (l *Logger) base() *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if l.service != "" {
		entry = entry.WithField("service", l.service)
	}
	return entry
}

// WithContext returns an entry carrying the trace ID found in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.base()
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	return entry
}

// LogRequest logs a completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})

	switch {
	case status >= 500:
		entry.Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request completed")
	}
}

// LogSecurityEvent logs events such as rate limit rejections.
func (l *Logger) LogSecurityEvent(ctx context.Context, event string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(logrus.Fields(fields)).WithField("event", event).Warn("security event")
}

// NewTraceID generates a new trace identifier.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

func openOutput(output string) io.Writer {
	switch strings.TrimSpace(output) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return os.Stdout
		}
		return f
	}
}
