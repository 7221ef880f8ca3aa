// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/edgeiot/command_service/internal/cache"
)

// =============================================================================
// Gateway API
// =============================================================================

// RecordedCall is one request received by a MockGateway.
type RecordedCall struct {
	Method string
	Path   string
	Body   map[string]any
}

// MockGateway is an httptest Gateway API that records every call and
// answers with a configurable status and body.
type MockGateway struct {
	Server *httptest.Server

	mu       sync.Mutex
	calls    []RecordedCall
	status   int
	response string
}

// NewMockGateway starts a mock gateway closed by t.Cleanup.
func NewMockGateway(t testing.TB, status int, response string) *MockGateway {
	t.Helper()
	g := &MockGateway{status: status, response: response}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Server.Close)
	return g
}

func (g *MockGateway) serve(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	g.mu.Lock()
	g.calls = append(g.calls, RecordedCall{Method: r.Method, Path: r.URL.Path, Body: body})
	status, response := g.status, g.response
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(response))
}

// URL returns the gateway base URL.
func (g *MockGateway) URL() string { return g.Server.URL }

// Reply changes the canned reply.
func (g *MockGateway) Reply(status int, response string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status, g.response = status, response
}

// Calls returns a copy of the recorded calls.
func (g *MockGateway) Calls() []RecordedCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]RecordedCall(nil), g.calls...)
}

// LastCall returns the most recent call, or the zero value.
func (g *MockGateway) LastCall() RecordedCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 {
		return RecordedCall{}
	}
	return g.calls[len(g.calls)-1]
}

// =============================================================================
// Response Cache
// =============================================================================

// FailingStore is a cache.Store whose every operation fails with
// cache.ErrUnavailable.
type FailingStore struct{}

var _ cache.Store = FailingStore{}

func (FailingStore) Put(context.Context, string, json.RawMessage) error {
	return cache.ErrUnavailable
}

func (FailingStore) Take(context.Context, string) (json.RawMessage, bool, error) {
	return nil, false, cache.ErrUnavailable
}

func (FailingStore) Ping(context.Context) error { return cache.ErrUnavailable }

func (FailingStore) Close() error { return nil }
