package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edgeiot/command_service/pkg/logger"
)

// =============================================================================
// Client Tests
// =============================================================================

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://localhost:8080/",
		Timeout: 10 * time.Second,
	})

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %s, want http://localhost:8080", client.baseURL)
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("timeout = %s, want 10s", client.httpClient.Timeout)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("default timeout = %s, want 30s", client.httpClient.Timeout)
	}
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/test" {
			t.Errorf("Path = %s, want /test", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})

	resp, err := client.Get(context.Background(), "/test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", r.Header.Get("Content-Type"))
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["key"] != "value" {
			t.Errorf("body[key] = %s, want value", body["key"])
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})

	resp, err := client.Post(context.Background(), "/test", map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
}

func TestClient_ForwardsTraceID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(TraceIDHeader); got != "trace-123" {
			t.Errorf("%s = %s, want trace-123", TraceIDHeader, got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	ctx := logger.WithTraceID(context.Background(), "trace-123")

	resp, err := client.Get(ctx, "/test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 20 * time.Millisecond})

	if _, err := client.Get(context.Background(), "/slow"); err == nil {
		t.Fatal("Get() should fail on timeout")
	}
}

func TestDecodeResponse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("http.Get() error = %v", err)
	}

	var result map[string]string
	if err := DecodeResponse(resp, &result); err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}

	if result["message"] != "hello" {
		t.Errorf("result[message] = %s, want hello", result["message"])
	}
}

func TestDecodeResponse_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad request"))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("http.Get() error = %v", err)
	}

	err = DecodeResponse(resp, nil)
	if err == nil {
		t.Fatal("DecodeResponse() should return error for 4xx status")
	}
	if !strings.Contains(err.Error(), "bad request") {
		t.Errorf("error = %v, want body text included", err)
	}
}

func TestReadAllStrict(t *testing.T) {
	if _, err := ReadAllStrict(strings.NewReader("12345"), 5); err != nil {
		t.Errorf("ReadAllStrict() at limit error = %v", err)
	}
	if _, err := ReadAllStrict(strings.NewReader("123456"), 5); err == nil {
		t.Error("ReadAllStrict() over limit should fail")
	}

	data, truncated, err := ReadAllWithLimit(strings.NewReader("123456"), 4)
	if err != nil || !truncated || string(data) != "1234" {
		t.Errorf("ReadAllWithLimit() = %q, %v, %v", data, truncated, err)
	}
}
