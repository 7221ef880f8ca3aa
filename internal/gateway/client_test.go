package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"command_uuids":["u-1","u-2"]}`))
	}))
	defer server.Close()

	client := NewClient(time.Second)
	resp, err := client.PostJSON(context.Background(), server.URL+"/", "/sensor/command/get/sensor-state",
		map[string]any{"target": map[string]string{"url": server.URL}})
	require.NoError(t, err)

	assert.Equal(t, "/sensor/command/get/sensor-state", gotPath)
	assert.Contains(t, gotBody, "target")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.JSONEq(t, `["u-1","u-2"]`, string(resp.CommandUUIDs()))
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	resp, err := NewClient(0).Get(context.Background(), server.URL, "/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(time.Second).PostJSON(context.Background(), url, "/gateway/command/get/available-sensors", map[string]any{})
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestResponse_JSON(t *testing.T) {
	r := &Response{Body: []byte(`{"error":"busy"}`)}
	raw, ok := r.JSON().(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"error":"busy"}`, string(raw))

	r = &Response{Body: []byte("  Internal Server Error\n")}
	assert.Equal(t, "Internal Server Error", r.JSON())

	r = &Response{}
	assert.Equal(t, "", r.JSON())
}

func TestResponse_CommandUUIDsMissing(t *testing.T) {
	assert.Nil(t, (&Response{Body: []byte(`{"message":"ok"}`)}).CommandUUIDs())
	assert.Nil(t, (&Response{Body: []byte(`not json`)}).CommandUUIDs())
}
