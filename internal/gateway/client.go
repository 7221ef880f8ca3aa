// Package gateway talks to the Gateway API running on each edge gateway.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/edgeiot/command_service/internal/httputil"
)

// DefaultTimeout bounds every Gateway API call.
const DefaultTimeout = 20 * time.Second

// maxResponseBytes caps Gateway API response bodies.
const maxResponseBytes = 8 << 20

// ErrGatewayUnreachable is returned when no HTTP response was received.
var ErrGatewayUnreachable = errors.New("gateway unreachable")

// Response is a fully read Gateway API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON returns the body as a decoded JSON value, or the trimmed body text
// when it is not valid JSON.
func (r *Response) JSON() any {
	if len(r.Body) > 0 && json.Valid(r.Body) {
		return json.RawMessage(r.Body)
	}
	return strings.TrimSpace(string(r.Body))
}

// CommandUUIDs returns the "command_uuids" field of a JSON body, or nil when
// absent. The value is passed through as-is.
func (r *Response) CommandUUIDs() json.RawMessage {
	res := gjson.GetBytes(r.Body, "command_uuids")
	if !res.Exists() {
		return nil
	}
	return json.RawMessage(res.Raw)
}

// Client sends commands to Gateway APIs. The target base URL is supplied per
// call because every command names its own gateway.
type Client struct {
	http *httputil.Client
}

// NewClient creates a client. timeout <= 0 uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: httputil.NewClient(httputil.ClientConfig{Timeout: timeout})}
}

// PostJSON POSTs body as JSON to baseURL+endpoint.
func (c *Client) PostJSON(ctx context.Context, baseURL, endpoint string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, baseURL, endpoint, body)
}

// Get issues a GET to baseURL+endpoint.
func (c *Client) Get(ctx context.Context, baseURL, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodGet, baseURL, endpoint, nil)
}

func (c *Client) do(ctx context.Context, method, baseURL, endpoint string, body any) (*Response, error) {
	url := strings.TrimRight(baseURL, "/") + endpoint

	resp, err := c.http.Do(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrGatewayUnreachable, method, url, err)
	}
	defer resp.Body.Close()

	data, err := httputil.ReadAllStrict(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrGatewayUnreachable, url, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
