package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 64 << 10 // 64KB

// a single webhook is posted to serially, so the pool stays small
const (
	defaultMaxIdleConns        = 4
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	// Username overrides the display name of the webhook.
	Username string `json:"username,omitempty"`

	// AvatarURL overrides the display avatar. Omitted when empty.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Content is the message text.
	Content string `json:"content"`
}

// Response holds the result of a POST made by [Client].
type Response struct {
	// StatusCode is the HTTP status code (e.g., 204, 429, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Status is the HTTP status line text, e.g. "429 Too Many Requests".
	Status string

	// Body contains the response body, limited to 64KB.
	Body []byte

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport-level error.
	// nil means a response was received, whatever its status.
	Error error
}

// OK reports whether the webhook accepted the payload with a 2xx status.
func (r Response) OK() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is an HTTP client wrapper for posting webhook payloads.
//
// Client uses per-request timeouts via context rather than a global timeout.
// Response bodies are limited to 64KB; webhook replies are small.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new webhook [Client] that identifies itself with
// userAgent. Timeouts are applied per request in [Client.Post].
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		userAgent: userAgent,
	}
}

// Post sends payload as JSON to url and returns a structured [Response].
//
// The timeout is applied via context cancellation; a non-positive timeout
// leaves the deadline of ctx alone. Post always returns a Response; errors
// are captured in the Error field rather than returned separately.
func (c *Client) Post(ctx context.Context, url string, payload Payload, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to encode payload: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit; draining lets the connection be reused
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       respBody,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil Client. After Close, the client
// remains usable but new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
