// Package owncast talks to an Owncast server's public and integration APIs.
package owncast

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/helixml/vodcast/domain/live"
)

// Owncast API paths.
const (
	StatusPath = "/api/status"
	ChatPath   = "/api/chat"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

// Client implements live.Upstream against an Owncast server.
type Client struct {
	baseURL    string
	adminToken string
	transport  http.RoundTripper
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a functional option for Client.
type Option func(*Client)

// WithAdminToken sets the access token sent with chat messages.
func WithAdminToken(token string) Option {
	return func(c *Client) { c.adminToken = token }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport sets the underlying round tripper (for testing or proxies).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client for the Owncast server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = &http.Client{
		Timeout:   c.timeout,
		Transport: NewBearerTransport(c.adminToken, c.transport, ChatPath),
	}
	return c
}

var _ live.Upstream = (*Client)(nil)

// BaseURL returns the Owncast base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// statusResponse is the subset of GET /api/status that is relayed.
type statusResponse struct {
	Online          bool       `json:"online"`
	ViewerCount     int        `json:"viewerCount"`
	LastConnectTime *time.Time `json:"lastConnectTime"`
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Body        string `json:"body"`
	DisplayName string `json:"displayName"`
}

// Status fetches the broadcast status.
func (c *Client) Status(ctx context.Context) (live.Status, error) {
	resp, body, err := c.do(ctx, "status", http.MethodGet, StatusPath, nil)
	if err != nil {
		return live.Status{}, err
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return live.Status{}, NewUpstreamError("status", resp.StatusCode, "failed to decode response", err)
	}

	return live.NewStatus(status.Online, status.ViewerCount, status.LastConnectTime), nil
}

// SendChat relays msg to the broadcast chat. It reports whether the upstream
// answered with 200 OK; other 2xx answers are accepted but not reported as
// sent.
func (c *Client) SendChat(ctx context.Context, msg live.ChatMessage) (bool, error) {
	payload, err := json.Marshal(chatRequest{
		Body:        msg.Body(),
		DisplayName: msg.DisplayName(),
	})
	if err != nil {
		return false, NewUpstreamError("chat", 0, "failed to marshal request", err)
	}

	resp, _, err := c.do(ctx, "chat", http.MethodPost, ChatPath, payload)
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusOK, nil
}

// do performs a request and returns the response with its body read. Non-2xx
// responses are reported as errors.
func (c *Client) do(ctx context.Context, operation, method, path string, payload []byte) (*http.Response, []byte, error) {
	if c.baseURL == "" {
		return nil, nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, NewUpstreamError(operation, 0, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, NewUpstreamError(operation, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, NewUpstreamError(operation, resp.StatusCode, "failed to read response", err)
	}

	c.logger.DebugContext(ctx, "owncast call",
		"operation", operation,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, NewUpstreamError(operation, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}
	return resp, body, nil
}
