// Package client provides an HTTP client for a running warden control API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to the warden daemon's control API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // Optional logger for client operations
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8080/api",
		Timeout: 10 * time.Second,
	}
}

// New creates a new warden API client.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8080/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// IsReachable checks if the daemon is running and reachable.
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("daemon unreachable", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Start asks the supervisor to spawn the daemon.
func (c *Client) Start(ctx context.Context) (bool, error) {
	return c.postOp(ctx, "/start")
}

// Stop requests a graceful shutdown.
func (c *Client) Stop(ctx context.Context) (bool, error) {
	return c.postOp(ctx, "/stop")
}

// ForceStop kills the daemon unconditionally.
func (c *Client) ForceStop(ctx context.Context) (bool, error) {
	return c.postOp(ctx, "/force-stop")
}

// ManagedStop begins a graceful-then-forceful shutdown session.
func (c *Client) ManagedStop(ctx context.Context) (bool, error) {
	return c.postOp(ctx, "/managed-stop")
}

// Status queries the daemon's lifecycle status.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return out, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return out, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("status request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("invalid status response: %w", err)
	}
	return out, nil
}

// postOp performs a lifecycle POST. A 409 is a state rejection, not a
// transport error: it comes back as (false, nil).
func (c *Client) postOp(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusConflict:
		var ok OKResponse
		if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
			return false, fmt.Errorf("invalid response: %w", err)
		}
		return ok.OK, nil
	default:
		return false, fmt.Errorf("request %s failed: %s", path, resp.Status)
	}
}
