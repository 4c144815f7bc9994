// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package graphite provides a client for the Graphite render API.
package graphite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Default client settings.
const (
	DefaultLookback = "-5minutes"
	DefaultTimeout  = 30 * time.Second
)

// Client queries a Graphite web instance.
type Client struct {
	baseURL    string
	lookback   string
	username   string
	password   string
	httpClient *http.Client
}

// ClientOptions holds configuration for creating a new Graphite client.
type ClientOptions struct {
	BaseURL   string            // Graphite web URL, e.g. http://graphite:8080
	Lookback  string            // Render "from" value (default -5minutes)
	Username  string            // Username for basic auth (optional)
	Password  string            // Password for basic auth (optional)
	Timeout   time.Duration     // Request timeout
	Transport http.RoundTripper // Base transport (default http.DefaultTransport)
}

// NewClient creates a new Graphite client from options.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	lookback := opts.Lookback
	if lookback == "" {
		lookback = DefaultLookback
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		lookback: lookback,
		username: opts.Username,
		password: opts.Password,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(base),
		},
	}
}

// BaseURL returns the configured Graphite URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch executes a render query and decodes the series list.
func (c *Client) Fetch(ctx context.Context, query string) ([]Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var series []Series
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("failed to decode render response: %w", err)
	}
	return series, nil
}

// Ping checks that the render endpoint answers. It asks for a target that
// matches nothing, which Graphite answers with an empty list.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Fetch(ctx, c.renderURL("graphzab.ping.does.not.exist"))
	if err != nil {
		return fmt.Errorf("failed to ping graphite: %w", err)
	}
	return nil
}
