// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package zabbix provides clients for the Zabbix JSON-RPC API and the
// trapper (sender) protocol.
package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultAPITimeout is used when ClientOptions.Timeout is zero.
const DefaultAPITimeout = 30 * time.Second

var (
	// Servers before 6.4 only read the session from the "auth" request field.
	headerAuthSince = semver.MustParse("6.4.0")
	// Servers before 5.4 name the user.login parameter "user".
	usernameParamSince = semver.MustParse("5.4.0")
)

// Client talks to the Zabbix frontend API.
type Client struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	detected    bool
	legacyAuth  bool // send the token in the request body
	legacyLogin bool // user.login takes "user" instead of "username"
	ids         atomic.Int64
}

// ClientOptions holds configuration for creating a new API client.
type ClientOptions struct {
	URL      string        // Frontend URL, e.g. http://zabbix/zabbix
	Username string        // Username for user.login
	Password string        // Password for user.login
	Token    string        // API token; skips user.login when set
	Timeout  time.Duration // Request timeout

	Transport http.RoundTripper // Base transport (default http.DefaultTransport)
}

// NewClient creates a new API client from options.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultAPITimeout
	}

	endpoint := strings.TrimSuffix(opts.URL, "/")
	if !strings.HasSuffix(endpoint, "/api_jsonrpc.php") {
		endpoint += "/api_jsonrpc.php"
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		endpoint: endpoint,
		username: opts.Username,
		password: opts.Password,
		token:    opts.Token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(base),
		},
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Auth    string      `json:"auth,omitempty"`
	ID      int64       `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *APIError       `json:"error"`
}

// Items lists monitored items whose key matches pattern (wildcards enabled).
func (c *Client) Items(ctx context.Context, pattern string) ([]Item, error) {
	params := map[string]interface{}{
		"output":                 []string{"hostid", "key_"},
		"search":                 map[string]string{"key_": pattern},
		"searchWildcardsEnabled": true,
		"monitored":              true,
	}

	var items []Item
	if err := c.call(ctx, "item.get", params, true, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// HostNames resolves host ids to technical host names in one call.
func (c *Client) HostNames(ctx context.Context, ids []HostID) (map[HostID]string, error) {
	params := map[string]interface{}{
		"output":  []string{"hostid", "host"},
		"hostids": ids,
	}

	var hosts []Host
	if err := c.call(ctx, "host.get", params, true, &hosts); err != nil {
		return nil, err
	}

	names := make(map[HostID]string, len(hosts))
	for _, h := range hosts {
		names[h.ID] = h.Name
	}
	return names, nil
}

// Version returns the API version string. It needs no authentication.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.call(ctx, "apiinfo.version", []string{}, false, &version); err != nil {
		return "", err
	}
	return version, nil
}

// login detects how the server expects credentials, then performs
// user.login once and caches the session token.
func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" && c.username == "" {
		return "", fmt.Errorf("zabbix credentials not configured")
	}
	if !c.detected {
		if err := c.detectAuthMode(ctx); err != nil {
			return "", err
		}
	}
	if c.token != "" {
		return c.token, nil
	}

	userParam := "username"
	if c.legacyLogin {
		userParam = "user"
	}
	params := map[string]string{
		userParam:  c.username,
		"password": c.password,
	}
	var token string
	if err := c.do(ctx, "user.login", params, "", &token); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	c.token = token
	return token, nil
}

// detectAuthMode reads the API version once. Callers hold c.mu.
func (c *Client) detectAuthMode(ctx context.Context) error {
	var raw string
	if err := c.do(ctx, "apiinfo.version", []string{}, "", &raw); err != nil {
		return fmt.Errorf("detect api version: %w", err)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("parse api version %q: %w", raw, err)
	}
	c.legacyAuth = v.LessThan(headerAuthSince)
	c.legacyLogin = v.LessThan(usernameParamSince)
	c.detected = true
	return nil
}

func (c *Client) call(ctx context.Context, method string, params interface{}, auth bool, out interface{}) error {
	token := ""
	if auth {
		var err error
		token, err = c.login(ctx)
		if err != nil {
			return err
		}
	}
	return c.do(ctx, method, params, token, out)
}

func (c *Client) do(ctx context.Context, method string, params interface{}, token string, out interface{}) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.ids.Add(1),
	}
	if token != "" && c.legacyAuth {
		req.Auth = token
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json-rpc")
	if token != "" && !c.legacyAuth {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s failed (status %d): %s", method, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}
