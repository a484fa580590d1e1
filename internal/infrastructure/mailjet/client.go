// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package mailjet

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/go-querystring/query"

	"github.com/signalworks/subscription-gateway/pkg/httpclient"
)

// basicAuthRoundTripper injects the Mailjet Basic-Auth header on every
// request. The header value is computed once at construction; Mailjet uses
// static API credentials, so there is no token lifecycle to manage.
type basicAuthRoundTripper struct {
	authorization string
}

// RoundTrip adds the authorization header and passes the request on
func (rt *basicAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	req.Header.Set("Authorization", rt.authorization)
	return next(req)
}

// Client handles all Mailjet API operations
type Client struct {
	config     Config
	httpClient *httpclient.Client
}

// NewClient creates a new Mailjet client with the given configuration
func NewClient(cfg Config) (*Client, error) {
	if cfg.MockMode {
		return nil, nil // Return nil for mock mode - orchestrator will handle this
	}

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("API key and secret are required for Mailjet client")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mailjet.com"
	}

	// Request-path calls are never retried: the caller's outcome contract
	// depends on the first response, and the workflow surfaces failures
	// immediately.
	httpConfig := httpclient.Config{
		Timeout:    cfg.Timeout,
		MaxRetries: 0,
	}

	client := &Client{
		config:     cfg,
		httpClient: httpclient.NewClient(httpConfig),
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.APIKey + ":" + cfg.APISecret))
	client.httpClient.AddRoundTripper(&basicAuthRoundTripper{
		authorization: "Basic " + credentials,
	})

	slog.InfoContext(context.Background(), "Mailjet client initialized")

	return client, nil
}

// makeRequest centralizes all API calls with authentication and error
// handling. GET query parameters are percent-encoded before dispatch; JSON
// bodies are marshaled from options structs. The raw response is returned so
// callers can inspect the status code (201 on create, 304 on idempotent PUT).
func (c *Client) makeRequest(ctx context.Context, method string, path string, values url.Values, payload any, result any) (*httpclient.Response, error) {
	reqURL := c.config.BaseURL + path
	if len(values) > 0 {
		reqURL += "?" + values.Encode()
	}

	var body io.Reader
	headers := map[string]string{}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.httpClient.Request(ctx, method, reqURL, body, headers)
	if err != nil {
		return resp, MapHTTPError(ctx, err)
	}

	if result != nil && resp.StatusCode != http.StatusNotModified && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return resp, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return resp, nil
}

// queryValues encodes a query options struct into URL values
func queryValues(options any) (url.Values, error) {
	values, err := query.Values(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query options: %w", err)
	}
	return values, nil
}

// IsReady checks if the Mailjet API is accessible
func (c *Client) IsReady(ctx context.Context) error {
	values := url.Values{"Limit": {"1"}}
	resp, err := c.makeRequest(ctx, http.MethodGet, "/v3/REST/contactslist", values, nil, nil)
	if err != nil {
		return fmt.Errorf("mailjet API unreachable: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mailjet API unhealthy (status: %d)", resp.StatusCode)
	}
	return nil
}
