// Package provider implements the delivery-provider client. The provider
// accepts an array of message specs in one call and later reports
// per-recipient delivery events through the webhook endpoint.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.sendgrid.com"
	defaultTimeout = 30 * time.Second

	sendPath = "/v3/mail/send"
)

// Client is the delivery provider API client. Credentials are supplied at
// construction; there is no package-level default client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Config holds the configuration for the provider client.
type Config struct {
	APIKey         string
	BaseURL        string // optional, defaults to the provider API
	TimeoutSeconds int
}

// NewClient creates a new provider client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider: API key is required")
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	baseURL := defaultBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// APIError is a provider rejection, carrying the raw response body so the
// caller can persist the diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: unexpected status %d: %s", e.StatusCode, e.Body)
}

// SendBatch submits every message spec to the provider in one call.
// A non-2xx response fails the whole batch.
func (c *Client) SendBatch(ctx context.Context, specs []MessageSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("provider: empty batch")
	}

	payload, err := json.Marshal(specs)
	if err != nil {
		return fmt.Errorf("provider: marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: send batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil
}
