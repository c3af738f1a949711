// Package source fetches sales records from the remote products endpoint and
// keeps them in a fetch cache keyed by the request parameters.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salesdash/salesdash/internal/sales"
)

// DefaultURL is the public products endpoint.
const DefaultURL = "https://labdados.com/produtos"

// ErrUpstream reports a non-success response from the endpoint.
var ErrUpstream = errors.New("source: upstream error")

// Client performs HTTP GET requests against the products endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch loads the records matching p. There is no retry.
func (c *Client) Fetch(ctx context.Context, p Params) ([]sales.Record, error) {
	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + p.Query().Encode()
	} else {
		endpoint += "?" + p.Query().Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []sales.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("source: decode: %w", err)
	}
	if records == nil {
		records = []sales.Record{}
	}
	return records, nil
}
