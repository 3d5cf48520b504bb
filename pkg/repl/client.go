package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nnnkkk7/sql-playground/server/types"
)

// Backend is the server API the session depends on.
type Backend interface {
	// Query runs sql and returns the decoded envelope, including error envelopes.
	// A non-nil error means the server could not be reached or answered garbage.
	Query(ctx context.Context, sql string) (*types.QueryResult, error)
	Health(ctx context.Context) (*types.HealthResponse, error)
}

// Client talks to the playground server over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for baseURL. A nil httpClient gets a 60 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Query posts sql to /query.
func (c *Client) Query(ctx context.Context, sql string) (*types.QueryResult, error) {
	body, err := json.Marshal(types.QueryRequest{SQL: sql})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res types.QueryResult
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Health fetches /health. An unhealthy server answers 503 with a body, which is not an error.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	var res types.HealthResponse
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
