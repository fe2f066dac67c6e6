package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is the harness-side handle to the fake backend. It only ever
// reads or clears; it never writes trace data.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// ListExported returns the raw body of the get-requests endpoint. This
// is the idempotent read the poller issues on every attempt.
func (c *Client) ListExported(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, GetRequestsPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, GetRequestsPath)
	}
	return io.ReadAll(resp.Body)
}

// ClearRequests empties the backend store. Called between scenarios.
func (c *Client) ClearRequests(ctx context.Context) error {
	resp, err := c.get(ctx, ClearRequestsPath)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, ClearRequestsPath)
	}
	return nil
}

// Healthy reports whether the backend answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	resp, err := c.get(ctx, HealthPath)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}
