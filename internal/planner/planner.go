// Package planner calls the downstream trip-planning service with a complete
// travel request. The response body is passed through verbatim: the planner
// owns its own schema and the dialogue core has no reason to reparse it.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client requests a trip plan for a validated payload.
type Client interface {
	GetPlan(ctx context.Context, payload json.RawMessage) (string, error)
}

// HTTPClient posts travel requests to the getPlan endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
}

func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) GetPlan(ctx context.Context, payload json.RawMessage) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("planner http status %d: %s", res.StatusCode, string(body))
	}

	return string(body), nil
}

// MockClient returns a canned plan without leaving the process.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) GetPlan(ctx context.Context, payload json.RawMessage) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return `{"plan":"mock","status":"ok"}`, nil
}

// New builds an HTTP client when a URL is configured, otherwise the mock.
func New(url string) Client {
	if strings.TrimSpace(url) == "" {
		return NewMockClient()
	}
	return NewHTTPClient(url)
}
