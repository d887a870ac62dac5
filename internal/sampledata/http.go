package sampledata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/recap/internal/domain/types"
	"github.com/okian/recap/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// do sends a request and returns the body of a 200 response
func (c *HTTPClient) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to service: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, body)
	}
	return body, nil
}

// Health checks the service is reachable
func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz")
	return err
}

// Reset asks the service to drop cached datasets and returns the new session
func (c *HTTPClient) Reset(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/report/reset")
	if err != nil {
		return "", err
	}
	var out struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode reset response: %w", err)
	}
	return out.Session, nil
}

// Report fetches the full report
func (c *HTTPClient) Report(ctx context.Context) (*types.Report, error) {
	body, err := c.do(ctx, http.MethodGet, "/report")
	if err != nil {
		return nil, err
	}
	var report types.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()
	return io.ReadAll(resp.Body)
}
