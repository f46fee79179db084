// Package connection provides connection management for calcmesh-cli.
package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/calcmesh-go/internal/infra/buildinfo"
)

// HTTPClient provides HTTP communication with the ops API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// APIError is an error envelope returned by the ops API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Details   any             `json:"details"`
}

// Health is the body of GET /health and GET /ready.
type Health struct {
	Status  string `json:"status" yaml:"status"`
	Time    string `json:"time" yaml:"time"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(server string, timeout time.Duration) *HTTPClient {
	// Ensure baseURL has http:// prefix
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Eval evaluates expr through POST /v1/eval. Unlike the TCP protocol,
// failures carry an error code.
func (c *HTTPClient) Eval(ctx context.Context, expr string) (*Result, error) {
	start := time.Now()
	resp, err := c.post(ctx, "/v1/eval", map[string]string{"expression": expr})
	if err != nil {
		return nil, err
	}

	var data struct {
		Result string `json:"result"`
	}
	if err := parseResponse(resp, &data); err != nil {
		return nil, err
	}
	return &Result{
		Expression: expr,
		Value:      data.Result,
		Latency:    time.Since(start),
	}, nil
}

// Health queries GET /health, or GET /ready when ready is true.
func (c *HTTPClient) Health(ctx context.Context, ready bool) (*Health, error) {
	path := "/health"
	if ready {
		path = "/ready"
	}
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var h Health
	if err := parseResponse(resp, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req)
	return c.client.Do(req)
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func (c *HTTPClient) addHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "calcmesh-cli/"+buildinfo.Version)
}

// parseResponse decodes the envelope and its data into target, or
// returns an *APIError for error responses.
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Code: "HTTP-" + fmt.Sprint(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			Details: env.Details,
		}
	}

	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}

// Text returns the status.
func (h *Health) Text() string {
	return h.Status
}
