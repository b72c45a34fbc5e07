package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mergington/activities/internal/domain/model"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

func (c *HTTPClient) do(ctx context.Context, method, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Status: resp.StatusCode, Body: body}, nil
}

// Health performs GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/healthz")
}

// Activities performs GET /activities and decodes the directory.
func (c *HTTPClient) Activities(ctx context.Context) (map[string]model.Activity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("list activities returned status %d", resp.Status)
	}
	var out map[string]model.Activity
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return out, nil
}

// Signup performs POST /activities/{name}/signup?email=...
func (c *HTTPClient) Signup(ctx context.Context, name, email string) (*Response, error) {
	return c.do(ctx, http.MethodPost, rosterPath(name, "signup", email))
}

// Unregister performs DELETE /activities/{name}/unregister?email=...
func (c *HTTPClient) Unregister(ctx context.Context, name, email string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, rosterPath(name, "unregister", email))
}

func rosterPath(name, action, email string) string {
	return "/activities/" + url.PathEscape(name) + "/" + action + "?email=" + url.QueryEscape(email)
}

func (r *Response) errorBody() errorResponse {
	var e errorResponse
	_ = json.Unmarshal(r.Body, &e)
	return e
}
