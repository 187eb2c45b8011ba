// API service for making raw HTTP requests to the Vibello backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kgolebiewski95/Vibello/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:8000"

// APIService provides methods for making raw HTTP requests to the backend.
// Shared by the typed services and the `api` command group.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	headers    *shared.CurlHeaders
}

// NewAPIService creates a new API service instance for the Vibello backend.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// BaseURL returns the backend base URL requests are resolved against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// SetHeaders attaches extra request headers parsed from a curl command, for
// backends behind an authenticating proxy.
func (a *APIService) SetHeaders(h *shared.CurlHeaders) {
	a.headers = h
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

func (a *APIService) do(req *http.Request) (*APIResponse, error) {
	if a.headers != nil {
		a.headers.Apply(req.Header)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return a.do(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return a.do(req)
}

// BackendVersion identifies the backend build behind the base URL.
type BackendVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Health checks GET /health and reports whether the backend answered with
// status "ok".
func (a *APIService) Health(ctx context.Context) error {
	resp, err := a.Get(ctx, "/health")
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("backend unhealthy: status %q", health.Status)
	}

	return nil
}

// Version fetches GET /api/version.
func (a *APIService) Version(ctx context.Context) (*BackendVersion, error) {
	resp, err := a.Get(ctx, "/api/version")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("version request failed: status %d", resp.StatusCode)
	}

	var version BackendVersion
	if err := json.Unmarshal(resp.Body, &version); err != nil {
		return nil, fmt.Errorf("failed to decode version response: %w", err)
	}

	return &version, nil
}
