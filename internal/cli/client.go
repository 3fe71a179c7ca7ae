package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// refreshFailure is the body of a rejected or failed cache refresh
type refreshFailure struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// WebSocketURL returns the game socket URL for the configured server
func (c *Client) WebSocketURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/ws"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/ws"
	default:
		return c.baseURL + "/ws"
	}
}

// Do performs an HTTP request. Headers are optional extra request headers.
func (c *Client) Do(method, path string, headers map[string]string, body, result any) error {
	status, respBody, err := c.send(method, path, headers, body)
	if err != nil {
		return err
	}

	// Check for error responses
	if status >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		var refresh refreshFailure
		if err := json.Unmarshal(respBody, &refresh); err == nil && refresh.Message != "" {
			return fmt.Errorf("%s (HTTP %d)", refresh.Message, status)
		}
		return fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(respBody)))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// GetReport performs a GET against a diagnostics endpoint, whose body is
// decoded whatever the status. It returns the HTTP status.
func (c *Client) GetReport(path string, result any) (int, error) {
	status, respBody, err := c.send(http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return status, fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(respBody)))
	}
	return status, nil
}

func (c *Client) send(method, path string, headers map[string]string, body any) (int, []byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, headers map[string]string, result any) error {
	return c.Do(http.MethodPost, path, headers, nil, result)
}
