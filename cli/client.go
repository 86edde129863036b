package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errorwatch/models"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the HTTP client for talking to an errorwatch collector
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope mirrors the collector's v2 response shape
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse unwraps the envelope and decodes its data into result
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s (%s)", resp.StatusCode, env.Message, env.Code)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %v", err)
		}
	}

	return nil
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: HTTP %d", resp.StatusCode)
	}
	return nil
}

// ErrorsResponse is one page of stored errors
type ErrorsResponse struct {
	Data     []models.StoredErrorRead `json:"data"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
	Total    int                      `json:"total"`
}

// ListErrors fetches a page of stored errors. filters may carry q and path.
func (c *Client) ListErrors(page, pageSize int, filters url.Values) (*ErrorsResponse, error) {
	values := url.Values{}
	for k, v := range filters {
		values[k] = v
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(pageSize))

	resp, err := c.doRequest("GET", "/api/errors?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result ErrorsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetError fetches a single stored error
func (c *Client) GetError(id string) (*models.StoredErrorRead, error) {
	resp, err := c.doRequest("GET", "/api/errors/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var rec models.StoredErrorRead
	if err := c.handleResponse(resp, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ClearErrors deletes all stored errors and returns how many were removed
func (c *Client) ClearErrors() (int64, error) {
	resp, err := c.doRequest("DELETE", "/api/errors", nil)
	if err != nil {
		return 0, err
	}

	var result struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// streamURL maps the collector base URL onto the websocket stream endpoint
func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %v", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/errors/stream"
	return u.String(), nil
}

// Tail streams newly stored errors to fn until ctx is cancelled or the
// connection drops. A cancelled ctx is not reported as an error.
func (c *Client) Tail(ctx context.Context, fn func(models.StoredErrorRead)) error {
	wsURL, err := c.streamURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to open stream: %v", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var rec models.StoredErrorRead
		if err := conn.ReadJSON(&rec); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("stream closed: %v", err)
		}
		fn(rec)
	}
}
