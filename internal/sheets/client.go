// Package sheets provides a minimal REST client for the spreadsheet values
// API: clearing a range and rewriting it in one batch call.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fashionetl/internal/logger"
)

// DefaultEndpoint is the production spreadsheet API base URL.
const DefaultEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"

// Client errors.
var (
	ErrNoToken = errors.New("no API token configured")
)

// StatusError reports an unexpected HTTP status from the spreadsheet API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status indicates a transient condition worth
// retrying (rate limiting or server-side failure).
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	}

	return e.StatusCode >= 500
}

// API is the narrow surface the spreadsheet sink depends on.
type API interface {
	Clear(ctx context.Context, spreadsheetID, valueRange string) error
	Update(ctx context.Context, spreadsheetID, valueRange string, values [][]string) (int, error)
}

// Ensure Client implements API.
var _ API = (*Client)(nil)

// Client talks to the spreadsheet values REST API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *logger.Logger
}

// NewClient creates a spreadsheet client. An empty endpoint selects the
// production API; tests point it at a local server.
func NewClient(endpoint, token string, log *logger.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

// Clear empties the given range.
func (c *Client) Clear(ctx context.Context, spreadsheetID, valueRange string) error {
	url := fmt.Sprintf("%s/%s/values/%s:clear", c.endpoint, spreadsheetID, valueRange)

	_, err := c.do(ctx, http.MethodPost, url, nil)

	return err
}

// updateRequest is the values payload for a range rewrite.
type updateRequest struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// updateResponse carries the fields we care about from the API reply.
type updateResponse struct {
	UpdatedRows int `json:"updatedRows"`
}

// Update rewrites the given range with the provided rows in one batch call
// and returns the number of rows the API reports as updated.
func (c *Client) Update(ctx context.Context, spreadsheetID, valueRange string, values [][]string) (int, error) {
	url := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW", c.endpoint, spreadsheetID, valueRange)

	body := updateRequest{
		Range:          valueRange,
		MajorDimension: "ROWS",
		Values:         values,
	}

	respBody, err := c.do(ctx, http.MethodPut, url, body)
	if err != nil {
		return 0, err
	}

	var resp updateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	return resp.UpdatedRows, nil
}

// do sends one request with auth headers and returns the response body.
// Non-2xx statuses come back as *StatusError.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader = http.NoBody

	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Limit response size to 10MB
	reader := io.LimitReader(resp.Body, 10*1024*1024)

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error("spreadsheet API request failed", "status", resp.StatusCode, "url", url)
		}

		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
