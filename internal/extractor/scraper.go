// Package extractor fetches catalog pages and turns them into raw product
// records. It is a collaborator of the core pipeline: everything it emits is
// unvalidated.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fashionetl/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const maxPageBytes = 4 * 1024 * 1024

// Scraper fetches catalog pages with config-driven retry logic.
type Scraper struct {
	client *http.Client
	retry  config.RetryPolicy
}

// NewScraper creates a scraper with the default retry policy.
func NewScraper() *Scraper {
	return NewScraperWithRetry(config.DefaultRetryPolicy())
}

// NewScraperWithRetry creates a scraper with a custom retry policy.
func NewScraperWithRetry(retry config.RetryPolicy) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retry: retry,
	}
}

// Fetch retrieves one page, retrying transient failures with exponential
// backoff.
func (s *Scraper) Fetch(url string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if delay := s.retry.GetRetryDelay(attempt); delay > 0 {
				time.Sleep(delay)
			}
		}

		req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		// Set user agent to avoid being blocked
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retry.MaxAttempts, err)

			continue
		}

		body, readErr := func() ([]byte, error) {
			defer resp.Body.Close()

			return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		}()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)

			if !isRetryableStatus(resp.StatusCode) {
				return "", lastErr
			}

			continue
		}

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)

			continue
		}

		return string(body), nil
	}

	return "", lastErr
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
