package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mdrrmo/fieldsync/pkg/types"
)

// ThrottledMessage is the fixed friendly message mapped onto HTTP 429
// responses; the backend does not provide one.
const ThrottledMessage = "Too many requests. Please wait a moment and try again."

// HTTPError is a non-2xx response from the query endpoint after error
// extraction.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Client fetches the team-scoped assigned-incident list from the backend
// query endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// New creates a query client. A nil httpClient gets a 15s-timeout default.
func New(baseURL, token string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
		maxRetries: 3,
		baseDelay:  100 * time.Millisecond,
		maxDelay:   2 * time.Second,
	}
}

// FetchAssigned performs the authoritative fetch for the team. Responses
// bypass intermediary caches; 429 and 5xx responses are retried with
// backoff before being surfaced.
func (c *Client) FetchAssigned(ctx context.Context, team int64) ([]*types.Incident, error) {
	requestPath := fmt.Sprintf("/api/teams/%d/assigned?_t=%d", team, time.Now().UnixMilli())

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+requestPath, nil)
		if err != nil {
			return nil, err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		req.Header.Set("Pragma", "no-cache")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, err
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			var body struct {
				Incidents []*types.Incident `json:"incidents"`
			}
			if err := json.Unmarshal(payload, &body); err != nil {
				return nil, fmt.Errorf("malformed assigned-incidents response: %w", err)
			}
			return body.Incidents, nil
		}

		if (resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)) && attempt < c.maxRetries {
			if waitErr := waitWithContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(resp, payload),
		}
	}
}

// extractErrorMessage resolves a human-readable failure description: a
// JSON error or message field, else the body text, else a status-specific
// mapping, else the status text.
func extractErrorMessage(resp *http.Response, payload []byte) string {
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &body); err == nil {
			if body.Error != "" {
				return body.Error
			}
			if body.Message != "" {
				return body.Message
			}
		}
	}

	if text := strings.TrimSpace(string(payload)); text != "" && !strings.Contains(contentType, "application/json") {
		return text
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return ThrottledMessage
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "Request failed"
}

func (c *Client) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfter(retryAfterHeader); retryAfter > 0 {
		if retryAfter > c.maxDelay {
			return c.maxDelay
		}
		return retryAfter
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	return delay
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := time.Parse(time.RFC1123, header); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
