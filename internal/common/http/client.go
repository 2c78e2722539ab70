// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var (
	ErrRequestFailed  = errors.New("REQUEST_FAILED")
	ErrRequestTimeout = errors.New("REQUEST_TIMEOUT")
)

// Client posts JSON with bounded retries and exponential backoff.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		backoff:    100 * time.Millisecond,
	}
}

// PostJSON returns the body of the first 200 response. Transport errors, 429
// and 5xx are retried; other statuses fail immediately.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrRequestTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if ctx.Err() != nil || isTimeout(err) {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ErrRequestTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, readErr)
			}
			return data, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
		default:
			return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrRequestFailed, lastErr)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
