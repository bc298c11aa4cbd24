package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// maxBodySize bounds upstream response bodies (badge datasets are small).
const maxBodySize = 16 << 20 // 16 MiB

// Options customize a single request.
type Options struct {
	// Authorization header value, ex: "Bot <token>". Empty = no auth.
	Authorization string
}

// Client fetches JSON documents from upstream badge sources. Transient
// failures are retried with backoff; a non-2xx response is an error.
type Client struct {
	rc        *retryablehttp.Client
	userAgent string
}

// New creates an upstream fetch client.
func New(timeout time.Duration, retryMax int, userAgent string) *Client {
	rc := &retryablehttp.Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		RetryMax:     retryMax,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
	}

	return &Client{
		rc:        rc,
		userAgent: userAgent,
	}
}

// GetJSON performs a GET against url and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, opts Options, v interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if opts.Authorization != "" {
		req.Header.Set("Authorization", opts.Authorization)
	}

	resp, err := c.rc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
