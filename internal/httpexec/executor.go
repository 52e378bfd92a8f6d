// Package httpexec adapts net/http to the Executor capability agents
// consume. It applies a fixed per-request timeout and no retries; anything
// smarter belongs to the host runtime.
package httpexec

import (
	"context"
	"io"
	"net/http"
	"time"

	"crowdsim/internal/core"
)

// maxBodySize limits how much of a response body is read for size
// measurement and result parsing.
const maxBodySize = 10 * 1024 * 1024 // 10MB

// Client executes single HTTP requests with a bounded timeout.
type Client struct {
	hc      *http.Client
	timeout time.Duration
	debug   *DebugLogger
}

// New creates a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		hc:      &http.Client{},
		timeout: timeout,
	}
}

// NewWithClient creates a Client on top of an existing http.Client (for
// tests and custom transports).
func NewWithClient(hc *http.Client, timeout time.Duration) *Client {
	return &Client{hc: hc, timeout: timeout}
}

// SetDebug enables request/response logging through d. A nil d disables it.
func (c *Client) SetDebug(d *DebugLogger) {
	c.debug = d
}

// Execute performs one request and measures wall-clock latency. A transport
// error or timeout is returned in ExecResult.Err with latency still set;
// it is never silently dropped.
func (c *Client) Execute(ctx context.Context, method, url string, headers map[string]string) core.ExecResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	c.debug.LogRequest(method, url, headers)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		c.debug.LogError(method, url, err, time.Since(start))
		return core.ExecResult{Latency: time.Since(start), Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.debug.LogError(method, url, err, time.Since(start))
		return core.ExecResult{Latency: time.Since(start), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	_, _ = io.Copy(io.Discard, resp.Body) // drain errors are ignorable
	latency := time.Since(start)
	c.debug.LogResponse(resp, body, latency)

	return core.ExecResult{
		StatusCode: resp.StatusCode,
		Latency:    latency,
		BodySize:   int64(len(body)),
		Body:       body,
	}
}
