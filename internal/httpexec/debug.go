package httpexec

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const maxBodyLogSize = 1024 // Max bytes to log for response bodies

// DebugLogger logs HTTP request/response details for debugging.
type DebugLogger struct {
	out io.Writer
	mu  sync.Mutex
}

// NewDebugLogger creates a debug logger that writes to the given writer.
func NewDebugLogger(out io.Writer) *DebugLogger {
	return &DebugLogger{out: out}
}

// LogRequest logs an outgoing request.
func (d *DebugLogger) LogRequest(method, url string, headers map[string]string) {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "\n>>> REQUEST: %s %s\n", method, url)
	if len(headers) > 0 {
		buf.WriteString("  Headers:\n")
		for name, value := range headers {
			fmt.Fprintf(&buf, "    %s: %s\n", name, value)
		}
	}
	fmt.Fprint(d.out, buf.String())
}

// LogResponse logs a received response.
func (d *DebugLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<<< RESPONSE (%s)\n", duration.Round(time.Millisecond))
	fmt.Fprintf(&buf, "  Status: %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	if len(resp.Header) > 0 {
		buf.WriteString("  Headers:\n")
		for name, values := range resp.Header {
			fmt.Fprintf(&buf, "    %s: %s\n", name, strings.Join(values, ", "))
		}
	}
	if len(body) > 0 {
		fmt.Fprintf(&buf, "  Body: %s\n", truncateBody(body))
	}
	fmt.Fprint(d.out, buf.String())
}

// LogError logs a failed request.
func (d *DebugLogger) LogError(method, url string, err error, duration time.Duration) {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintf(d.out, "!!! ERROR: %s %s (%s)\n  %v\n",
		method, url, duration.Round(time.Millisecond), err)
}

// truncateBody truncates a body to maxBodyLogSize and indicates if truncated.
func truncateBody(body []byte) string {
	if len(body) <= maxBodyLogSize {
		return string(body)
	}
	return string(body[:maxBodyLogSize]) + fmt.Sprintf("... (truncated, %d bytes total)", len(body))
}
