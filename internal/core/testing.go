package core

import "sync"

// MockWriter is an io.Writer safe for writes from multiple goroutines,
// for tests that capture output produced by background tickers.
type MockWriter struct {
	mu  sync.Mutex
	buf []byte
}

func (w *MockWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// String returns everything written so far.
func (w *MockWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}
