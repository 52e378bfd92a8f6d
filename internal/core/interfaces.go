package core

import (
	"context"
	"time"
)

// Reporter is the interface agents use to send events to the sink.
type Reporter interface {
	Report(Event)
}

// NullReporter discards all events.
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Event) {}

// ExecResult is the outcome of a single request through an Executor.
type ExecResult struct {
	StatusCode int
	Latency    time.Duration
	BodySize   int64
	Body       []byte
	Err        error
}

// Executor performs one HTTP request with a bounded timeout. The core never
// manages connection pooling, TLS, or retries; those belong to the
// implementation behind this interface.
type Executor interface {
	Execute(ctx context.Context, method, url string, headers map[string]string) ExecResult
}

// SleepCtx pauses for d or until ctx is cancelled, whichever comes first.
// Returns ctx.Err() when interrupted.
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
