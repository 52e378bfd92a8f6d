// Package progress displays a live one-line status of a running simulation.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Counter supplies lifetime event totals, typically the event sink.
type Counter interface {
	Counts() (total, failed int)
}

// Progress displays live run progress to stderr.
type Progress struct {
	startTime time.Time
	counter   Counter
	agents    func() int // active agent count, may be nil
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

// New creates a progress indicator reading totals from counter and the
// active agent count from agents. If quiet is true, nothing is displayed.
func New(counter Counter, agents func() int, quiet bool) *Progress {
	return &Progress{
		counter: counter,
		agents:  agents,
		quiet:   quiet,
		stopCh:  make(chan struct{}),
		output:  os.Stderr,
	}
}

// SetOutput sets the output writer for progress display.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

// Start begins displaying progress updates every second.
func (p *Progress) Start() {
	if p.quiet {
		return
	}

	p.startTime = time.Now()
	p.ticker = time.NewTicker(1 * time.Second)

	go func() {
		for {
			select {
			case <-p.ticker.C:
				p.display()
			case <-p.stopCh:
				return
			}
		}
	}()
}

// Stop halts the progress display and clears the line.
func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}

	if p.ticker != nil {
		p.ticker.Stop()
	}
	close(p.stopCh)

	p.mu.Lock()
	fmt.Fprint(p.output, "\r\033[K")
	p.mu.Unlock()
}

// Print outputs a message, clearing the progress line first if active.
func (p *Progress) Print(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.quiet {
		fmt.Fprint(p.output, "\r\033[K")
	}
	fmt.Fprintln(p.output, message)
}

// Printf outputs a formatted message, clearing the progress line first if
// active.
func (p *Progress) Printf(format string, args ...interface{}) {
	p.Print(fmt.Sprintf(format, args...))
}

// display prints the current progress line.
func (p *Progress) display() {
	total, failed := p.counter.Counts()

	elapsed := time.Since(p.startTime)
	elapsedStr := formatElapsed(elapsed)

	var eps float64
	if elapsed > 0 {
		eps = float64(total) / elapsed.Seconds()
	}

	var errorRate float64
	if total > 0 {
		errorRate = float64(failed) / float64(total) * 100
	}

	active := 0
	if p.agents != nil {
		active = p.agents()
	}

	// Format: [00:30] Agents: 25 | Events: 1523 | EPS: 50.8 | Errors: 2 (0.1%)
	line := fmt.Sprintf("[%s] Agents: %d | Events: %d | EPS: %.1f | Errors: %d (%.1f%%)",
		elapsedStr, active, total, eps, failed, errorRate)

	p.mu.Lock()
	fmt.Fprintf(p.output, "\r\033[K%s", line)
	p.mu.Unlock()
}

// formatElapsed formats duration as MM:SS.
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
