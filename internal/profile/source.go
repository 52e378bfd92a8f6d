package profile

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Mode selects the overall test character.
type Mode string

const (
	ModeRealistic Mode = "realistic"
	ModeStress    Mode = "stress"
)

// ParseMode validates a mode string, defaulting to realistic when empty.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeRealistic, nil
	case ModeRealistic, ModeStress:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown test mode %q (want realistic or stress)", s)
	}
}

// RunContext binds a run to its immutable configuration. It is constructed
// once and passed to every agent at construction.
type RunContext struct {
	Source   *Source
	Behavior Behavior
	Mode     Mode
}

// Source publishes the current target profile. Writers publish a complete
// replacement; readers switch references atomically, so no reader ever
// observes a half-updated profile.
type Source struct {
	cur atomic.Pointer[Target]
}

// NewSource creates a Source publishing t.
func NewSource(t *Target) *Source {
	s := &Source{}
	s.cur.Store(t)
	return s
}

// Current returns the currently published profile.
func (s *Source) Current() *Target {
	return s.cur.Load()
}

// Swap publishes a replacement profile.
func (s *Source) Swap(t *Target) {
	s.cur.Store(t)
}

// Watch re-reads the named profile from path every interval and publishes it
// when the file changes, until ctx is cancelled. Read errors leave the
// current profile in place.
func (s *Source) Watch(ctx context.Context, path, name string, interval time.Duration) {
	var lastMod time.Time
	if fi, err := os.Stat(path); err == nil {
		lastMod = fi.ModTime()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fi, err := os.Stat(path)
			if err != nil || !fi.ModTime().After(lastMod) {
				continue
			}
			lastMod = fi.ModTime()
			t, err := LoadTarget(path, name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "profile reload failed, keeping current: %v\n", err)
				continue
			}
			s.Swap(t)
		}
	}
}
