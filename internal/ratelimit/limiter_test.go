package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_ZeroRateDoesNotBlock(t *testing.T) {
	l := NewLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("zero-rate limiter blocked: %v", err)
		}
	}
}

func TestLimiter_EnforcesRate(t *testing.T) {
	l := NewLimiter(10)
	ctx := context.Background()

	start := time.Now()
	// Burst allows the first 10 through; the next 5 must be paced at 10/s.
	for i := 0; i < 15; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("15 requests at 10 rps finished too fast: %v", elapsed)
	}
}

func TestLimiter_SetRate(t *testing.T) {
	l := NewLimiter(1)
	l.SetRate(0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("limiter blocked after SetRate(0): %v", err)
		}
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	l := NewLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Exhaust the burst first, then the cancelled context must surface.
	_ = l.Wait(context.Background())
	if err := l.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
