package ratelimit

import (
	"context"
	"testing"
	"time"
)

// fakeLimiter returns a Limiter with a controllable clock and a sleep
// that advances the clock instead of blocking.
func fakeLimiter(minDelay time.Duration) (*Limiter, *time.Duration) {
	var elapsed time.Duration
	start := time.Unix(0, 0)

	l := New(minDelay)
	l.now = func() time.Time { return start.Add(elapsed) }
	l.sleep = func(_ context.Context, d time.Duration) error {
		elapsed += d
		return nil
	}
	return l, &elapsed
}

func TestThrottle_FirstCallOnlyWaitsOutTheEpoch(t *testing.T) {
	l, elapsed := fakeLimiter(time.Second)

	if err := l.Throttle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := *elapsed

	// Immediately following call must wait out the remaining spacing.
	if err := l.Throttle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *elapsed-first < time.Second {
		t.Fatalf("expected second call to wait >= 1s, waited %v", *elapsed-first)
	}
}

func TestThrottle_NoWaitAfterSpacingElapsed(t *testing.T) {
	l, elapsed := fakeLimiter(time.Second)

	if err := l.Throttle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*elapsed += 2 * time.Second
	before := *elapsed

	if err := l.Throttle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *elapsed != before {
		t.Fatalf("expected no wait, slept %v", *elapsed-before)
	}
}

func TestThrottle_ContextCancellation(t *testing.T) {
	l := New(time.Minute)

	if err := l.Throttle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Throttle(ctx); err == nil {
		t.Fatal("expected context error while waiting")
	}
}

func TestNew_NonPositiveDelayUsesDefault(t *testing.T) {
	l := New(0)
	if l.minDelay != DefaultMinDelay {
		t.Fatalf("expected default delay, got %v", l.minDelay)
	}
}
