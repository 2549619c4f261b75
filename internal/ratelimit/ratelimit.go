// Package ratelimit paces outbound generative-model calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultMinDelay is the minimum spacing between model calls.
const DefaultMinDelay = 1 * time.Second

// Limiter enforces a minimum delay between consecutive calls. A single
// shared instance paces all callers; it only delays initiation, it does
// not serialize the calls themselves.
type Limiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	last     time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the given minimum spacing.
// A non-positive delay falls back to DefaultMinDelay.
func New(minDelay time.Duration) *Limiter {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	return &Limiter{
		minDelay: minDelay,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Throttle blocks until at least the minimum delay has elapsed since the
// previously recorded call, then records the new call time. Returns early
// with the context error if ctx is done while waiting.
func (l *Limiter) Throttle(ctx context.Context) error {
	l.mu.Lock()
	wait := l.minDelay - l.now().Sub(l.last)
	if wait <= 0 {
		l.last = l.now()
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	if err := l.sleep(ctx, wait); err != nil {
		return err
	}

	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
