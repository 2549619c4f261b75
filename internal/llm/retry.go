package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryClass is how the retry decorator treats a failure.
type retryClass int

const (
	// retryAlways: transient (outage, rate limit, transport) — retry
	// until attempts run out.
	retryAlways retryClass = iota
	// retryOnce: schema violation — one re-ask, the model usually
	// produces the same bad shape twice.
	retryOnce
	// retryNever: terminal — truncation and cancellation.
	retryNever
)

// RetryProvider re-issues failed generation requests with exponential
// backoff and jitter.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := r.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	reaskBudget := 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classifyFailure(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if reaskBudget == 0 {
				return nil, err
			}
			reaskBudget--
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.waitBefore(attempt, err)):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func classifyFailure(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}

	var truncated *ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return retryNever
	}

	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		return retryOnce
	}

	// Rate limits, outages, and unclassified transport errors are all
	// worth another attempt.
	return retryAlways
}

// waitBefore computes the sleep ahead of the next attempt. A provider
// RetryAfter hint wins over the backoff schedule.
func (r *RetryProvider) waitBefore(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := math.Min(
		float64(r.cfg.InitialWait)*math.Pow(r.cfg.Multiplier, float64(attempt)),
		float64(r.cfg.MaxWait),
	)

	// ±20% jitter keeps simultaneous sessions from hammering in lockstep.
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
