package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// Error taxonomy for generation failures. The retry decorator keys off
// these types: rate limits and outages are transient, schema violations
// get a single re-ask, truncation is terminal. The planner additionally
// salvages the partial Content carried by ErrMaxTokensExceeded and
// ErrInvalidResponse through its truncation-repair path.

// ErrRateLimit is a provider 429. RetryAfter, when the provider sent
// one, overrides the backoff schedule.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the model answered but the content failed
// schema validation. Content holds the offending output so the caller
// can attempt repair.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers outages, 5xx responses, and transport
// failures. It is the catch-all on the error-mapping paths of every
// backend.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "model provider unavailable"
	}
	return fmt.Sprintf("model provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means generation stopped at the MaxTokens cap.
// Content holds whatever was produced before the cut; retrying with the
// same budget would truncate again, so this is never retried.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated at the token limit"
}
