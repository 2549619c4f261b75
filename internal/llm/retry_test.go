package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// fastRetry is the generation retry profile with waits shrunk so tests
// don't sleep.
func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     8 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var planReply = json.RawMessage(`{"subject":"Algebra","lessons":[]}`)

func TestRetryFirstAttemptSucceeds(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: planReply})
	p := WithRetry(mock, fastRetry(3))

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(planReply) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetryOutageThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}},
		MockResponse{Content: planReply},
	)
	p := WithRetry(mock, fastRetry(3))

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(planReply) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithRetry(mock, fastRetry(3))

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetryTruncationIsTerminal(t *testing.T) {
	// A truncated plan would truncate again with the same budget; the
	// caller repairs the partial content instead.
	partial := json.RawMessage(`{"subject":"Algebra","lessons":[{"id":"lesson-1"`)
	mock := NewMockProvider(
		MockResponse{Err: &ErrMaxTokensExceeded{Content: partial}},
		MockResponse{Content: planReply},
	)
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(context.Background(), Request{})
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T", err)
	}
	if string(truncated.Content) != string(partial) {
		t.Fatalf("partial content lost: %s", truncated.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetrySchemaViolationGetsOneReask(t *testing.T) {
	invalid := MockResponse{Err: &ErrInvalidResponse{
		Content: json.RawMessage(`{"lessons":"not an array"}`),
		Err:     errors.New("schema validation failed"),
	}}
	mock := NewMockProvider(invalid, invalid, MockResponse{Content: planReply})
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(context.Background(), Request{})
	var bad *ErrInvalidResponse
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrInvalidResponse, got %T", err)
	}
	// One re-ask, then give up: the third canned reply is never reached.
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: planReply},
	)
	p := WithRetry(mock, fastRetry(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
		MockResponse{Content: planReply},
	)
	p := WithRetry(mock, fastRetry(3))

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(planReply) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetryModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), fastRetry(2))
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock, got %q", p.ModelID())
	}
}
