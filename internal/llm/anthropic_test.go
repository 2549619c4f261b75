package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func TestAnthropicProviderHappyPath(t *testing.T) {
	content := `{"question":"What is the slope of y = 3x - 2?","options":["3","-2","2","1/3"],"correctIndex":0}`
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": content},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  120,
				"output_tokens": 45,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You generate practice content for an adaptive tutor.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate a multiple choice question about slope."}},
		MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != content {
		t.Fatalf("content mangled: %s", resp.Content)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 45 {
		t.Fatalf("usage not mapped: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason end, got %q", resp.StopReason)
	}
}

func TestAnthropicProviderMaxTokensStopReason(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"subject":"Algebra","lessons":[{"id":"lesson-1"`},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "max_tokens",
			"usage": map[string]any{
				"input_tokens":  80,
				"output_tokens": 3000,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Create a learning plan for Algebra."}},
		MaxTokens: 3000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("expected max_tokens, got %q", resp.StopReason)
	}
}

func TestAnthropicProviderTruncatedSchemaCall(t *testing.T) {
	partial := `{"subject":"Chemistry","lessons":[{"id":"lesson-1","title":"Atoms`
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": partial},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "max_tokens",
			"usage": map[string]any{
				"input_tokens":  80,
				"output_tokens": 3000,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Create a learning plan for Chemistry."}},
		MaxTokens: 3000,
		Schema:    multipleChoiceSchema(),
	})
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
	if string(truncated.Content) != partial {
		t.Fatalf("partial content not carried: %s", truncated.Content)
	}
}

func TestAnthropicProviderRateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "rate_limit_error",
				"message": "Rate limit exceeded",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 100,
	})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestAnthropicProviderServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 100,
	})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func TestAnthropicProviderModelID(t *testing.T) {
	p := &AnthropicProvider{model: "claude-haiku-4-5-20251001"}
	if p.ModelID() != "claude-haiku-4-5-20251001" {
		t.Fatalf("unexpected model ID %q", p.ModelID())
	}
}
