package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProviderServesInCallOrder(t *testing.T) {
	// The planner issues analysis then plan; replies must come back in
	// that order.
	mock := NewMockProvider(
		MockResponse{
			Content: json.RawMessage(`{"lessonCount":8,"complexity":"intermediate","focusAreas":["equations"]}`),
			Usage:   Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65},
		},
		MockResponse{Content: json.RawMessage(`{"subject":"Algebra","lessons":[]}`)},
	)

	first, err := mock.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Analyze the subject Algebra."}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var analysis struct {
		LessonCount int `json:"lessonCount"`
	}
	if err := json.Unmarshal(first.Content, &analysis); err != nil || analysis.LessonCount != 8 {
		t.Fatalf("first reply out of order: %s", first.Content)
	}
	if first.Usage.OutputTokens != 25 {
		t.Fatalf("usage not carried: %+v", first.Usage)
	}
	if first.StopReason != "end" {
		t.Fatalf("expected stop reason end, got %q", first.StopReason)
	}

	second, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var plan struct {
		Subject string `json:"subject"`
	}
	if err := json.Unmarshal(second.Content, &plan); err != nil || plan.Subject != "Algebra" {
		t.Fatalf("second reply out of order: %s", second.Content)
	}
}

func TestMockProviderEmptyQueueIsAnOutage(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestMockProviderRecordsRequests(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	req := Request{
		System:    "You are an encouraging tutor.",
		Messages:  []Message{{Role: RoleUser, Content: "Create a learning plan for Chemistry."}},
		MaxTokens: 3000,
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 recorded call, got %d", mock.CallCount())
	}
	got := mock.Calls[0]
	if got.System != req.System || got.MaxTokens != 3000 {
		t.Fatalf("request not recorded faithfully: %+v", got)
	}
}

func TestMockProviderReturnsStagedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T", err)
	}
}

func TestMockProviderModelID(t *testing.T) {
	if NewMockProvider().ModelID() != "mock" {
		t.Fatal("expected mock model ID")
	}
}

func TestPurposeRoundTrip(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected unknown for unlabeled context, got %q", p)
	}

	for _, purpose := range []string{
		PurposeStructureAnalysis,
		PurposeLearningPlan,
		PurposeCriteria,
		PurposeLessonContent,
		PurposeTutorChat,
		PurposeWelcome,
	} {
		labeled := WithPurpose(ctx, purpose)
		if got := PurposeFrom(labeled); got != purpose {
			t.Fatalf("purpose %q came back as %q", purpose, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or-test"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llamafile"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveModelAliases(t *testing.T) {
	tests := []struct {
		alias string
		table map[string]string
		want  string
	}{
		{"claude-haiku", anthropicModels, "claude-haiku-4-5-20251001"},
		{"claude-sonnet", anthropicModels, "claude-sonnet-4-20250514"},
		{"gemini-flash", geminiModels, "gemini-2.0-flash"},
		{"gpt-4o-mini", openaiModels, "gpt-4o-mini"},
		// Dated IDs pass through untouched.
		{"claude-haiku-4-5-20251001", anthropicModels, "claude-haiku-4-5-20251001"},
		{"gemini-2.5-flash", geminiModels, "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.alias, tt.table); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.alias, got, tt.want)
		}
	}
}
