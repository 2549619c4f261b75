package llm

import (
	"strings"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("default model", func(t *testing.T) {
		cfg := DefaultConfig().OpenRouter
		cfg.APIKey = "sk-or-test"
		p, err := NewOpenRouterProvider(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemini-2.0-flash-exp" {
			t.Errorf("model = %q, want the config default", p.ModelID())
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"})
		if err == nil || !strings.Contains(err.Error(), "API key") {
			t.Fatalf("expected API key error, got %v", err)
		}
	})

	t.Run("vendor-prefixed models pass through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-haiku-4-5",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-haiku-4-5" {
			t.Errorf("model = %q, expected pass-through", p.ModelID())
		}
	})

	t.Run("custom base URL", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  "sk-or-test",
			Model:   "meta-llama/llama-3-8b",
			BaseURL: "https://proxy.internal.example/v1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == nil {
			t.Fatal("expected provider")
		}
	})
}
