package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the model backend. Everything is
// overridable through STUDYWISE_* environment variables; DiscoverConfig
// additionally checks the providers' own conventional key variables.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter",
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout caps a single model request, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // override for OpenAI-compatible endpoints
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig bounds the retry decorator.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the defaults. Generation gets two attempts with
// a 2s/4s backoff: a learner staring at a spinner is better served by a
// fast placeholder than a long retry tail.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 2 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// envOr reads an environment variable, keeping the fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConfigFromEnv builds a Config from STUDYWISE_* variables, defaulting
// anything unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Provider = envOr("STUDYWISE_LLM_PROVIDER", cfg.Provider)

	cfg.Anthropic.APIKey = envOr("STUDYWISE_ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	cfg.Anthropic.Model = envOr("STUDYWISE_ANTHROPIC_MODEL", cfg.Anthropic.Model)

	cfg.OpenAI.APIKey = envOr("STUDYWISE_OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = envOr("STUDYWISE_OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = envOr("STUDYWISE_OPENAI_BASE_URL", cfg.OpenAI.BaseURL)

	cfg.Gemini.APIKey = envOr("STUDYWISE_GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = envOr("STUDYWISE_GEMINI_MODEL", cfg.Gemini.Model)

	cfg.OpenRouter.APIKey = envOr("STUDYWISE_OPENROUTER_API_KEY", cfg.OpenRouter.APIKey)
	cfg.OpenRouter.Model = envOr("STUDYWISE_OPENROUTER_MODEL", cfg.OpenRouter.Model)

	return cfg
}

// DiscoverConfig checks the providers' conventional key variables in
// priority order (Gemini, OpenAI, Anthropic, OpenRouter) and returns a
// Config for the first key found. False when no key is set anywhere.
func DiscoverConfig() (Config, bool) {
	checks := []struct {
		env    string
		name   string
		assign func(*Config, string)
	}{
		{"GEMINI_API_KEY", "gemini", func(c *Config, k string) { c.Gemini.APIKey = k }},
		{"OPENAI_API_KEY", "openai", func(c *Config, k string) { c.OpenAI.APIKey = k }},
		{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, k string) { c.Anthropic.APIKey = k }},
		{"OPENROUTER_API_KEY", "openrouter", func(c *Config, k string) { c.OpenRouter.APIKey = k }},
	}

	for _, p := range checks {
		if k := os.Getenv(p.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = p.name
			p.assign(&cfg, k)
			return cfg, true
		}
	}
	return Config{}, false
}

// resolveModel maps a friendly alias (claude-haiku, gemini-flash) to the
// provider's real model ID. Unknown names pass through so dated IDs can
// be configured directly.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	keys := map[string]struct {
		key string
		env string
	}{
		"anthropic":  {c.Anthropic.APIKey, "STUDYWISE_ANTHROPIC_API_KEY"},
		"openai":     {c.OpenAI.APIKey, "STUDYWISE_OPENAI_API_KEY"},
		"gemini":     {c.Gemini.APIKey, "STUDYWISE_GEMINI_API_KEY"},
		"openrouter": {c.OpenRouter.APIKey, "STUDYWISE_OPENROUTER_API_KEY"},
	}

	if c.Provider == "mock" {
		return nil
	}
	req, ok := keys[c.Provider]
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if req.key == "" {
		return fmt.Errorf("%s is required for the %s provider", req.env, c.Provider)
	}
	return nil
}
