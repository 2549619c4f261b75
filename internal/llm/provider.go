package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single seam between the tutoring engine and a
// generative model backend. The planner talks to a decorated chain of
// these (retry wrapping logging wrapping a concrete backend).
type Provider interface {
	// Generate runs one model call. With req.Schema set, the backend uses
	// its native structured-output mechanism and the returned Content is
	// schema-validated JSON; without it, Content is the raw text wrapped
	// as a JSON string.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the model the provider is configured to call.
	ModelID() string
}

// Request is one model call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. StudyWise generation is single-turn,
	// so this is usually one user message.
	Messages []Message

	// Schema, when set, is the JSON Schema the response must conform to.
	Schema *Schema

	// MaxTokens bounds the response length. The planner sizes this from
	// its structure analysis.
	MaxTokens int

	// Temperature in [0,1]; zero means deterministic.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role tags a message's sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and defines the JSON shape expected back. Name doubles as
// the tool name (Anthropic) or schema name (OpenAI); kebab-case, e.g.
// "learning-plan".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is the generated payload. Schema'd calls carry validated
	// JSON; plain calls carry the text as a JSON string.
	Content json.RawMessage

	// Usage is the token consumption of this call.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized across backends to one of "end",
	// "max_tokens", "error".
	StopReason string
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
