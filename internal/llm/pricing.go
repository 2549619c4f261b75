package llm

// ModelCost is per-million-token pricing, USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost is the USD total for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns pricing for a model ID, or nil when the model is
// not in the table. `llm stats` prints "?" for unknowns rather than
// guessing.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models reachable through the STUDYWISE_* config
// aliases (claude-haiku, gpt-4o-mini, gemini-flash and friends) plus
// their dated IDs, since providers report the dated ID in responses.
// Prices from models.dev, last checked 2026-02-15.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-haiku-4-5":           {1, 5},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-0":          {3, 15},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-sonnet-4-5":          {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},

	// OpenAI
	"gpt-4o":      {2.5, 10},
	"gpt-4o-mini": {0.15, 0.6},
	"gpt-5-mini":  {0.25, 2},
	"gpt-5-nano":  {0.05, 0.4},

	// Google
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-flash-latest":   {0.3, 2.5},

	// OpenRouter default (free experimental tier)
	"google/gemini-2.0-flash-exp": {0, 0},
}
