package planner

// Config holds content generation settings.
type Config struct {
	// AnalysisMaxTokens bounds the lightweight structure-analysis call.
	AnalysisMaxTokens int

	// PlanTokensPerLesson scales the main plan call's token budget by the
	// lesson count the structure analysis recommended.
	PlanTokensPerLesson int

	// PlanTokenFloor and PlanTokenCeiling clamp the plan token budget.
	PlanTokenFloor   int
	PlanTokenCeiling int

	// ContentMaxTokens bounds a single lesson-content generation.
	ContentMaxTokens int

	// ChatMaxTokens bounds tutor and welcome responses.
	ChatMaxTokens int

	Temperature float64
}

// DefaultConfig returns sensible defaults for content generation.
func DefaultConfig() Config {
	return Config{
		AnalysisMaxTokens:   256,
		PlanTokensPerLesson: 350,
		PlanTokenFloor:      3000,
		PlanTokenCeiling:    8000,
		ContentMaxTokens:    1024,
		ChatMaxTokens:       512,
		Temperature:         0.7,
	}
}

// planTokenBudget picks the token budget for the main plan call from the
// recommended lesson count. Rich subjects get more room so lesson arrays
// don't truncate; simple ones don't waste budget.
func (c Config) planTokenBudget(lessonCount int) int {
	budget := lessonCount * c.PlanTokensPerLesson
	if budget < c.PlanTokenFloor {
		return c.PlanTokenFloor
	}
	if budget > c.PlanTokenCeiling {
		return c.PlanTokenCeiling
	}
	return budget
}
