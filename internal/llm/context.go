package llm

import "context"

// Purpose labels for the generation paths StudyWise runs. The planner
// attaches one to every request context; the logging decorator copies it
// into the event log so `studywise llm stats` can break usage down per
// concern.
const (
	PurposeStructureAnalysis = "structure-analysis"
	PurposeLearningPlan      = "learning-plan"
	PurposeCriteria          = "criteria"
	PurposeLessonContent     = "lesson-content"
	PurposeTutorChat         = "tutor-chat"
	PurposeWelcome           = "welcome"
)

type ctxKey int

const purposeCtxKey ctxKey = iota

// WithPurpose labels the context with the generation purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeCtxKey, purpose)
}

// PurposeFrom reads the purpose label back, or "unknown" when the caller
// never set one.
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeCtxKey).(string); ok && p != "" {
		return p
	}
	return "unknown"
}
