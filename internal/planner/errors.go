package planner

import "fmt"

// ErrInvalidPlanStructure indicates a parsed plan response failed
// structural validation (missing lessons, too few lessons). It is never
// surfaced to callers; CreateLearningPlan converts it into a retry plan.
type ErrInvalidPlanStructure struct {
	Subject string
	Reason  string
}

func (e *ErrInvalidPlanStructure) Error() string {
	return fmt.Sprintf("invalid plan structure for %q: %s", e.Subject, e.Reason)
}
