// Package domain holds the tutoring data model shared by the content
// planner and the progress engine. JSON shapes here are the stable
// contract returned to callers and persisted in snapshots.
package domain

import (
	"encoding/json"
	"time"
)

// Difficulty grades a concept.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// MinPlanLessons is the minimum lesson count a generated plan must have
// to be accepted. Shorter plans are replaced by a retry fallback.
const MinPlanLessons = 3

// ConceptInfo is a sub-topic within a lesson. Content generation targets
// the lesson's current concept.
type ConceptInfo struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Description            string     `json:"description"`
	Difficulty             Difficulty `json:"difficulty"`
	EstimatedPracticeItems int        `json:"estimatedPracticeItems"`
}

// Lesson is one step of a learning plan. Content is generated lazily by
// the planner, not fixed at plan-creation time. Concepts is never empty;
// a plan arriving without concepts gets a synthetic retry concept.
type Lesson struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Completed           bool           `json:"completed"`
	Concepts            []ConceptInfo  `json:"concepts"`
	CurrentConceptIndex int            `json:"currentConceptIndex"`
	Content             *LessonContent `json:"content,omitempty"`
}

// CurrentConcept returns the concept the lesson is positioned on.
// The cursor is clamped to the valid range.
func (l *Lesson) CurrentConcept() ConceptInfo {
	if len(l.Concepts) == 0 {
		return ConceptInfo{}
	}
	i := l.CurrentConceptIndex
	if i < 0 {
		i = 0
	}
	if i >= len(l.Concepts) {
		i = len(l.Concepts) - 1
	}
	return l.Concepts[i]
}

// LessonPlan is the ordered curriculum for a subject.
// Invariant once created: lessons non-empty and
// 0 <= CurrentLessonIndex < len(Lessons).
type LessonPlan struct {
	Subject            string   `json:"subject"`
	Lessons            []Lesson `json:"lessons"`
	CurrentLessonIndex int      `json:"currentLessonIndex"`
}

// CurrentLesson returns a pointer to the lesson under the cursor, or nil
// for an empty plan.
func (p *LessonPlan) CurrentLesson() *Lesson {
	if len(p.Lessons) == 0 {
		return nil
	}
	i := p.CurrentLessonIndex
	if i < 0 || i >= len(p.Lessons) {
		return nil
	}
	return &p.Lessons[i]
}

// AtLastLesson reports whether the cursor sits on the final lesson.
func (p *LessonPlan) AtLastLesson() bool {
	return len(p.Lessons) > 0 && p.CurrentLessonIndex == len(p.Lessons)-1
}

// Clone returns a deep copy of the plan. The progress engine hands out
// clones so callers cannot reach its registry state through a shared
// pointer.
func (p *LessonPlan) Clone() *LessonPlan {
	if p == nil {
		return nil
	}
	out := &LessonPlan{
		Subject:            p.Subject,
		CurrentLessonIndex: p.CurrentLessonIndex,
	}
	if p.Lessons != nil {
		out.Lessons = make([]Lesson, len(p.Lessons))
		for i := range p.Lessons {
			out.Lessons[i] = p.Lessons[i].clone()
		}
	}
	return out
}

func (l Lesson) clone() Lesson {
	out := l
	if l.Concepts != nil {
		out.Concepts = make([]ConceptInfo, len(l.Concepts))
		copy(out.Concepts, l.Concepts)
	}
	if l.Content != nil {
		out.Content = l.Content.Clone()
	}
	return out
}

// ContentType tags a generated content variant. The set is closed: model
// output that does not validate into one of these is rejected and replaced
// with retry-placeholder content.
type ContentType string

const (
	ContentMultipleChoice ContentType = "multiple_choice"
	ContentConceptCard    ContentType = "concept_card"
	ContentStepSolver     ContentType = "step_solver"
	ContentFillBlank      ContentType = "fill_blank"
	ContentExplainer      ContentType = "explainer"
	ContentRetryPrompt    ContentType = "retry_prompt"
)

// ContentTypes lists the generatable variants (everything except the
// retry placeholder).
var ContentTypes = []ContentType{
	ContentMultipleChoice,
	ContentConceptCard,
	ContentStepSolver,
	ContentFillBlank,
	ContentExplainer,
}

// LessonContent is a generated exercise or explanation for a lesson.
// Data holds the variant payload, already validated against the variant's
// schema.
type LessonContent struct {
	Type ContentType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Clone returns a deep copy, including the raw payload bytes.
func (c *LessonContent) Clone() *LessonContent {
	if c == nil {
		return nil
	}
	out := &LessonContent{Type: c.Type}
	if c.Data != nil {
		out.Data = make(json.RawMessage, len(c.Data))
		copy(out.Data, c.Data)
	}
	return out
}

// RetryDirective is the payload of retry-placeholder content. Callers
// render it directly and offer a retry; it is a first-class content type,
// not an error path.
type RetryDirective struct {
	Type           ContentType `json:"type"` // always ContentRetryPrompt
	Message        string      `json:"message"`
	Action         string      `json:"action"` // always "retry"
	OriginalAction string      `json:"originalAction"`
	OriginalData   string      `json:"originalData"`
}

// LearningProgress tracks mastery counters for the current lesson of a
// subject. Counters only grow; they reset to zero when the lesson
// advances. Invariant: CorrectAnswers <= TotalAttempts.
type LearningProgress struct {
	CorrectAnswers int  `json:"correctAnswers"`
	TotalAttempts  int  `json:"totalAttempts"`
	NeedsReview    bool `json:"needsReview"`
	ReadyForNext   bool `json:"readyForNext"`
}

// Accuracy returns CorrectAnswers/TotalAttempts, or 0 before any attempt.
func (p LearningProgress) Accuracy() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.TotalAttempts)
}

// AdaptiveFactors tune how criteria respond to difficulty and engagement.
type AdaptiveFactors struct {
	DifficultyAdjustment float64 `json:"difficultyAdjustment"`
	EngagementWeight     float64 `json:"engagementWeight"`
	RetentionFactor      float64 `json:"retentionFactor"`
}

// Criteria is the advancement bar for a subject, derived once at
// plan-creation time (AI analysis or keyword fallback) and held for the
// session.
type Criteria struct {
	MinCorrectAnswers int             `json:"minCorrectAnswers"`
	MinTotalAttempts  int             `json:"minTotalAttempts"`
	MinAccuracy       float64         `json:"minAccuracy"`
	AdaptiveFactors   AdaptiveFactors `json:"adaptiveFactors"`
}

// ContentRecord is one entry of the per-(subject, lesson) generated
// content log, used for variety and engagement measurement. The log is
// cleared when its lesson completes or the subject's data is cleared.
type ContentRecord struct {
	ID         string      `json:"id"`
	Type       ContentType `json:"type"`
	Topic      string      `json:"topic"`
	Difficulty Difficulty  `json:"difficulty"`
	Timestamp  time.Time   `json:"timestamp"`
}
