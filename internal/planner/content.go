package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/llm"
)

// GenerateLessonContent generates one piece of content for a lesson,
// targeting the lesson's current concept. Generation failures of any kind
// (transport, repair exhaustion, variant validation) return retry-placeholder
// content with a nil error; callers render the placeholder directly. A
// non-nil error means the input itself was invalid: unknown subject,
// unknown lesson, or an unrequestable content type.
func (p *Planner) GenerateLessonContent(ctx context.Context, subject, lessonID string, contentType domain.ContentType) (*domain.LessonContent, error) {
	plan, ok := p.engine.Plan(subject)
	if !ok {
		return nil, fmt.Errorf("no learning plan for %q", subject)
	}

	lesson := findLesson(plan, lessonID)
	if lesson == nil {
		return nil, fmt.Errorf("lesson %q not found in plan for %q", lessonID, subject)
	}

	if contentSchemaFor(contentType) == nil {
		return nil, fmt.Errorf("content type %q is not generatable", contentType)
	}

	concept := lesson.CurrentConcept()
	cacheParams := strings.Join([]string{subject, lesson.ID, concept.ID, string(contentType)}, "|")

	if data, ok := p.cache.Get(cacheContent, cacheParams); ok {
		content := &domain.LessonContent{Type: contentType, Data: data}
		p.recordContent(subject, lesson, concept, contentType)
		p.engine.SetLessonContent(subject, lesson.ID, content)
		return content, nil
	}

	req := llm.Request{
		System: contentSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildContentUserMessage(subject, lesson, concept, contentType)},
		},
		Schema:      contentSchemaFor(contentType),
		MaxTokens:   p.cfg.ContentMaxTokens,
		Temperature: p.cfg.Temperature,
	}

	raw, err := p.generateJSON(ctx, llm.PurposeLessonContent, req)
	if err != nil {
		return retryContent(contentType, lesson.Title), nil
	}

	// The repair path can hand back JSON that parses but no longer matches
	// the variant shape. Nothing untyped crosses this boundary.
	if err := validateVariant(contentType, raw); err != nil {
		return retryContent(contentType, lesson.Title), nil
	}

	content := &domain.LessonContent{Type: contentType, Data: raw}
	p.recordContent(subject, lesson, concept, contentType)
	p.engine.SetLessonContent(subject, lesson.ID, content)
	p.cache.Set(cacheContent, cacheParams, raw)
	return content, nil
}

// GenerateTutorResponse produces a short tutor reaction to a learner
// event. It never fails: generation errors yield a canned encouragement.
func (p *Planner) GenerateTutorResponse(ctx context.Context, subject, action, data, contextNote string) string {
	cacheParams := strings.Join([]string{subject, action, data, contextNote}, "|")
	if cached, ok := p.cache.Get(cacheTutor, cacheParams); ok {
		var text string
		if json.Unmarshal(cached, &text) == nil && text != "" {
			return text
		}
	}

	req := llm.Request{
		System: tutorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildTutorMessage(subject, action, data, contextNote)},
		},
		MaxTokens:   p.cfg.ChatMaxTokens,
		Temperature: p.cfg.Temperature,
	}

	text, err := p.generateText(ctx, llm.PurposeTutorChat, req)
	if err != nil {
		return "Let's keep going — try the next one and we'll work through it together."
	}

	if b, merr := json.Marshal(text); merr == nil {
		p.cache.Set(cacheTutor, cacheParams, b)
	}
	return text
}

// GenerateWelcomeMessage produces the greeting shown when a learner opens
// a subject. Placeholder text on failure, never an error.
func (p *Planner) GenerateWelcomeMessage(ctx context.Context, subject string, isNew bool) string {
	cacheParams := fmt.Sprintf("%s|new=%t", subject, isNew)
	if cached, ok := p.cache.Get(cacheWelcome, cacheParams); ok {
		var text string
		if json.Unmarshal(cached, &text) == nil && text != "" {
			return text
		}
	}

	req := llm.Request{
		System: tutorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildWelcomeMessage(subject, isNew)},
		},
		MaxTokens:   p.cfg.ChatMaxTokens,
		Temperature: p.cfg.Temperature,
	}

	text, err := p.generateText(ctx, llm.PurposeWelcome, req)
	if err != nil {
		if isNew {
			return fmt.Sprintf("Welcome! Ready to start learning %s? Let's dive into your first lesson.", subject)
		}
		return fmt.Sprintf("Welcome back to %s. Let's pick up where you left off.", subject)
	}

	if b, merr := json.Marshal(text); merr == nil {
		p.cache.Set(cacheWelcome, cacheParams, b)
	}
	return text
}

// recordContent appends a generated-content record for variety tracking.
func (p *Planner) recordContent(subject string, lesson *domain.Lesson, concept domain.ConceptInfo, contentType domain.ContentType) {
	p.engine.RecordContent(subject, lesson.ID, domain.ContentRecord{
		ID:         uuid.NewString(),
		Type:       contentType,
		Topic:      concept.Name,
		Difficulty: concept.Difficulty,
		Timestamp:  p.now(),
	})
}

// retryContent builds the retry-placeholder returned when generation
// fails. It is a first-class content type, not an error path.
func retryContent(originalType domain.ContentType, topic string) *domain.LessonContent {
	directive, _ := json.Marshal(domain.RetryDirective{
		Type:           domain.ContentRetryPrompt,
		Message:        fmt.Sprintf("Content for %s didn't come through. Want to try again?", topic),
		Action:         "retry",
		OriginalAction: "generate_lesson_content",
		OriginalData:   string(originalType),
	})
	return &domain.LessonContent{
		Type: domain.ContentRetryPrompt,
		Data: directive,
	}
}

// findLesson resolves a lesson by ID; an empty ID means the plan's
// current lesson.
func findLesson(plan *domain.LessonPlan, lessonID string) *domain.Lesson {
	if lessonID == "" {
		return plan.CurrentLesson()
	}
	for i := range plan.Lessons {
		if plan.Lessons[i].ID == lessonID {
			return &plan.Lessons[i]
		}
	}
	return nil
}

// Variant payload shapes. Validation here is the closed-set gate: a
// payload must unmarshal into its variant and carry the required fields.

type multipleChoiceData struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

type conceptCardData struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Example   string   `json:"example"`
}

type stepSolverData struct {
	Problem string   `json:"problem"`
	Steps   []string `json:"steps"`
	Answer  string   `json:"answer"`
}

type fillBlankData struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Hint   string `json:"hint"`
}

type explainerData struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
	Analogy     string `json:"analogy"`
}

func validateVariant(t domain.ContentType, raw json.RawMessage) error {
	switch t {
	case domain.ContentMultipleChoice:
		var d multipleChoiceData
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		if d.Question == "" || len(d.Options) < 2 {
			return fmt.Errorf("multiple choice missing question or options")
		}
		if d.CorrectIndex < 0 || d.CorrectIndex >= len(d.Options) {
			return fmt.Errorf("correctIndex %d out of range", d.CorrectIndex)
		}
	case domain.ContentConceptCard:
		var d conceptCardData
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		if d.Title == "" || d.Summary == "" || len(d.KeyPoints) == 0 {
			return fmt.Errorf("concept card missing title, summary, or key points")
		}
	case domain.ContentStepSolver:
		var d stepSolverData
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		if d.Problem == "" || len(d.Steps) == 0 || d.Answer == "" {
			return fmt.Errorf("step solver missing problem, steps, or answer")
		}
	case domain.ContentFillBlank:
		var d fillBlankData
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		if d.Text == "" || d.Answer == "" {
			return fmt.Errorf("fill blank missing text or answer")
		}
		if !strings.Contains(d.Text, "___") {
			return fmt.Errorf("fill blank text has no blank marker")
		}
	case domain.ContentExplainer:
		var d explainerData
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		if d.Topic == "" || d.Explanation == "" {
			return fmt.Errorf("explainer missing topic or explanation")
		}
	default:
		return fmt.Errorf("unknown content type %q", t)
	}
	return nil
}
