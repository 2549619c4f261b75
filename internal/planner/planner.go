// Package planner is the single entry point for AI-backed content
// generation: learning plans, lesson content, and tutor messages. Every
// generation path runs through the same wrapping — cache lookup, rate
// limit, model call with bounded retry, truncation repair, structural
// validation — and converts failures into typed fallback objects instead
// of surfacing errors to callers.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studywise/internal/cache"
	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/jsonrepair"
	"github.com/abhisek/studywise/internal/llm"
	"github.com/abhisek/studywise/internal/progress"
	"github.com/abhisek/studywise/internal/ratelimit"
)

// Cache entry types.
const (
	cachePlan    = "learning_plan"
	cacheContent = "lesson_content"
	cacheTutor   = "tutor_response"
	cacheWelcome = "welcome_message"
)

// cachedPlan is the plan-cache payload. The derived criteria ride along
// with the plan so a cache hit can re-register a cleared subject without
// re-deriving them.
type cachedPlan struct {
	Plan     *domain.LessonPlan `json:"plan"`
	Criteria domain.Criteria    `json:"criteria"`
}

// Planner orchestrates generation requests against the LLM provider.
// Two concurrent plan requests for the same subject are not coalesced;
// the cache only deduplicates after the first completes.
type Planner struct {
	provider llm.Provider
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	engine   *progress.Engine
	cfg      Config

	now func() time.Time
}

// New creates a Planner. All collaborators are required.
func New(provider llm.Provider, c *cache.Cache, l *ratelimit.Limiter, e *progress.Engine, cfg Config) *Planner {
	return &Planner{
		provider: provider,
		cache:    c,
		limiter:  l,
		engine:   e,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Engine returns the progress engine backing this planner's registry.
func (p *Planner) Engine() *progress.Engine {
	return p.engine
}

// Plan returns the registered plan for a subject.
func (p *Planner) Plan(subject string) (*domain.LessonPlan, bool) {
	return p.engine.Plan(subject)
}

// Subjects returns the subjects with registered state, sorted.
func (p *Planner) Subjects() []string {
	return p.engine.Subjects()
}

// ClearSubject removes a subject's registry state and every cached
// response for it, so a recreated subject starts from fresh generation
// instead of resurrecting from the cache.
func (p *Planner) ClearSubject(subject string) {
	p.engine.ClearSubject(subject)
	// Plan entries are keyed by the bare subject; everything else leads
	// with "subject|".
	p.cache.Delete(cachePlan, subject)
	p.cache.ClearPrefix(subject + "|")
}

// ClearAll removes all registry state and empties the response cache.
func (p *Planner) ClearAll() {
	p.engine.ClearAll()
	p.cache.Clear()
}

// structureAnalysis sizes the main plan call for a subject.
type structureAnalysis struct {
	LessonCount int               `json:"lessonCount"`
	Complexity  domain.Difficulty `json:"complexity"`
	FocusAreas  []string          `json:"focusAreas"`
}

// defaultAnalysis is substituted when the structure-analysis call fails.
func defaultAnalysis() structureAnalysis {
	return structureAnalysis{
		LessonCount: 8,
		Complexity:  domain.DifficultyIntermediate,
	}
}

// CreateLearningPlan generates (or returns the cached) lesson plan for a
// subject, derives advancement criteria, and registers both with the
// progress engine. Generation and validation failures produce a
// single-lesson retry plan, never an error; the only error case is a
// structurally invalid subject.
func (p *Planner) CreateLearningPlan(ctx context.Context, subject string) (*domain.LessonPlan, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}

	if data, ok := p.cache.Get(cachePlan, subject); ok {
		var cached cachedPlan
		if err := json.Unmarshal(data, &cached); err == nil && cached.Plan != nil {
			// Re-registering from cache keeps the criteria that were
			// derived when the plan was generated, not the keyword
			// defaults.
			if _, registered := p.engine.Plan(subject); !registered {
				p.engine.SetPlan(subject, cached.Plan, cached.Criteria)
			}
			return cached.Plan, nil
		}
	}

	analysis := p.analyzeStructure(ctx, subject)

	plan, err := p.generatePlan(ctx, subject, analysis)
	if err != nil {
		plan = fallbackPlan(subject)
	}

	criteria := p.deriveCriteria(ctx, subject)
	p.engine.SetPlan(subject, plan, criteria)

	// Fallback plans are not cached: a later request should get a fresh
	// shot at real generation instead of the cached retry stub.
	if err == nil {
		if b, merr := json.Marshal(cachedPlan{Plan: plan, Criteria: criteria}); merr == nil {
			p.cache.Set(cachePlan, subject, b)
		}
	}

	return plan, nil
}

// analyzeStructure runs the lightweight pre-call that recommends a lesson
// count and complexity tier. It never fails: any error substitutes the
// deterministic default (8 lessons, intermediate).
func (p *Planner) analyzeStructure(ctx context.Context, subject string) structureAnalysis {
	req := llm.Request{
		System: planSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildStructureAnalysisMessage(subject)},
		},
		Schema:      StructureAnalysisSchema,
		MaxTokens:   p.cfg.AnalysisMaxTokens,
		Temperature: p.cfg.Temperature,
	}

	raw, err := p.generateJSON(ctx, llm.PurposeStructureAnalysis, req)
	if err != nil {
		return defaultAnalysis()
	}

	var out structureAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return defaultAnalysis()
	}

	if out.LessonCount < 6 {
		out.LessonCount = 6
	}
	if out.LessonCount > 15 {
		out.LessonCount = 15
	}
	switch out.Complexity {
	case domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced:
	default:
		out.Complexity = domain.DifficultyIntermediate
	}
	return out
}

// planOutput mirrors the learning-plan schema.
type planOutput struct {
	Subject string         `json:"subject"`
	Lessons []lessonOutput `json:"lessons"`
}

type lessonOutput struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Concepts    []conceptOutput `json:"concepts"`
}

type conceptOutput struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	Difficulty             string `json:"difficulty"`
	EstimatedPracticeItems int    `json:"estimatedPracticeItems"`
}

func (p *Planner) generatePlan(ctx context.Context, subject string, analysis structureAnalysis) (*domain.LessonPlan, error) {
	req := llm.Request{
		System: planSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPlanUserMessage(subject, analysis)},
		},
		Schema:      LearningPlanSchema,
		MaxTokens:   p.cfg.planTokenBudget(analysis.LessonCount),
		Temperature: p.cfg.Temperature,
	}

	raw, err := p.generateJSON(ctx, llm.PurposeLearningPlan, req)
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}

	var out planOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}

	if len(out.Lessons) < domain.MinPlanLessons {
		return nil, &ErrInvalidPlanStructure{
			Subject: subject,
			Reason:  fmt.Sprintf("got %d lessons, need at least %d", len(out.Lessons), domain.MinPlanLessons),
		}
	}

	plan := &domain.LessonPlan{Subject: subject}
	for i, lo := range out.Lessons {
		lesson := domain.Lesson{
			ID:          lo.ID,
			Title:       lo.Title,
			Description: lo.Description,
		}
		if lesson.ID == "" {
			lesson.ID = fmt.Sprintf("lesson-%d", i+1)
		}
		if lesson.Title == "" {
			lesson.Title = fmt.Sprintf("Lesson %d", i+1)
		}

		for _, co := range lo.Concepts {
			concept := domain.ConceptInfo{
				ID:                     co.ID,
				Name:                   co.Name,
				Description:            co.Description,
				Difficulty:             domain.Difficulty(co.Difficulty),
				EstimatedPracticeItems: co.EstimatedPracticeItems,
			}
			if concept.ID == "" {
				concept.ID = uuid.NewString()
			}
			if concept.Name == "" {
				continue
			}
			switch concept.Difficulty {
			case domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced:
			default:
				concept.Difficulty = analysis.Complexity
			}
			if concept.EstimatedPracticeItems < 0 {
				concept.EstimatedPracticeItems = 0
			}
			lesson.Concepts = append(lesson.Concepts, concept)
		}

		// A lesson must always have at least one concept to target.
		if len(lesson.Concepts) == 0 {
			lesson.Concepts = []domain.ConceptInfo{retryConcept(lesson.Title)}
		}

		plan.Lessons = append(plan.Lessons, lesson)
	}

	return plan, nil
}

// retryConcept is the synthetic concept filled into lessons that arrived
// without any.
func retryConcept(topic string) domain.ConceptInfo {
	return domain.ConceptInfo{
		ID:                     uuid.NewString(),
		Name:                   topic,
		Description:            fmt.Sprintf("Review %s and regenerate its concepts.", topic),
		Difficulty:             domain.DifficultyIntermediate,
		EstimatedPracticeItems: 1,
	}
}

// fallbackPlan is the single-lesson retry plan returned when plan
// generation or validation fails. Its lesson content is a retry directive
// the caller renders directly.
func fallbackPlan(subject string) *domain.LessonPlan {
	directive, _ := json.Marshal(domain.RetryDirective{
		Type:           domain.ContentRetryPrompt,
		Message:        fmt.Sprintf("We couldn't build a full plan for %s just now. Give it another try.", subject),
		Action:         "retry",
		OriginalAction: "create_learning_plan",
		OriginalData:   subject,
	})

	return &domain.LessonPlan{
		Subject: subject,
		Lessons: []domain.Lesson{
			{
				ID:          "lesson-1",
				Title:       "Let's Try Again",
				Description: fmt.Sprintf("Plan generation for %s didn't complete.", subject),
				Concepts:    []domain.ConceptInfo{retryConcept(subject)},
				Content: &domain.LessonContent{
					Type: domain.ContentRetryPrompt,
					Data: directive,
				},
			},
		},
	}
}

// deriveCriteria asks the model for subject-tuned advancement criteria.
// Any failure, or out-of-range values, silently substitutes the keyword
// classifier defaults — the engine is never left without usable criteria.
func (p *Planner) deriveCriteria(ctx context.Context, subject string) domain.Criteria {
	req := llm.Request{
		System: planSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildCriteriaMessage(subject)},
		},
		Schema:      CriteriaSchema,
		MaxTokens:   p.cfg.AnalysisMaxTokens,
		Temperature: p.cfg.Temperature,
	}

	raw, err := p.generateJSON(ctx, llm.PurposeCriteria, req)
	if err != nil {
		return progress.DefaultCriteria(subject)
	}

	var c domain.Criteria
	if err := json.Unmarshal(raw, &c); err != nil {
		return progress.DefaultCriteria(subject)
	}
	if !usableCriteria(c) {
		return progress.DefaultCriteria(subject)
	}
	return c
}

func usableCriteria(c domain.Criteria) bool {
	if c.MinCorrectAnswers <= 0 || c.MinTotalAttempts <= 0 {
		return false
	}
	if c.MinAccuracy <= 0 || c.MinAccuracy > 1 {
		return false
	}
	f := c.AdaptiveFactors
	return f.DifficultyAdjustment > 0 && f.EngagementWeight > 0 && f.RetentionFactor > 0
}

// generateJSON paces, issues, and repairs a JSON-producing model call.
// Truncated (max tokens) and schema-invalid responses still carry partial
// content; that content goes through the repair pipeline before the call
// is given up on.
func (p *Planner) generateJSON(ctx context.Context, purpose string, req llm.Request) (json.RawMessage, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	if err := p.limiter.Throttle(ctx); err != nil {
		return nil, err
	}

	resp, err := p.provider.Generate(ctx, req)
	if err == nil {
		return resp.Content, nil
	}

	var partial string
	var maxTokens *llm.ErrMaxTokensExceeded
	var invalid *llm.ErrInvalidResponse
	switch {
	case errors.As(err, &maxTokens):
		partial = string(maxTokens.Content)
	case errors.As(err, &invalid):
		partial = string(invalid.Content)
	default:
		return nil, err
	}
	if strings.TrimSpace(partial) == "" {
		return nil, err
	}

	repaired, rerr := jsonrepair.Repair(partial)
	if rerr != nil {
		return nil, err
	}
	return json.RawMessage(repaired), nil
}

// generateText paces and issues a plain-text model call.
func (p *Planner) generateText(ctx context.Context, purpose string, req llm.Request) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	if err := p.limiter.Throttle(ctx); err != nil {
		return "", err
	}

	resp, err := p.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	// Schemaless responses arrive as a JSON-encoded string.
	var text string
	if err := json.Unmarshal(resp.Content, &text); err != nil {
		text = string(resp.Content)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
