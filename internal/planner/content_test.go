package planner

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/llm"
	"github.com/abhisek/studywise/internal/progress"
)

func registerTestPlan(p *Planner, subject string) {
	plan := &domain.LessonPlan{
		Subject: subject,
		Lessons: []domain.Lesson{
			{
				ID:    "lesson-1",
				Title: "Linear Equations",
				Concepts: []domain.ConceptInfo{
					{ID: "c1", Name: "Isolating the Variable", Difficulty: domain.DifficultyBeginner, EstimatedPracticeItems: 3},
				},
			},
			{
				ID:    "lesson-2",
				Title: "Systems of Equations",
				Concepts: []domain.ConceptInfo{
					{ID: "c2", Name: "Substitution", Difficulty: domain.DifficultyIntermediate, EstimatedPracticeItems: 4},
				},
			},
		},
	}
	p.Engine().SetPlan(subject, plan, progress.DefaultCriteria(subject))
}

func validMultipleChoiceJSON() json.RawMessage {
	return json.RawMessage(`{
		"question": "What is x in 2x + 4 = 10?",
		"options": ["2", "3", "5", "7"],
		"correctIndex": 1,
		"explanation": "Subtract 4 from both sides, then divide by 2."
	}`)
}

func TestGenerateLessonContent_Success(t *testing.T) {
	p, mock := newTestPlanner(llm.MockResponse{Content: validMultipleChoiceJSON()})
	registerTestPlan(p, "Algebra")

	content, err := p.GenerateLessonContent(t.Context(), "Algebra", "lesson-1", domain.ContentMultipleChoice)
	if err != nil {
		t.Fatalf("generate content: %v", err)
	}
	if content.Type != domain.ContentMultipleChoice {
		t.Errorf("type = %q, want multiple_choice", content.Type)
	}

	var d multipleChoiceData
	if err := json.Unmarshal(content.Data, &d); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if d.CorrectIndex != 1 || len(d.Options) != 4 {
		t.Errorf("data = %+v", d)
	}

	// A content record was appended for variety tracking.
	records := p.Engine().Records("Algebra", "lesson-1")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Type != domain.ContentMultipleChoice || records[0].Topic != "Isolating the Variable" {
		t.Errorf("record = %+v", records[0])
	}
	if records[0].ID == "" {
		t.Error("record has no ID")
	}

	// The lesson now carries the generated content.
	plan, _ := p.Engine().Plan("Algebra")
	if plan.Lessons[0].Content == nil {
		t.Error("lesson content not assigned")
	}

	// Second request is served from cache but still recorded.
	if _, err := p.GenerateLessonContent(t.Context(), "Algebra", "lesson-1", domain.ContentMultipleChoice); err != nil {
		t.Fatalf("cached generate: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("call count = %d, want 1 (cache hit)", mock.CallCount())
	}
	if got := len(p.Engine().Records("Algebra", "lesson-1")); got != 2 {
		t.Errorf("got %d records after cache hit, want 2", got)
	}
}

func TestGenerateLessonContent_DefaultsToCurrentLesson(t *testing.T) {
	p, mock := newTestPlanner(llm.MockResponse{Content: validMultipleChoiceJSON()})
	registerTestPlan(p, "Algebra")

	if _, err := p.GenerateLessonContent(t.Context(), "Algebra", "", domain.ContentMultipleChoice); err != nil {
		t.Fatalf("generate content: %v", err)
	}

	// Prompt targets lesson-1's current concept.
	userMsg := mock.Calls[0].Messages[0].Content
	if !strings.Contains(userMsg, "Isolating the Variable") {
		t.Errorf("prompt missing current concept:\n%s", userMsg)
	}
	if len(p.Engine().Records("Algebra", "lesson-1")) != 1 {
		t.Error("record not attributed to current lesson")
	}
}

func TestGenerateLessonContent_FailureReturnsPlaceholder(t *testing.T) {
	p, _ := newTestPlanner() // empty queue: every call fails
	registerTestPlan(p, "Algebra")

	content, err := p.GenerateLessonContent(t.Context(), "Algebra", "lesson-1", domain.ContentFillBlank)
	if err != nil {
		t.Fatalf("expected placeholder, got error: %v", err)
	}
	if content.Type != domain.ContentRetryPrompt {
		t.Fatalf("type = %q, want retry_prompt", content.Type)
	}

	var directive domain.RetryDirective
	if err := json.Unmarshal(content.Data, &directive); err != nil {
		t.Fatalf("parse directive: %v", err)
	}
	if directive.Action != "retry" {
		t.Errorf("action = %q, want retry", directive.Action)
	}
	if directive.OriginalAction != "generate_lesson_content" {
		t.Errorf("originalAction = %q", directive.OriginalAction)
	}
	if directive.OriginalData != string(domain.ContentFillBlank) {
		t.Errorf("originalData = %q, want fill_blank", directive.OriginalData)
	}

	// Placeholders don't count toward content variety.
	if got := len(p.Engine().Records("Algebra", "lesson-1")); got != 0 {
		t.Errorf("got %d records after failure, want 0", got)
	}
}

func TestGenerateLessonContent_InvalidVariantReturnsPlaceholder(t *testing.T) {
	// Parses fine but fails the variant gate: correctIndex out of range.
	bad := json.RawMessage(`{
		"question": "What is x?",
		"options": ["1", "2"],
		"correctIndex": 5,
		"explanation": ""
	}`)
	p, _ := newTestPlanner(llm.MockResponse{Content: bad})
	registerTestPlan(p, "Algebra")

	content, err := p.GenerateLessonContent(t.Context(), "Algebra", "lesson-1", domain.ContentMultipleChoice)
	if err != nil {
		t.Fatalf("expected placeholder, got error: %v", err)
	}
	if content.Type != domain.ContentRetryPrompt {
		t.Errorf("type = %q, want retry_prompt", content.Type)
	}
}

func TestGenerateLessonContent_InvalidInputs(t *testing.T) {
	p, _ := newTestPlanner(llm.MockResponse{Content: validMultipleChoiceJSON()})
	registerTestPlan(p, "Algebra")

	if _, err := p.GenerateLessonContent(t.Context(), "Chemistry", "lesson-1", domain.ContentMultipleChoice); err == nil {
		t.Error("expected error for unknown subject")
	}
	if _, err := p.GenerateLessonContent(t.Context(), "Algebra", "lesson-99", domain.ContentMultipleChoice); err == nil {
		t.Error("expected error for unknown lesson")
	}
	if _, err := p.GenerateLessonContent(t.Context(), "Algebra", "lesson-1", domain.ContentRetryPrompt); err == nil {
		t.Error("expected error for unrequestable content type")
	}
}

func TestGenerateTutorResponse(t *testing.T) {
	p, mock := newTestPlanner(llm.MockResponse{Content: json.RawMessage(`"Nice work — that one trips up a lot of people."`)})

	got := p.GenerateTutorResponse(t.Context(), "Algebra", "answer_correct", "lesson-1", "")
	if got != "Nice work — that one trips up a lot of people." {
		t.Errorf("response = %q", got)
	}

	// Cached on repeat.
	again := p.GenerateTutorResponse(t.Context(), "Algebra", "answer_correct", "lesson-1", "")
	if again != got {
		t.Errorf("cached response = %q, want %q", again, got)
	}
	if mock.CallCount() != 1 {
		t.Errorf("call count = %d, want 1", mock.CallCount())
	}
}

func TestGenerateTutorResponse_PlaceholderOnFailure(t *testing.T) {
	p, _ := newTestPlanner()

	got := p.GenerateTutorResponse(t.Context(), "Algebra", "answer_wrong", "lesson-1", "")
	if got == "" {
		t.Fatal("expected placeholder text, got empty string")
	}
}

func TestGenerateWelcomeMessage(t *testing.T) {
	p, _ := newTestPlanner(llm.MockResponse{Content: json.RawMessage(`"Welcome! Algebra is where math starts talking in sentences."`)})

	got := p.GenerateWelcomeMessage(t.Context(), "Algebra", true)
	if !strings.Contains(got, "Welcome") {
		t.Errorf("welcome = %q", got)
	}

	// Failure path produces distinct new/returning placeholders.
	p2, _ := newTestPlanner()
	fresh := p2.GenerateWelcomeMessage(t.Context(), "Algebra", true)
	back := p2.GenerateWelcomeMessage(t.Context(), "Algebra", false)
	if fresh == "" || back == "" {
		t.Fatal("expected placeholder text")
	}
	if fresh == back {
		t.Error("new and returning placeholders should differ")
	}
}
