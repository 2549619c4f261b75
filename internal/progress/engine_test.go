package progress

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/studywise/internal/domain"
)

func testPlan(subject string, lessonCount int) *domain.LessonPlan {
	lessons := make([]domain.Lesson, lessonCount)
	for i := range lessons {
		lessons[i] = domain.Lesson{
			ID:    fmt.Sprintf("lesson-%d", i+1),
			Title: fmt.Sprintf("Lesson %d", i+1),
			Concepts: []domain.ConceptInfo{
				{ID: fmt.Sprintf("concept-%d-1", i+1), Name: "Concept", Difficulty: domain.DifficultyBeginner},
			},
		}
	}
	return &domain.LessonPlan{Subject: subject, Lessons: lessons}
}

func record(typ domain.ContentType, at time.Time) domain.ContentRecord {
	return domain.ContentRecord{
		ID:        "rec",
		Type:      typ,
		Topic:     "topic",
		Timestamp: at,
	}
}

func TestUpdateProgress_Monotonicity(t *testing.T) {
	e := NewEngine(nil)
	e.SetPlan("History", testPlan("History", 3), DefaultCriteria("History"))

	outcomes := []bool{true, false, true, true, false, false, true}
	for _, correct := range outcomes {
		p := e.UpdateProgress("History", correct, "")
		if p.CorrectAnswers > p.TotalAttempts {
			t.Fatalf("invariant violated: correct=%d > total=%d", p.CorrectAnswers, p.TotalAttempts)
		}
	}

	p := e.Progress("History")
	if p.TotalAttempts != len(outcomes) {
		t.Fatalf("expected %d attempts, got %d", len(outcomes), p.TotalAttempts)
	}
	if p.CorrectAnswers != 4 {
		t.Fatalf("expected 4 correct, got %d", p.CorrectAnswers)
	}
}

func TestUpdateProgress_UnknownSubjectGetsDefaults(t *testing.T) {
	e := NewEngine(nil)

	p := e.UpdateProgress("Astronomy Basics", true, "lesson-1")
	if p.TotalAttempts != 1 || p.CorrectAnswers != 1 {
		t.Fatalf("unexpected progress: %+v", p)
	}

	c := e.Criteria("Astronomy Basics")
	if c.MinCorrectAnswers == 0 {
		t.Fatal("expected usable default criteria for unknown subject")
	}
}

func TestAdvance_ResetsProgressAndClearsLog(t *testing.T) {
	e := NewEngine(nil)
	e.SetPlan("Biology", testPlan("Biology", 3), DefaultCriteria("Biology"))

	e.UpdateProgress("Biology", true, "")
	e.UpdateProgress("Biology", true, "")
	e.RecordContent("Biology", "", record(domain.ContentMultipleChoice, time.Now()))

	if !e.AdvanceToNextLesson("Biology") {
		t.Fatal("expected advance to succeed")
	}

	p := e.Progress("Biology")
	if p != (domain.LearningProgress{}) {
		t.Fatalf("expected zeroed progress after advance, got %+v", p)
	}

	plan, _ := e.Plan("Biology")
	if plan.CurrentLessonIndex != 1 {
		t.Fatalf("expected cursor at 1, got %d", plan.CurrentLessonIndex)
	}
	if !plan.Lessons[0].Completed {
		t.Fatal("expected first lesson marked completed")
	}
	if got := e.Records("Biology", "lesson-1"); len(got) != 0 {
		t.Fatalf("expected cleared content log, got %d records", len(got))
	}
}

func TestAdvance_TerminalAtLastLesson(t *testing.T) {
	e := NewEngine(nil)
	e.SetPlan("Biology", testPlan("Biology", 2), DefaultCriteria("Biology"))

	if !e.AdvanceToNextLesson("Biology") {
		t.Fatal("expected first advance to succeed")
	}

	e.UpdateProgress("Biology", true, "")
	before := e.Progress("Biology")

	if e.AdvanceToNextLesson("Biology") {
		t.Fatal("expected advance at last lesson to fail")
	}
	if e.Progress("Biology") != before {
		t.Fatal("expected state unchanged after failed advance")
	}
	plan, _ := e.Plan("Biology")
	if plan.CurrentLessonIndex != 1 {
		t.Fatalf("expected cursor unchanged at 1, got %d", plan.CurrentLessonIndex)
	}
}

func TestAdvance_NoPlan(t *testing.T) {
	e := NewEngine(nil)
	if e.AdvanceToNextLesson("Nothing Registered") {
		t.Fatal("expected advance without a plan to fail")
	}
}

// The variety gate scenario: a math/science subject at 80% accuracy with
// two same-typed content records is held back until a second content type
// appears.
func TestReadyForNext_ContentVarietyGate(t *testing.T) {
	now := time.Now()
	e := NewEngine(nil)
	e.now = func() time.Time { return now }

	subject := "Quadratic Equations"
	e.SetPlan(subject, testPlan(subject, 3), DefaultCriteria(subject))

	e.RecordContent(subject, "", record(domain.ContentMultipleChoice, now))
	e.RecordContent(subject, "", record(domain.ContentMultipleChoice, now))

	// 4 correct of 5 attempts: accuracy 0.8 meets the math/science bar.
	for _, correct := range []bool{true, true, true, false, true} {
		e.UpdateProgress(subject, correct, "")
	}

	if e.Progress(subject).ReadyForNext {
		t.Fatal("expected not ready: two records of one type fail the variety gate")
	}

	e.RecordContent(subject, "", record(domain.ContentFillBlank, now))

	if !e.Progress(subject).ReadyForNext {
		t.Fatal("expected ready after a second content type")
	}
	if e.Progress(subject).NeedsReview {
		t.Fatal("expected no review flag at 80% accuracy")
	}
}

func TestNeedsReview_LowAccuracy(t *testing.T) {
	e := NewEngine(nil)
	subject := "Algebra"
	e.SetPlan(subject, testPlan(subject, 3), DefaultCriteria(subject))

	// 1 of 5: accuracy 0.2, far below 80% of the adjusted floor.
	for _, correct := range []bool{true, false, false, false, false} {
		e.UpdateProgress(subject, correct, "")
	}

	p := e.Progress(subject)
	if !p.NeedsReview {
		t.Fatal("expected review flag at 20% accuracy")
	}
	if p.ReadyForNext {
		t.Fatal("expected not ready at 20% accuracy")
	}
}

func TestPlanReturnsDetachedCopy(t *testing.T) {
	e := NewEngine(nil)
	e.SetPlan("Physics", testPlan("Physics", 3), DefaultCriteria("Physics"))

	plan, _ := e.Plan("Physics")
	plan.CurrentLessonIndex = 2
	plan.Lessons[0].Completed = true
	plan.Lessons[0].Concepts[0].Name = "mangled"

	fresh, _ := e.Plan("Physics")
	if fresh.CurrentLessonIndex != 0 {
		t.Fatalf("cursor = %d, want 0: registry reached through returned plan", fresh.CurrentLessonIndex)
	}
	if fresh.Lessons[0].Completed {
		t.Fatal("completion flag reached the registry")
	}
	if fresh.Lessons[0].Concepts[0].Name == "mangled" {
		t.Fatal("concept mutation reached the registry")
	}
}

func TestSetPlanCopiesInput(t *testing.T) {
	e := NewEngine(nil)
	plan := testPlan("Physics", 2)
	e.SetPlan("Physics", plan, DefaultCriteria("Physics"))

	plan.Lessons[1].Title = "mangled"

	got, _ := e.Plan("Physics")
	if got.Lessons[1].Title == "mangled" {
		t.Fatal("caller's mutation reached the registry")
	}
}

func TestSetLessonContent(t *testing.T) {
	e := NewEngine(nil)
	e.SetPlan("Physics", testPlan("Physics", 2), DefaultCriteria("Physics"))

	content := &domain.LessonContent{
		Type: domain.ContentConceptCard,
		Data: json.RawMessage(`{"title":"Forces"}`),
	}
	if !e.SetLessonContent("Physics", "lesson-2", content) {
		t.Fatal("expected set on known lesson to succeed")
	}
	if e.SetLessonContent("Physics", "lesson-99", content) {
		t.Fatal("expected set on unknown lesson to fail")
	}
	if e.SetLessonContent("Chemistry", "lesson-1", content) {
		t.Fatal("expected set on unregistered subject to fail")
	}

	plan, _ := e.Plan("Physics")
	got := plan.Lessons[1].Content
	if got == nil || got.Type != domain.ContentConceptCard {
		t.Fatalf("lesson content = %+v", got)
	}
}

func TestClearSubject(t *testing.T) {
	e := NewEngine(nil)
	e.SetPlan("Physics", testPlan("Physics", 3), DefaultCriteria("Physics"))
	e.SetPlan("French", testPlan("French", 3), DefaultCriteria("French"))

	e.ClearSubject("Physics")

	if _, ok := e.Plan("Physics"); ok {
		t.Fatal("expected Physics cleared")
	}
	if _, ok := e.Plan("French"); !ok {
		t.Fatal("expected French untouched")
	}

	e.ClearAll()
	if len(e.Subjects()) != 0 {
		t.Fatal("expected no subjects after ClearAll")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := NewEngine(nil)
	subject := "World History"
	e.SetPlan(subject, testPlan(subject, 3), DefaultCriteria(subject))
	e.UpdateProgress(subject, true, "")
	e.RecordContent(subject, "", record(domain.ContentConceptCard, time.Now()))

	snap := e.SnapshotData()

	restored := NewEngine(snap)
	plan, ok := restored.Plan(subject)
	if !ok || len(plan.Lessons) != 3 {
		t.Fatal("expected plan restored from snapshot")
	}
	if restored.Progress(subject).TotalAttempts != 1 {
		t.Fatal("expected progress restored from snapshot")
	}
	if len(restored.Records(subject, "lesson-1")) != 1 {
		t.Fatal("expected content log restored from snapshot")
	}
}
