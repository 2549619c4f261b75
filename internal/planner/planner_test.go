package planner

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abhisek/studywise/internal/cache"
	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/llm"
	"github.com/abhisek/studywise/internal/progress"
	"github.com/abhisek/studywise/internal/ratelimit"
)

func newTestPlanner(responses ...llm.MockResponse) (*Planner, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	p := New(mock, cache.New(), ratelimit.New(time.Nanosecond), progress.NewEngine(nil), DefaultConfig())
	return p, mock
}

func analysisJSON() json.RawMessage {
	return json.RawMessage(`{
		"lessonCount": 6,
		"complexity": "intermediate",
		"focusAreas": ["equations", "graphing"]
	}`)
}

func planJSON() json.RawMessage {
	return json.RawMessage(`{
		"subject": "Algebra",
		"lessons": [
			{
				"id": "lesson-1",
				"title": "Linear Equations",
				"description": "Solving for one unknown.",
				"concepts": [
					{"id": "c1", "name": "Isolating the Variable", "description": "Moving terms across the equals sign.", "difficulty": "beginner", "estimatedPracticeItems": 3}
				]
			},
			{
				"id": "lesson-2",
				"title": "Systems of Equations",
				"description": "Two equations, two unknowns.",
				"concepts": [
					{"id": "c2", "name": "Substitution", "description": "Solving one equation and substituting.", "difficulty": "intermediate", "estimatedPracticeItems": 4}
				]
			},
			{
				"id": "lesson-3",
				"title": "Quadratic Equations",
				"description": "Factoring and the quadratic formula.",
				"concepts": [
					{"id": "c3", "name": "Factoring", "description": "Rewriting as a product of binomials.", "difficulty": "intermediate", "estimatedPracticeItems": 4}
				]
			}
		]
	}`)
}

func criteriaJSON() json.RawMessage {
	return json.RawMessage(`{
		"minCorrectAnswers": 5,
		"minTotalAttempts": 6,
		"minAccuracy": 0.8,
		"adaptiveFactors": {"difficultyAdjustment": 1.0, "engagementWeight": 0.1, "retentionFactor": 1.1}
	}`)
}

func TestCreateLearningPlan_Success(t *testing.T) {
	p, mock := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: criteriaJSON()},
	)

	plan, err := p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if plan.Subject != "Algebra" {
		t.Errorf("subject = %q, want Algebra", plan.Subject)
	}
	if len(plan.Lessons) != 3 {
		t.Fatalf("got %d lessons, want 3", len(plan.Lessons))
	}
	if plan.CurrentLessonIndex != 0 {
		t.Errorf("cursor = %d, want 0", plan.CurrentLessonIndex)
	}
	for i, l := range plan.Lessons {
		if len(l.Concepts) == 0 {
			t.Errorf("lesson %d has no concepts", i)
		}
	}

	// Registered with the engine, with the derived criteria.
	if _, ok := p.Engine().Plan("Algebra"); !ok {
		t.Fatal("plan not registered with engine")
	}
	crit := p.Engine().Criteria("Algebra")
	if crit.MinCorrectAnswers != 5 || crit.MinAccuracy != 0.8 {
		t.Errorf("criteria not derived from response: %+v", crit)
	}

	// Three calls: analysis, plan, criteria.
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want 3", mock.CallCount())
	}

	// Second request hits the cache: no further calls.
	again, err := p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("cached create plan: %v", err)
	}
	if len(again.Lessons) != 3 {
		t.Errorf("cached plan has %d lessons, want 3", len(again.Lessons))
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count after cache hit = %d, want 3", mock.CallCount())
	}
}

func TestCreateLearningPlan_CacheHitKeepsDerivedCriteria(t *testing.T) {
	p, mock := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: criteriaJSON()},
	)

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	derived := p.Engine().Criteria("Algebra")
	if derived == progress.DefaultCriteria("Algebra") {
		t.Fatal("fixture criteria must differ from the keyword defaults")
	}

	// Clearing only the engine leaves the cached plan in place. The
	// cache-hit re-registration must restore the criteria derived at
	// generation time, not the keyword defaults.
	p.Engine().ClearSubject("Algebra")

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("re-create plan: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want 3 (cache hit)", mock.CallCount())
	}
	if got := p.Engine().Criteria("Algebra"); got != derived {
		t.Errorf("criteria after re-registration = %+v, want derived %+v", got, derived)
	}
}

func TestClearSubject_DropsCachedResponses(t *testing.T) {
	p, mock := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: criteriaJSON()},
	)

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	p.ClearSubject("Algebra")

	if _, ok := p.Plan("Algebra"); ok {
		t.Fatal("expected subject cleared from registry")
	}
	if len(p.Subjects()) != 0 {
		t.Fatalf("subjects = %v, want none", p.Subjects())
	}

	// A new request regenerates instead of resurrecting the cleared
	// subject from the cache.
	mock.AddResponse(llm.MockResponse{Content: analysisJSON()})
	mock.AddResponse(llm.MockResponse{Content: planJSON()})
	mock.AddResponse(llm.MockResponse{Content: criteriaJSON()})

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("re-create plan: %v", err)
	}
	if mock.CallCount() != 6 {
		t.Errorf("call count = %d, want 6 (fresh generation after clear)", mock.CallCount())
	}
}

func TestClearSubject_LeavesOtherSubjects(t *testing.T) {
	algebraII := json.RawMessage(`{
		"subject": "Algebra II",
		"lessons": [
			{"id": "lesson-1", "title": "Polynomials", "description": "", "concepts": [{"id": "c1", "name": "Degree", "description": "", "difficulty": "intermediate", "estimatedPracticeItems": 3}]},
			{"id": "lesson-2", "title": "Logarithms", "description": "", "concepts": [{"id": "c2", "name": "Bases", "description": "", "difficulty": "intermediate", "estimatedPracticeItems": 3}]},
			{"id": "lesson-3", "title": "Conics", "description": "", "concepts": [{"id": "c3", "name": "Ellipses", "description": "", "difficulty": "advanced", "estimatedPracticeItems": 4}]}
		]
	}`)
	p, mock := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: criteriaJSON()},
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: algebraII},
		llm.MockResponse{Content: criteriaJSON()},
	)

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("create Algebra: %v", err)
	}
	if _, err := p.CreateLearningPlan(t.Context(), "Algebra II"); err != nil {
		t.Fatalf("create Algebra II: %v", err)
	}

	// "Algebra" is a name prefix of "Algebra II"; clearing the former
	// must not touch the latter's registry state or cached plan.
	p.ClearSubject("Algebra")

	if _, ok := p.Plan("Algebra II"); !ok {
		t.Fatal("expected Algebra II registry state untouched")
	}
	if _, err := p.CreateLearningPlan(t.Context(), "Algebra II"); err != nil {
		t.Fatalf("cached create Algebra II: %v", err)
	}
	if mock.CallCount() != 6 {
		t.Errorf("call count = %d, want 6 (Algebra II still cached)", mock.CallCount())
	}
}

func TestClearAll(t *testing.T) {
	p, mock := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: criteriaJSON()},
	)

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	p.ClearAll()

	if len(p.Subjects()) != 0 {
		t.Fatalf("subjects = %v, want none", p.Subjects())
	}

	mock.AddResponse(llm.MockResponse{Content: analysisJSON()})
	mock.AddResponse(llm.MockResponse{Content: planJSON()})
	mock.AddResponse(llm.MockResponse{Content: criteriaJSON()})

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("re-create plan: %v", err)
	}
	if mock.CallCount() != 6 {
		t.Errorf("call count = %d, want 6 (cache emptied)", mock.CallCount())
	}
}

func TestCreateLearningPlan_EmptySubject(t *testing.T) {
	p, _ := newTestPlanner()
	if _, err := p.CreateLearningPlan(t.Context(), "   "); err == nil {
		t.Fatal("expected error for blank subject")
	}
}

func TestCreateLearningPlan_AnalysisFailureUsesDefault(t *testing.T) {
	p, mock := newTestPlanner(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: criteriaJSON()},
	)

	plan, err := p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if len(plan.Lessons) != 3 {
		t.Errorf("got %d lessons, want 3", len(plan.Lessons))
	}

	// Default analysis is 8 lessons; 8 * 350 is below the floor, so the
	// plan call gets the floor budget.
	planReq := mock.Calls[1]
	if planReq.MaxTokens != DefaultConfig().PlanTokenFloor {
		t.Errorf("plan MaxTokens = %d, want %d", planReq.MaxTokens, DefaultConfig().PlanTokenFloor)
	}
}

func TestCreateLearningPlan_TooFewLessonsFallsBack(t *testing.T) {
	shortPlan := json.RawMessage(`{
		"subject": "Algebra",
		"lessons": [
			{"id": "lesson-1", "title": "One", "description": "", "concepts": []},
			{"id": "lesson-2", "title": "Two", "description": "", "concepts": []}
		]
	}`)
	p, _ := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: shortPlan},
		llm.MockResponse{Content: criteriaJSON()},
	)

	plan, err := p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(plan.Lessons) < 1 {
		t.Fatal("fallback plan has no lessons")
	}
	lesson := plan.Lessons[0]
	if lesson.Content == nil || lesson.Content.Type != domain.ContentRetryPrompt {
		t.Errorf("fallback lesson content = %+v, want retry_prompt", lesson.Content)
	}
	if len(lesson.Concepts) == 0 {
		t.Error("fallback lesson has no concepts")
	}

	var directive domain.RetryDirective
	if err := json.Unmarshal(lesson.Content.Data, &directive); err != nil {
		t.Fatalf("parse directive: %v", err)
	}
	if directive.Action != "retry" || directive.OriginalAction != "create_learning_plan" {
		t.Errorf("directive = %+v", directive)
	}
}

func TestCreateLearningPlan_TotalFailureNotCached(t *testing.T) {
	// Empty queue: every call fails with provider unavailable.
	p, mock := newTestPlanner()

	plan, err := p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if plan.Lessons[0].Content.Type != domain.ContentRetryPrompt {
		t.Error("expected retry fallback plan")
	}

	// Criteria fell back to the keyword classifier defaults.
	crit := p.Engine().Criteria("Algebra")
	if crit != progress.DefaultCriteria("Algebra") {
		t.Errorf("criteria = %+v, want classifier default", crit)
	}

	// Fallback plans are not cached; a retry generates again.
	before := mock.CallCount()
	mock.AddResponse(llm.MockResponse{Content: analysisJSON()})
	mock.AddResponse(llm.MockResponse{Content: planJSON()})
	mock.AddResponse(llm.MockResponse{Content: criteriaJSON()})

	plan, err = p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("retry create plan: %v", err)
	}
	if len(plan.Lessons) != 3 {
		t.Errorf("retry plan has %d lessons, want 3", len(plan.Lessons))
	}
	if mock.CallCount() == before {
		t.Error("expected fresh generation after fallback, got cache hit")
	}
}

func TestCreateLearningPlan_TruncatedResponseRepaired(t *testing.T) {
	truncated := `{"subject":"Algebra","lessons":[` +
		`{"id":"lesson-1","title":"Linear Equations","description":"d1","concepts":[{"id":"c1","name":"Slope","description":"x","difficulty":"beginner","estimatedPracticeItems":2}]},` +
		`{"id":"lesson-2","title":"Factoring","description":"d2","concepts":[]},` +
		`{"id":"lesson-3","title":"Quadratics","description":"d3","concepts":[{"id":"c3","name":"Roots","description":"y","difficulty":"intermediate","estimatedPracticeItems":3`

	p, _ := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Content: json.RawMessage(truncated)}},
		llm.MockResponse{Content: criteriaJSON()},
	)

	plan, err := p.CreateLearningPlan(t.Context(), "Algebra")
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if len(plan.Lessons) != 3 {
		t.Fatalf("got %d lessons after repair, want 3", len(plan.Lessons))
	}
	if plan.Lessons[2].Title != "Quadratics" {
		t.Errorf("lesson 3 title = %q", plan.Lessons[2].Title)
	}
	// lesson-2 arrived with no concepts; a synthetic one is filled in.
	if len(plan.Lessons[1].Concepts) != 1 {
		t.Fatalf("lesson 2 has %d concepts, want 1 synthetic", len(plan.Lessons[1].Concepts))
	}
	if plan.Lessons[1].Concepts[0].Name == "" {
		t.Error("synthetic concept has empty name")
	}
}

func TestCreateLearningPlan_UnusableCriteriaFallsBack(t *testing.T) {
	badCriteria := json.RawMessage(`{
		"minCorrectAnswers": 0,
		"minTotalAttempts": 5,
		"minAccuracy": 0.7,
		"adaptiveFactors": {"difficultyAdjustment": 1.0, "engagementWeight": 0.1, "retentionFactor": 1.0}
	}`)
	p, _ := newTestPlanner(
		llm.MockResponse{Content: analysisJSON()},
		llm.MockResponse{Content: planJSON()},
		llm.MockResponse{Content: badCriteria},
	)

	if _, err := p.CreateLearningPlan(t.Context(), "Algebra"); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	crit := p.Engine().Criteria("Algebra")
	if crit != progress.DefaultCriteria("Algebra") {
		t.Errorf("criteria = %+v, want classifier default", crit)
	}
}
