package store

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/studywise/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenConfiguresDatabase(t *testing.T) {
	s := openTestStore(t)

	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}

	// journal_mode reports "memory" for in-memory databases, so only the
	// portable pragmas are checked here.
	for pragma, want := range map[string]string{
		"foreign_keys": "1",
		"synchronous":  "1", // NORMAL
	} {
		var got string
		if err := s.DB().QueryRow("PRAGMA " + pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", pragma, err)
		}
		if got != want {
			t.Errorf("PRAGMA %s = %q, want %q", pragma, got, want)
		}
	}

	// Auto-migration created the snapshots table.
	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	// Save a snapshot carrying per-subject state.
	now := time.Now().UTC().Truncate(time.Second)
	err = repo.Save(ctx, &Snapshot{
		Sequence:  42,
		Timestamp: now,
		Data: SnapshotData{
			Version: SnapshotVersion,
			Subjects: map[string]*SubjectStateData{
				"Algebra": {
					Plan: &domain.LessonPlan{
						Subject: "Algebra",
						Lessons: []domain.Lesson{
							{ID: "lesson-1", Title: "Linear Equations"},
						},
					},
					Progress: domain.LearningProgress{CorrectAnswers: 3, TotalAttempts: 4},
					Criteria: domain.Criteria{MinCorrectAnswers: 4, MinTotalAttempts: 5, MinAccuracy: 0.75},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Retrieve it.
	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.Sequence != 42 {
		t.Errorf("sequence = %d, want 42", snap.Sequence)
	}
	if snap.Data.Version != SnapshotVersion {
		t.Errorf("data.version = %d, want %d", snap.Data.Version, SnapshotVersion)
	}
	st := snap.Data.Subjects["Algebra"]
	if st == nil {
		t.Fatal("expected Algebra subject state")
	}
	if st.Plan == nil || len(st.Plan.Lessons) != 1 || st.Plan.Lessons[0].ID != "lesson-1" {
		t.Errorf("plan not round-tripped: %+v", st.Plan)
	}
	if st.Progress.CorrectAnswers != 3 || st.Progress.TotalAttempts != 4 {
		t.Errorf("progress not round-tripped: %+v", st.Progress)
	}
}

// saveSnapshots writes n snapshots with ascending sequences and
// timestamps one minute apart.
func saveSnapshots(t *testing.T, repo SnapshotRepo, n int) {
	t.Helper()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < n; i++ {
		err := repo.Save(context.Background(), &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      SnapshotData{Version: SnapshotVersion},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()

	saveSnapshots(t, repo, 3)

	snap, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 3 {
		t.Errorf("sequence = %d, want 3", snap.Sequence)
	}
}

func TestSnapshotPrune(t *testing.T) {
	cases := []struct {
		name      string
		saved     int
		keep      int
		remaining int
	}{
		{"prunes past the keep window", 7, 5, 5},
		{"no-op below the keep window", 2, 5, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := openTestStore(t)
			repo := s.SnapshotRepo()
			ctx := context.Background()

			saveSnapshots(t, repo, tc.saved)

			if err := repo.Prune(ctx, tc.keep); err != nil {
				t.Fatalf("prune: %v", err)
			}

			count, err := s.Client().Snapshot.Query().Count(ctx)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if count != tc.remaining {
				t.Errorf("remaining snapshots = %d, want %d", count, tc.remaining)
			}

			// The newest snapshot always survives.
			snap, err := repo.Latest(ctx)
			if err != nil {
				t.Fatalf("latest: %v", err)
			}
			if snap.Sequence != int64(tc.saved) {
				t.Errorf("latest sequence = %d, want %d", snap.Sequence, tc.saved)
			}
		})
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	// Nothing issued yet.
	cur, err := sc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur != 0 {
		t.Errorf("current before first event = %d, want 0", cur)
	}

	// Issues 1, 2, 3, ... and Current tracks the last issued value.
	for want := int64(1); want <= 5; want++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if seq != want {
			t.Errorf("seq = %d, want %d", seq, want)
		}
	}
	cur, err = sc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur != 5 {
		t.Errorf("current after 5 events = %d, want 5", cur)
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "learning-plan", InputTokens: 900, OutputTokens: 1200, LatencyMs: 2100, Success: true, RequestBody: `{"prompt":"plan"}`, ResponseBody: `{"subject":"Algebra"}`},
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "lesson-content", InputTokens: 400, OutputTokens: 600, LatencyMs: 1500, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "lesson-content", InputTokens: 350, OutputTokens: 0, LatencyMs: 800, Success: false, ErrorMessage: "rate limited"},
	}
	for i, data := range events {
		if err := repo.AppendLLMRequest(ctx, data); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}

	// Newest first.
	if got[0].Purpose != "lesson-content" || got[0].Provider != "openai" {
		t.Errorf("newest event = %s/%s, want openai/lesson-content", got[0].Provider, got[0].Purpose)
	}
	if got[0].Sequence <= got[1].Sequence || got[1].Sequence <= got[2].Sequence {
		t.Errorf("events not in descending sequence order: %d, %d, %d",
			got[0].Sequence, got[1].Sequence, got[2].Sequence)
	}

	// Limit.
	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d events with limit 1, want 1", len(limited))
	}

	// Get by ID round-trips the bodies.
	oldest := got[2]
	e, err := repo.GetLLMEvent(ctx, oldest.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected event")
	}
	if e.RequestBody != `{"prompt":"plan"}` {
		t.Errorf("request body = %q", e.RequestBody)
	}
	if e.ResponseBody != `{"subject":"Algebra"}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}

	// Missing ID returns nil, nil.
	e, err = repo.GetLLMEvent(ctx, 99999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil for missing event, got %+v", e)
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "learning-plan", InputTokens: 1000, OutputTokens: 2000, LatencyMs: 2000, Success: true},
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "learning-plan", InputTokens: 1000, OutputTokens: 1000, LatencyMs: 1000, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "tutor-chat", InputTokens: 200, OutputTokens: 300, LatencyMs: 500, Success: true},
	}
	for i, d := range data {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purpose rows, want 2", len(byPurpose))
	}
	// Rows are ordered by purpose: learning-plan, tutor-chat.
	lp := byPurpose[0]
	if lp.Purpose != "learning-plan" || lp.Calls != 2 || lp.InputTokens != 2000 || lp.OutputTokens != 3000 {
		t.Errorf("learning-plan row = %+v", lp)
	}
	if lp.AvgLatencyMs != 1500 {
		t.Errorf("avg latency = %d, want 1500", lp.AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("got %d model rows, want 2", len(byModel))
	}
}

func TestAppendAnswerAndSubjectAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// No answers yet.
	acc, err := repo.SubjectAccuracy(ctx, "Algebra")
	if err != nil {
		t.Fatalf("accuracy (empty): %v", err)
	}
	if acc != 0 {
		t.Errorf("accuracy = %v, want 0", acc)
	}

	answers := []AnswerEventData{
		{Subject: "Algebra", LessonID: "lesson-1", ContentType: "multiple_choice", Correct: true},
		{Subject: "Algebra", LessonID: "lesson-1", ContentType: "fill_blank", Correct: true},
		{Subject: "Algebra", LessonID: "lesson-1", ContentType: "multiple_choice", Correct: false},
		{Subject: "Chemistry", LessonID: "lesson-1", ContentType: "multiple_choice", Correct: false},
	}
	for i, a := range answers {
		if err := repo.AppendAnswer(ctx, a); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	acc, err = repo.SubjectAccuracy(ctx, "Algebra")
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	want := 2.0 / 3.0
	if acc < want-0.001 || acc > want+0.001 {
		t.Errorf("accuracy = %v, want %v", acc, want)
	}

	// Other subjects don't bleed in.
	acc, err = repo.SubjectAccuracy(ctx, "Chemistry")
	if err != nil {
		t.Fatalf("accuracy chemistry: %v", err)
	}
	if acc != 0 {
		t.Errorf("chemistry accuracy = %v, want 0", acc)
	}
}
