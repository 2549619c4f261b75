// Package progress tracks per-subject mastery with subject-adaptive
// advancement criteria. Mastery is scoped per lesson, not cumulative
// across the subject: counters reset when the lesson advances.
package progress

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/store"
)

// Engine owns the in-memory registry of per-subject state: the lesson
// plan, mastery counters, advancement criteria, and the generated-content
// logs. State has session lifetime — created on first plan registration,
// cleared only by the explicit Clear operations. All access goes through
// the Engine; callers never mutate entries directly.
type Engine struct {
	mu       sync.Mutex
	subjects map[string]*subjectState
	now      func() time.Time
}

type subjectState struct {
	plan     *domain.LessonPlan
	progress domain.LearningProgress
	criteria domain.Criteria
	// records maps lesson ID to its append-only generated-content log.
	records map[string][]domain.ContentRecord
}

// NewEngine creates an engine, restoring state from the snapshot when one
// is provided.
func NewEngine(snap *store.SnapshotData) *Engine {
	e := &Engine{
		subjects: make(map[string]*subjectState),
		now:      time.Now,
	}

	if snap == nil {
		return e
	}

	for subject, sd := range snap.Subjects {
		if sd == nil {
			continue
		}
		st := &subjectState{
			plan:     sd.Plan.Clone(),
			progress: sd.Progress,
			criteria: sd.Criteria,
			records:  sd.Records,
		}
		if st.records == nil {
			st.records = make(map[string][]domain.ContentRecord)
		}
		e.subjects[subject] = st
	}

	return e
}

// SetPlan registers a subject's lesson plan and criteria and zeroes its
// progress. Called by the planner after plan creation. The plan is copied
// in; later mutations of the caller's value do not reach the registry.
func (e *Engine) SetPlan(subject string, plan *domain.LessonPlan, criteria domain.Criteria) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subjects[subject] = &subjectState{
		plan:     plan.Clone(),
		criteria: criteria,
		records:  make(map[string][]domain.ContentRecord),
	}
}

// Plan returns a copy of the registered plan for a subject. Mutating the
// returned plan has no effect on the registry; state changes go through
// AdvanceToNextLesson and SetLessonContent.
func (e *Engine) Plan(subject string) (*domain.LessonPlan, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.subjects[subject]
	if !ok || st.plan == nil {
		return nil, false
	}
	return st.plan.Clone(), true
}

// SetLessonContent attaches generated content to a lesson of the
// registered plan. Returns false when the subject has no plan or the
// lesson is unknown.
func (e *Engine) SetLessonContent(subject, lessonID string, content *domain.LessonContent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.subjects[subject]
	if !ok || st.plan == nil {
		return false
	}
	for i := range st.plan.Lessons {
		if st.plan.Lessons[i].ID == lessonID {
			st.plan.Lessons[i].Content = content.Clone()
			return true
		}
	}
	return false
}

// Criteria returns the advancement criteria for a subject, falling back
// to the deterministic defaults for unknown subjects.
func (e *Engine) Criteria(subject string) domain.Criteria {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(subject).criteria
}

// Progress returns the current progress for a subject.
func (e *Engine) Progress(subject string) domain.LearningProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(subject).progress
}

// UpdateProgress records an answer outcome and recomputes the
// advancement and review flags. lessonID selects which content log feeds
// the engagement and variety computations; when empty, the plan's current
// lesson is used.
func (e *Engine) UpdateProgress(subject string, isCorrect bool, lessonID string) domain.LearningProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(subject)
	st.progress.TotalAttempts++
	if isCorrect {
		st.progress.CorrectAnswers++
	}

	e.recompute(st, e.resolveLessonID(st, lessonID))
	return st.progress
}

// RecordContent appends to the lesson's generated-content log and
// refreshes the flags, since variety may have just crossed a gate.
func (e *Engine) RecordContent(subject, lessonID string, rec domain.ContentRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(subject)
	id := e.resolveLessonID(st, lessonID)
	st.records[id] = append(st.records[id], rec)

	if st.progress.TotalAttempts > 0 {
		e.recompute(st, id)
	}
}

// Records returns a copy of the content log for a lesson.
func (e *Engine) Records(subject, lessonID string) []domain.ContentRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state(subject)
	recs := st.records[e.resolveLessonID(st, lessonID)]
	out := make([]domain.ContentRecord, len(recs))
	copy(out, recs)
	return out
}

// AdvanceToNextLesson marks the current lesson completed, clears its
// content log, moves the cursor forward, and resets progress to zero.
// Returns false — leaving all state untouched — when the subject has no
// plan or is already at the last lesson.
func (e *Engine) AdvanceToNextLesson(subject string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.subjects[subject]
	if !ok || st.plan == nil || st.plan.AtLastLesson() {
		return false
	}

	current := st.plan.CurrentLesson()
	if current == nil {
		return false
	}
	current.Completed = true
	delete(st.records, current.ID)

	st.plan.CurrentLessonIndex++
	st.progress = domain.LearningProgress{}
	return true
}

// ClearSubject removes all state for a subject. This and ClearAll are the
// only destructive operations.
func (e *Engine) ClearSubject(subject string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subjects, subject)
}

// ClearAll removes all per-subject state.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subjects = make(map[string]*subjectState)
}

// Subjects returns the registered subject names, sorted.
func (e *Engine) Subjects() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0, len(e.subjects))
	for s := range e.subjects {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SnapshotData exports the registry for persistence.
func (e *Engine) SnapshotData() *store.SnapshotData {
	e.mu.Lock()
	defer e.mu.Unlock()

	data := &store.SnapshotData{
		Version:  store.SnapshotVersion,
		Subjects: make(map[string]*store.SubjectStateData, len(e.subjects)),
	}
	for subject, st := range e.subjects {
		data.Subjects[subject] = &store.SubjectStateData{
			Plan:     st.plan.Clone(),
			Progress: st.progress,
			Criteria: st.criteria,
			Records:  st.records,
		}
	}
	return data
}

// state returns the subject's state, creating a default one (no plan,
// keyword-classified criteria) on first touch. Must be called with the
// lock held.
func (e *Engine) state(subject string) *subjectState {
	if st, ok := e.subjects[subject]; ok {
		return st
	}
	st := &subjectState{
		criteria: DefaultCriteria(subject),
		records:  make(map[string][]domain.ContentRecord),
	}
	e.subjects[subject] = st
	return st
}

// resolveLessonID defaults an empty lesson ID to the plan's current
// lesson. Must be called with the lock held.
func (e *Engine) resolveLessonID(st *subjectState, lessonID string) string {
	if lessonID != "" {
		return lessonID
	}
	if st.plan != nil {
		if l := st.plan.CurrentLesson(); l != nil {
			return l.ID
		}
	}
	return ""
}

// recompute derives the ReadyForNext and NeedsReview flags from the
// counters, the subject's criteria, and the lesson's content log. Flags
// stay zeroed until at least one attempt exists. Must be called with the
// lock held.
func (e *Engine) recompute(st *subjectState, lessonID string) {
	p := &st.progress
	if p.TotalAttempts == 0 {
		p.ReadyForNext = false
		p.NeedsReview = false
		return
	}

	accuracy := p.Accuracy()
	c := st.criteria
	records := st.records[lessonID]

	adjustedMinCorrect := int(math.Ceil(float64(c.MinCorrectAnswers) * c.AdaptiveFactors.DifficultyAdjustment))
	adjustedMinAttempts := c.MinTotalAttempts
	if adjustedMinCorrect+1 > adjustedMinAttempts {
		adjustedMinAttempts = adjustedMinCorrect + 1
	}

	score := engagementScore(records, e.now())
	adjustedMinAccuracy := c.MinAccuracy * (1 + (score-0.5)*c.AdaptiveFactors.EngagementWeight)

	p.ReadyForNext = p.CorrectAnswers >= adjustedMinCorrect &&
		p.TotalAttempts >= adjustedMinAttempts &&
		accuracy >= adjustedMinAccuracy &&
		hasContentVariety(records, accuracy)

	p.NeedsReview = accuracy < adjustedMinAccuracy*0.8
}
