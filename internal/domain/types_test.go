package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonCurrentConcept(t *testing.T) {
	concepts := []ConceptInfo{
		{ID: "c1", Name: "Variables"},
		{ID: "c2", Name: "Equations"},
		{ID: "c3", Name: "Inequalities"},
	}

	tests := []struct {
		name     string
		concepts []ConceptInfo
		index    int
		wantID   string
	}{
		{"first concept", concepts, 0, "c1"},
		{"middle concept", concepts, 1, "c2"},
		{"negative index clamps to first", concepts, -3, "c1"},
		{"index past end clamps to last", concepts, 9, "c3"},
		{"no concepts", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Lesson{Concepts: tt.concepts, CurrentConceptIndex: tt.index}
			assert.Equal(t, tt.wantID, l.CurrentConcept().ID)
		})
	}
}

func TestLessonPlanCursor(t *testing.T) {
	plan := LessonPlan{
		Subject: "Algebra",
		Lessons: []Lesson{
			{ID: "lesson-1"},
			{ID: "lesson-2"},
			{ID: "lesson-3"},
		},
	}

	t.Run("current lesson follows index", func(t *testing.T) {
		plan.CurrentLessonIndex = 1
		cur := plan.CurrentLesson()
		require.NotNil(t, cur)
		assert.Equal(t, "lesson-2", cur.ID)
		assert.False(t, plan.AtLastLesson())
	})

	t.Run("last lesson", func(t *testing.T) {
		plan.CurrentLessonIndex = 2
		assert.True(t, plan.AtLastLesson())
	})

	t.Run("out of range index", func(t *testing.T) {
		plan.CurrentLessonIndex = 5
		assert.Nil(t, plan.CurrentLesson())
	})

	t.Run("empty plan", func(t *testing.T) {
		empty := LessonPlan{Subject: "Chemistry"}
		assert.Nil(t, empty.CurrentLesson())
		assert.False(t, empty.AtLastLesson())
	})
}

func TestLearningProgressAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		progress LearningProgress
		want     float64
	}{
		{"no attempts", LearningProgress{}, 0},
		{"perfect", LearningProgress{CorrectAnswers: 4, TotalAttempts: 4}, 1.0},
		{"partial", LearningProgress{CorrectAnswers: 3, TotalAttempts: 4}, 0.75},
		{"all wrong", LearningProgress{CorrectAnswers: 0, TotalAttempts: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.progress.Accuracy(), 1e-9)
		})
	}
}

func TestContentTypesExcludeRetryPrompt(t *testing.T) {
	for _, ct := range ContentTypes {
		assert.NotEqual(t, ContentRetryPrompt, ct)
	}
	assert.Len(t, ContentTypes, 5)
}
