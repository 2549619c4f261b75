package progress

import (
	"testing"
	"time"

	"github.com/abhisek/studywise/internal/domain"
)

func TestEngagementScore_Empty(t *testing.T) {
	if got := engagementScore(nil, time.Now()); got != 0 {
		t.Fatalf("expected 0 for empty log, got %v", got)
	}
}

func TestEngagementScore_FreshDiverseWindow(t *testing.T) {
	now := time.Now()
	records := []domain.ContentRecord{
		record(domain.ContentMultipleChoice, now),
		record(domain.ContentConceptCard, now),
		record(domain.ContentStepSolver, now),
	}

	got := engagementScore(records, now)
	// recency 1.0, variety 3/3, consistency 3/3.
	if got < 0.99 || got > 1.01 {
		t.Fatalf("expected score ~1.0, got %v", got)
	}
}

func TestEngagementScore_DecaysWithAge(t *testing.T) {
	now := time.Now()
	old := []domain.ContentRecord{record(domain.ContentExplainer, now.Add(-48*time.Hour))}
	fresh := []domain.ContentRecord{record(domain.ContentExplainer, now)}

	if engagementScore(old, now) >= engagementScore(fresh, now) {
		t.Fatal("expected older activity to score lower")
	}
}

func TestEngagementScore_WindowLimitedToFive(t *testing.T) {
	now := time.Now()
	var records []domain.ContentRecord
	// Six distinct-typed records; only the last five count, and variety
	// caps at three regardless.
	types := []domain.ContentType{
		domain.ContentMultipleChoice, domain.ContentConceptCard,
		domain.ContentStepSolver, domain.ContentFillBlank,
		domain.ContentExplainer, domain.ContentMultipleChoice,
	}
	for _, typ := range types {
		records = append(records, record(typ, now))
	}

	got := engagementScore(records, now)
	if got < 0.99 || got > 1.01 {
		t.Fatalf("expected capped score ~1.0, got %v", got)
	}
}

func TestHasContentVariety_Tiers(t *testing.T) {
	now := time.Now()
	mk := func(types ...domain.ContentType) []domain.ContentRecord {
		var out []domain.ContentRecord
		for _, typ := range types {
			out = append(out, record(typ, now))
		}
		return out
	}

	cases := []struct {
		name     string
		accuracy float64
		records  []domain.ContentRecord
		want     bool
	}{
		{"high accuracy, two types", 0.85, mk(domain.ContentMultipleChoice, domain.ContentFillBlank), true},
		{"high accuracy, one type", 0.85, mk(domain.ContentMultipleChoice, domain.ContentMultipleChoice), false},
		{"mid accuracy, three items two types", 0.7, mk(domain.ContentMultipleChoice, domain.ContentMultipleChoice, domain.ContentFillBlank), true},
		{"mid accuracy, two items", 0.7, mk(domain.ContentMultipleChoice, domain.ContentFillBlank), false},
		{"low accuracy, four items three types", 0.5, mk(domain.ContentMultipleChoice, domain.ContentFillBlank, domain.ContentConceptCard, domain.ContentConceptCard), true},
		{"low accuracy, four items two types", 0.5, mk(domain.ContentMultipleChoice, domain.ContentFillBlank, domain.ContentMultipleChoice, domain.ContentFillBlank), false},
	}

	for _, tc := range cases {
		if got := hasContentVariety(tc.records, tc.accuracy); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestClassifySubject(t *testing.T) {
	cases := map[string]SubjectCategory{
		"Quadratic Equations":    CategoryMathScience,
		"Organic Chemistry":      CategoryMathScience,
		"Spanish Conversation":   CategoryLanguageArts,
		"Essay Writing":          CategoryLanguageArts,
		"Watercolor Painting":    CategoryCreative,
		"Music Theory":           CategoryCreative,
		"World History":          CategorySocialStudies,
		"Macroeconomics":         CategorySocialStudies,
		"Knitting for Beginners": CategoryGeneral,
	}

	for subject, want := range cases {
		if got := ClassifySubject(subject); got != want {
			t.Errorf("ClassifySubject(%q) = %q, want %q", subject, got, want)
		}
	}
}

func TestDefaultCriteria_AlwaysUsable(t *testing.T) {
	for _, subject := range []string{"Algebra", "French", "Pottery", "Civics", "Whittling"} {
		c := DefaultCriteria(subject)
		if c.MinCorrectAnswers <= 0 || c.MinTotalAttempts <= 0 || c.MinAccuracy <= 0 {
			t.Errorf("%s: unusable criteria %+v", subject, c)
		}
		if c.AdaptiveFactors.DifficultyAdjustment <= 0 {
			t.Errorf("%s: missing adaptive factors", subject)
		}
	}
}
