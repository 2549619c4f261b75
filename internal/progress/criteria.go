package progress

import (
	"strings"

	"github.com/abhisek/studywise/internal/domain"
)

// SubjectCategory is the coarse classification used when AI-derived
// criteria are unavailable.
type SubjectCategory string

const (
	CategoryMathScience   SubjectCategory = "math_science"
	CategoryLanguageArts  SubjectCategory = "language_arts"
	CategoryCreative      SubjectCategory = "creative"
	CategorySocialStudies SubjectCategory = "social_studies"
	CategoryGeneral       SubjectCategory = "general"
)

var categoryKeywords = map[SubjectCategory][]string{
	CategoryMathScience: {
		"math", "algebra", "geometry", "calculus", "trigonometry",
		"equation", "statistics", "physics", "chemistry", "biology",
		"science", "engineering", "programming", "computer",
	},
	CategoryLanguageArts: {
		"language", "grammar", "writing", "reading", "literature",
		"english", "spanish", "french", "german", "vocabulary", "essay",
	},
	CategoryCreative: {
		"art", "music", "drawing", "painting", "design", "photography",
		"creative", "theater", "dance",
	},
	CategorySocialStudies: {
		"history", "geography", "civics", "economics", "government",
		"social", "culture", "politics",
	},
}

// defaultCriteria holds the fixed tuple per category. Math and science
// subjects get a higher bar; creative subjects favor engagement over raw
// accuracy.
var defaultCriteria = map[SubjectCategory]domain.Criteria{
	CategoryMathScience: {
		MinCorrectAnswers: 4,
		MinTotalAttempts:  5,
		MinAccuracy:       0.75,
		AdaptiveFactors: domain.AdaptiveFactors{
			DifficultyAdjustment: 1.0,
			EngagementWeight:     0.1,
			RetentionFactor:      1.1,
		},
	},
	CategoryLanguageArts: {
		MinCorrectAnswers: 3,
		MinTotalAttempts:  5,
		MinAccuracy:       0.7,
		AdaptiveFactors: domain.AdaptiveFactors{
			DifficultyAdjustment: 1.0,
			EngagementWeight:     0.15,
			RetentionFactor:      1.0,
		},
	},
	CategoryCreative: {
		MinCorrectAnswers: 3,
		MinTotalAttempts:  4,
		MinAccuracy:       0.65,
		AdaptiveFactors: domain.AdaptiveFactors{
			DifficultyAdjustment: 0.9,
			EngagementWeight:     0.2,
			RetentionFactor:      0.9,
		},
	},
	CategorySocialStudies: {
		MinCorrectAnswers: 3,
		MinTotalAttempts:  5,
		MinAccuracy:       0.7,
		AdaptiveFactors: domain.AdaptiveFactors{
			DifficultyAdjustment: 1.0,
			EngagementWeight:     0.12,
			RetentionFactor:      1.0,
		},
	},
	CategoryGeneral: {
		MinCorrectAnswers: 3,
		MinTotalAttempts:  5,
		MinAccuracy:       0.7,
		AdaptiveFactors: domain.AdaptiveFactors{
			DifficultyAdjustment: 1.0,
			EngagementWeight:     0.1,
			RetentionFactor:      1.0,
		},
	},
}

// ClassifySubject maps a subject name to a category by keyword match.
// Unmatched subjects fall into CategoryGeneral.
func ClassifySubject(subject string) SubjectCategory {
	s := strings.ToLower(subject)
	for _, cat := range []SubjectCategory{
		CategoryMathScience,
		CategoryLanguageArts,
		CategoryCreative,
		CategorySocialStudies,
	} {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(s, kw) {
				return cat
			}
		}
	}
	return CategoryGeneral
}

// DefaultCriteria returns the deterministic criteria for a subject.
// This is the fallback when AI criteria derivation fails; the engine is
// never without usable criteria.
func DefaultCriteria(subject string) domain.Criteria {
	return defaultCriteria[ClassifySubject(subject)]
}
