package planner

import (
	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/llm"
)

// StructureAnalysisSchema defines the JSON schema for the lightweight
// subject analysis that sizes the main plan call.
var StructureAnalysisSchema = &llm.Schema{
	Name:        "structure-analysis",
	Description: "Analysis of a subject's scope used to size a learning plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"lessonCount": map[string]any{
				"type":        "integer",
				"minimum":     6,
				"maximum":     15,
				"description": "Recommended number of lessons for this subject",
			},
			"complexity": map[string]any{
				"type": "string",
				"enum": []any{"beginner", "intermediate", "advanced"},
			},
			"focusAreas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-5 themes the plan should emphasize",
			},
		},
		"required":             []any{"lessonCount", "complexity", "focusAreas"},
		"additionalProperties": false,
	},
}

// LearningPlanSchema defines the JSON schema for full plan generation.
var LearningPlanSchema = &llm.Schema{
	Name:        "learning-plan",
	Description: "An ordered lesson plan for a subject, each lesson broken into concepts",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject": map[string]any{
				"type": "string",
			},
			"lessons": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Stable identifier, e.g. lesson-1",
						},
						"title": map[string]any{
							"type": "string",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "1-2 sentences on what the lesson covers",
						},
						"concepts": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":          map[string]any{"type": "string"},
									"name":        map[string]any{"type": "string"},
									"description": map[string]any{"type": "string"},
									"difficulty": map[string]any{
										"type": "string",
										"enum": []any{"beginner", "intermediate", "advanced"},
									},
									"estimatedPracticeItems": map[string]any{
										"type":    "integer",
										"minimum": 0,
									},
								},
								"required":             []any{"id", "name", "description", "difficulty", "estimatedPracticeItems"},
								"additionalProperties": false,
							},
						},
					},
					"required":             []any{"id", "title", "description", "concepts"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"subject", "lessons"},
		"additionalProperties": false,
	},
}

// CriteriaSchema defines the JSON schema for advancement criteria derivation.
var CriteriaSchema = &llm.Schema{
	Name:        "progress-criteria",
	Description: "Advancement thresholds tuned to a subject's difficulty profile",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"minCorrectAnswers": map[string]any{
				"type":    "integer",
				"minimum": 1,
			},
			"minTotalAttempts": map[string]any{
				"type":    "integer",
				"minimum": 1,
			},
			"minAccuracy": map[string]any{
				"type":             "number",
				"exclusiveMinimum": 0,
				"maximum":          1,
			},
			"adaptiveFactors": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"difficultyAdjustment": map[string]any{
						"type":             "number",
						"exclusiveMinimum": 0,
					},
					"engagementWeight": map[string]any{
						"type":             "number",
						"exclusiveMinimum": 0,
					},
					"retentionFactor": map[string]any{
						"type":             "number",
						"exclusiveMinimum": 0,
					},
				},
				"required":             []any{"difficultyAdjustment", "engagementWeight", "retentionFactor"},
				"additionalProperties": false,
			},
		},
		"required":             []any{"minCorrectAnswers", "minTotalAttempts", "minAccuracy", "adaptiveFactors"},
		"additionalProperties": false,
	},
}

var multipleChoiceSchema = &llm.Schema{
	Name:        "multiple-choice",
	Description: "A multiple-choice question with one correct option",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 2,
				"maxItems": 5,
			},
			"correctIndex": map[string]any{
				"type":    "integer",
				"minimum": 0,
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct option is correct",
			},
		},
		"required":             []any{"question", "options", "correctIndex", "explanation"},
		"additionalProperties": false,
	},
}

var conceptCardSchema = &llm.Schema{
	Name:        "concept-card",
	Description: "A short explanatory card for a single concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"summary": map[string]any{
				"type":        "string",
				"description": "2-4 sentence plain-language summary",
			},
			"keyPoints": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 2,
			},
			"example": map[string]any{"type": "string"},
		},
		"required":             []any{"title", "summary", "keyPoints", "example"},
		"additionalProperties": false,
	},
}

var stepSolverSchema = &llm.Schema{
	Name:        "step-solver",
	Description: "A worked problem broken into ordered solution steps",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problem": map[string]any{"type": "string"},
			"steps": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 2,
			},
			"answer": map[string]any{"type": "string"},
		},
		"required":             []any{"problem", "steps", "answer"},
		"additionalProperties": false,
	},
}

var fillBlankSchema = &llm.Schema{
	Name:        "fill-blank",
	Description: "A fill-in-the-blank exercise",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Sentence with the blank marked as ___",
			},
			"answer": map[string]any{"type": "string"},
			"hint":   map[string]any{"type": "string"},
		},
		"required":             []any{"text", "answer", "hint"},
		"additionalProperties": false,
	},
}

var explainerSchema = &llm.Schema{
	Name:        "explainer",
	Description: "A longer-form explanation of a concept with an analogy",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":       map[string]any{"type": "string"},
			"explanation": map[string]any{"type": "string"},
			"analogy": map[string]any{
				"type":        "string",
				"description": "An everyday analogy for the concept",
			},
		},
		"required":             []any{"topic", "explanation", "analogy"},
		"additionalProperties": false,
	},
}

// contentSchemaFor maps a content type to its variant schema.
func contentSchemaFor(t domain.ContentType) *llm.Schema {
	switch t {
	case domain.ContentMultipleChoice:
		return multipleChoiceSchema
	case domain.ContentConceptCard:
		return conceptCardSchema
	case domain.ContentStepSolver:
		return stepSolverSchema
	case domain.ContentFillBlank:
		return fillBlankSchema
	case domain.ContentExplainer:
		return explainerSchema
	}
	return nil
}
