package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// multipleChoiceSchema mirrors the shape the planner requests for
// multiple-choice content.
func multipleChoiceSchema() *Schema {
	return &Schema{
		Name:        "multiple-choice",
		Description: "A multiple choice practice question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":     map[string]any{"type": "string"},
				"options":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"correctIndex": map[string]any{"type": "integer", "minimum": 0},
				"difficulty": map[string]any{
					"type": "string",
					"enum": []any{"beginner", "intermediate", "advanced"},
				},
			},
			"required": []any{"question", "options", "correctIndex"},
		},
	}
}

func TestValidateResponseAcceptsConformingContent(t *testing.T) {
	raw := json.RawMessage(`{
		"question": "What is the slope of y = 2x + 1?",
		"options": ["1", "2", "3", "1/2"],
		"correctIndex": 1,
		"difficulty": "beginner"
	}`)
	if err := validateResponse(multipleChoiceSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponseAcceptsMissingOptionalField(t *testing.T) {
	raw := json.RawMessage(`{"question":"Solve x + 3 = 7","options":["2","4"],"correctIndex":1}`)
	if err := validateResponse(multipleChoiceSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponseRejectsMissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"question":"Solve x + 3 = 7"}`)
	err := validateResponse(multipleChoiceSchema(), raw)
	var bad *ErrInvalidResponse
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
	if string(bad.Content) != string(raw) {
		t.Fatal("offending content not carried on the error")
	}
}

func TestValidateResponseRejectsWrongType(t *testing.T) {
	raw := json.RawMessage(`{"question":"Q","options":["a","b"],"correctIndex":"one"}`)
	err := validateResponse(multipleChoiceSchema(), raw)
	var bad *ErrInvalidResponse
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrInvalidResponse, got %T", err)
	}
}

func TestValidateResponseRejectsInvalidEnum(t *testing.T) {
	raw := json.RawMessage(`{"question":"Q","options":["a"],"correctIndex":0,"difficulty":"impossible"}`)
	err := validateResponse(multipleChoiceSchema(), raw)
	var bad *ErrInvalidResponse
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrInvalidResponse, got %T", err)
	}
}

func TestValidateResponseRejectsMalformedJSON(t *testing.T) {
	raw := json.RawMessage(`{"question": "truncated mid`)
	err := validateResponse(multipleChoiceSchema(), raw)
	var bad *ErrInvalidResponse
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrInvalidResponse, got %T", err)
	}
}

func TestValidateResponseRejectsEmptyContent(t *testing.T) {
	if err := validateResponse(multipleChoiceSchema(), json.RawMessage(``)); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestValidateResponseNilSchemaSkipsValidation(t *testing.T) {
	raw := json.RawMessage(`"a plain tutor reply, not JSON content"`)
	if err := validateResponse(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponseNestedPlanShape(t *testing.T) {
	schema := &Schema{
		Name:        "lesson-outline",
		Description: "One lesson with its concepts",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"lesson": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
					},
					"required": []any{"title"},
				},
				"concepts": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"lesson", "concepts"},
		},
	}

	valid := json.RawMessage(`{"lesson":{"title":"Linear Equations"},"concepts":["slope","intercept"]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"lesson":{"title":"Linear Equations"},"concepts":[1,2]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong concept item type")
	}
}

func TestValidateResponseSchemaCompiledOnce(t *testing.T) {
	schema := multipleChoiceSchema()
	raw := json.RawMessage(`{"question":"Q","options":["a"],"correctIndex":0}`)

	for range 3 {
		if err := validateResponse(schema, raw); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, ok := compiledSchemas.Load(schema.Name); !ok {
		t.Fatal("expected compiled schema in the cache")
	}
}
