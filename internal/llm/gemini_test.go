package llm

import (
	"testing"
)

func TestGeminiSchemaTranslation(t *testing.T) {
	// The learning-plan shape exercises everything the translator
	// covers: nesting, arrays, enums, and required lists.
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject": map[string]any{"type": "string"},
			"lessons": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"beginner", "intermediate", "advanced"},
						},
						"estimatedPracticeItems": map[string]any{"type": "integer"},
					},
					"required": []any{"title"},
				},
			},
		},
		"required": []any{"subject", "lessons"},
	}

	schema := geminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT, got %s", schema.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
	if schema.Properties["subject"].Type != "STRING" {
		t.Fatalf("subject type = %s", schema.Properties["subject"].Type)
	}

	lessons := schema.Properties["lessons"]
	if lessons.Type != "ARRAY" {
		t.Fatalf("lessons type = %s", lessons.Type)
	}
	lesson := lessons.Items
	if lesson.Type != "OBJECT" {
		t.Fatalf("lesson item type = %s", lesson.Type)
	}
	if lesson.Properties["estimatedPracticeItems"].Type != "INTEGER" {
		t.Fatalf("practice items type = %s", lesson.Properties["estimatedPracticeItems"].Type)
	}
	if len(lesson.Properties["difficulty"].Enum) != 3 {
		t.Fatalf("expected 3 difficulty values, got %d", len(lesson.Properties["difficulty"].Enum))
	}
	if len(lesson.Required) != 1 || lesson.Required[0] != "title" {
		t.Fatalf("lesson required = %v", lesson.Required)
	}
}

func TestGeminiTypeMapping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"string", "STRING"},
		{"number", "NUMBER"},
		{"integer", "INTEGER"},
		{"boolean", "BOOLEAN"},
		{"array", "ARRAY"},
		{"object", "OBJECT"},
		{"unrecognized", "STRING"},
	}
	for _, tt := range tests {
		if got := geminiType(tt.in); string(got) != tt.want {
			t.Errorf("geminiType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
