package jsonrepair

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustParse(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, s)
	}
	return out
}

func TestRepair_ValidJSONUnchanged(t *testing.T) {
	inputs := []string{
		`{"subject":"Algebra","lessons":[]}`,
		`{"a": 1, "b": [1, 2, 3]}`,
		`[]`,
		`"just a string"`,
	}
	for _, in := range inputs {
		out, err := Repair(in)
		if err != nil {
			t.Fatalf("Repair(%q) returned error: %v", in, err)
		}
		if out != in {
			t.Fatalf("Repair(%q) changed valid JSON to %q", in, out)
		}
	}
}

func TestRepair_StripsFences(t *testing.T) {
	out, err := Repair("```json\n{\"subject\":\"Biology\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := mustParse(t, out)
	if m["subject"] != "Biology" {
		t.Fatalf("expected subject Biology, got %v", m["subject"])
	}
}

func TestRepair_BareFences(t *testing.T) {
	out, err := Repair("```\n{\"a\":1}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"a":1}` {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRepair_TruncatedPlan(t *testing.T) {
	in := `{"subject":"Algebra","lessons":[{"id":"lesson-1","title":"Intro"`

	out, err := Repair(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := mustParse(t, out)
	if m["subject"] != "Algebra" {
		t.Fatalf("expected subject Algebra, got %v", m["subject"])
	}
	lessons, ok := m["lessons"].([]any)
	if !ok || len(lessons) != 1 {
		t.Fatalf("expected lessons array of length 1, got %v", m["lessons"])
	}
	lesson := lessons[0].(map[string]any)
	if lesson["id"] != "lesson-1" || lesson["title"] != "Intro" {
		t.Fatalf("unexpected lesson content: %v", lesson)
	}
}

func TestRepair_TruncatedMidString(t *testing.T) {
	in := `{"subject":"Chemistry","lessons":[{"id":"lesson-1","title":"Atoms and Mol`

	out, err := Repair(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := mustParse(t, out)
	lessons := m["lessons"].([]any)
	if len(lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(lessons))
	}
}

func TestRepair_DanglingObjectFragmentDropped(t *testing.T) {
	in := `{"subject":"History","lessons":[{"id":"lesson-1","title":"Origins"}, {"id": "lesson-`

	out, err := Repair(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := mustParse(t, out)
	lessons := m["lessons"].([]any)
	if len(lessons) != 1 {
		t.Fatalf("expected dangling fragment dropped, got %d lessons", len(lessons))
	}
}

func TestRepair_TrailingComma(t *testing.T) {
	in := `{"subject":"Physics","lessons":[{"id":"lesson-1"},`

	out, err := Repair(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := mustParse(t, out)
	lessons := m["lessons"].([]any)
	if len(lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(lessons))
	}
}

func TestRepair_EscapedQuotesNotCounted(t *testing.T) {
	in := `{"note":"she said \"go\"","items":[1,2`

	out, err := Repair(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := mustParse(t, out)
	if m["note"] != `she said "go"` {
		t.Fatalf("escaped quotes mangled: %v", m["note"])
	}
}

func TestRepair_Unrepairable(t *testing.T) {
	_, err := Repair("this is not json at all")
	if err == nil {
		t.Fatal("expected error for unrepairable input")
	}
	var malformed *ErrMalformedContent
	if !errors.As(err, &malformed) {
		t.Fatalf("expected ErrMalformedContent, got %T", err)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	in := `{"subject":"Algebra","lessons":[{"id":"lesson-1","title":"Intro"`

	once, err := Repair(in)
	if err != nil {
		t.Fatalf("first repair failed: %v", err)
	}
	twice, err := Repair(once)
	if err != nil {
		t.Fatalf("second repair failed: %v", err)
	}
	if once != twice {
		t.Fatalf("repair of repaired output changed it:\n%s\n%s", once, twice)
	}
}
