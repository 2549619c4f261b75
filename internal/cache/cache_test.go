package cache

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestCache_SetThenGet(t *testing.T) {
	c := New()

	c.Set("learning_plan", "Algebra", json.RawMessage(`{"subject":"Algebra"}`))

	data, ok := c.Get("learning_plan", "Algebra")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(data) != `{"subject":"Algebra"}` {
		t.Fatalf("unexpected data: %s", data)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := New()

	if _, ok := c.Get("learning_plan", "Algebra"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if c.Misses() != 1 {
		t.Fatalf("expected 1 miss, got %d", c.Misses())
	}
}

func TestCache_KeyNormalization(t *testing.T) {
	c := New()

	c.Set("tutor_response", "Algebra Basics", json.RawMessage(`"hi"`))

	// Case differences normalize to the same key.
	if _, ok := c.Get("tutor_response", "algebra basics"); !ok {
		t.Fatal("expected hit for case-insensitive params")
	}
	// Different type is a different key.
	if _, ok := c.Get("lesson_content", "Algebra Basics"); ok {
		t.Fatal("expected miss for different type")
	}
}

func TestCache_LongParamsShareKeyBeyondTruncation(t *testing.T) {
	c := New()

	base := make([]byte, maxParamLen)
	for i := range base {
		base[i] = 'a'
	}
	p1 := string(base) + "tail-one"
	p2 := string(base) + "tail-two"

	c.Set("lesson_content", p1, json.RawMessage(`1`))

	// Known limitation: keys agree on the first maxParamLen chars.
	if _, ok := c.Get("lesson_content", p2); !ok {
		t.Fatal("expected truncated keys to collide")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))

	c.Set("learning_plan", "Chemistry", json.RawMessage(`{}`))

	if _, ok := c.Get("learning_plan", "Chemistry"); !ok {
		t.Fatal("expected hit before TTL")
	}

	now = now.Add(DefaultTTL + time.Second)

	if _, ok := c.Get("learning_plan", "Chemistry"); ok {
		t.Fatal("expected miss after TTL")
	}
	// Lazy purge removed the entry.
	if c.Size() != 0 {
		t.Fatalf("expected 0 entries after purge, got %d", c.Size())
	}
}

func TestCache_CapacityEvictsFirstInserted(t *testing.T) {
	c := New()

	for i := 0; i < DefaultMaxEntries+1; i++ {
		c.Set("lesson_content", fmt.Sprintf("params-%d", i), json.RawMessage(`{}`))
	}

	if c.Size() != DefaultMaxEntries {
		t.Fatalf("expected %d entries, got %d", DefaultMaxEntries, c.Size())
	}
	if _, ok := c.Get("lesson_content", "params-0"); ok {
		t.Fatal("expected first-inserted entry to be evicted")
	}
	if _, ok := c.Get("lesson_content", "params-1"); !ok {
		t.Fatal("expected second-inserted entry to survive")
	}
}

func TestCache_FIFONotLRU(t *testing.T) {
	c := New(WithMaxEntries(2))

	c.Set("t", "one", json.RawMessage(`1`))
	c.Set("t", "two", json.RawMessage(`2`))

	// Touch "one" — under LRU this would protect it. It doesn't here.
	if _, ok := c.Get("t", "one"); !ok {
		t.Fatal("expected hit")
	}

	c.Set("t", "three", json.RawMessage(`3`))

	if _, ok := c.Get("t", "one"); ok {
		t.Fatal("expected oldest insertion evicted despite recent hit")
	}
}

func TestCache_ClearByType(t *testing.T) {
	c := New()

	c.Set("learning_plan", "Algebra", json.RawMessage(`1`))
	c.Set("lesson_content", "Algebra", json.RawMessage(`2`))

	c.Clear("learning_plan")

	if _, ok := c.Get("learning_plan", "Algebra"); ok {
		t.Fatal("expected cleared type to miss")
	}
	if _, ok := c.Get("lesson_content", "Algebra"); !ok {
		t.Fatal("expected other type to survive")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after full clear, got %d", c.Size())
	}
}

func TestCache_Delete(t *testing.T) {
	c := New()

	c.Set("learning_plan", "Algebra", json.RawMessage(`1`))
	c.Set("learning_plan", "Chemistry", json.RawMessage(`2`))

	c.Delete("learning_plan", "algebra") // normalizes like Get

	if _, ok := c.Get("learning_plan", "Algebra"); ok {
		t.Fatal("expected deleted entry to miss")
	}
	if _, ok := c.Get("learning_plan", "Chemistry"); !ok {
		t.Fatal("expected other entry to survive")
	}

	// Deleting a missing key is a no-op.
	c.Delete("learning_plan", "Algebra")
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Size())
	}
}

func TestCache_ClearPrefix(t *testing.T) {
	c := New()

	c.Set("lesson_content", "Algebra|lesson-1|c1|multiple_choice", json.RawMessage(`1`))
	c.Set("tutor_response", "Algebra|answer_correct|lesson-1|", json.RawMessage(`2`))
	c.Set("welcome_message", "Algebra|new=true", json.RawMessage(`3`))
	c.Set("lesson_content", "Algebra II|lesson-1|c1|multiple_choice", json.RawMessage(`4`))

	c.ClearPrefix("algebra|")

	if c.Size() != 1 {
		t.Fatalf("expected 1 entry after prefix clear, got %d", c.Size())
	}
	// "Algebra II|..." does not match the "Algebra|" prefix.
	if _, ok := c.Get("lesson_content", "Algebra II|lesson-1|c1|multiple_choice"); !ok {
		t.Fatal("expected other subject's entry to survive")
	}
}

func TestCache_HitRate(t *testing.T) {
	c := New()
	c.Set("t", "p", json.RawMessage(`1`))

	c.Get("t", "p")
	c.Get("t", "q")

	if got := c.HitRate(); got != 0.5 {
		t.Fatalf("expected hit rate 0.5, got %v", got)
	}
}
