// Package jsonrepair recovers parseable JSON from the truncated or
// fence-wrapped output a generative model produces when it runs out of
// tokens mid-structure. It handles the common truncation patterns and
// nothing more; anything it cannot recover fails with ErrMalformedContent
// so the caller can fall back to placeholder content. The heuristics live
// behind the single Repair entry point so a tolerant streaming parser
// could replace them without touching callers.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrMalformedContent indicates the input could not be repaired into
// parseable JSON.
type ErrMalformedContent struct {
	Text string
	Err  error
}

func (e *ErrMalformedContent) Error() string {
	return fmt.Sprintf("malformed content beyond repair: %v", e.Err)
}

func (e *ErrMalformedContent) Unwrap() error { return e.Err }

// Repair returns a parseable variant of text, or ErrMalformedContent.
// Valid JSON is returned unchanged (modulo fence markers and surrounding
// whitespace). The recovery pipeline, in order: drop a dangling trailing
// object fragment, drop a trailing comma, close an unterminated string
// literal, then close every still-open delimiter innermost-first.
func Repair(text string) (string, error) {
	s := stripFences(text)

	if json.Valid([]byte(s)) {
		return s, nil
	}

	s = dropDanglingObject(s)
	s = dropTrailingComma(s)
	s = closeOpenDelimiters(s)

	if !json.Valid([]byte(s)) {
		return "", &ErrMalformedContent{
			Text: text,
			Err:  fmt.Errorf("still invalid after truncation recovery"),
		}
	}
	return s, nil
}

// stripFences removes markdown code-fence markers around the payload.
func stripFences(text string) string {
	s := strings.TrimSpace(text)

	for _, marker := range []string{"```json", "```"} {
		if strings.HasPrefix(s, marker) {
			s = s[len(marker):]
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

// dropDanglingObject removes a trailing object fragment that was cut off
// mid-string, e.g. `..., {"id": "lesson-`. A fragment is dropped only when
// it follows the last comma, opens an object that never closes, and
// contains an unterminated string — a fragment with balanced quotes is
// kept and closed by the later passes instead.
func dropDanglingObject(s string) string {
	comma := strings.LastIndex(s, ",")
	if comma == -1 {
		return s
	}

	frag := strings.TrimSpace(s[comma+1:])
	if !strings.HasPrefix(frag, "{") || strings.Contains(frag, "}") {
		return s
	}
	if countUnescapedQuotes(frag)%2 == 0 {
		return s
	}

	return s[:comma]
}

func dropTrailingComma(s string) string {
	return strings.TrimSuffix(strings.TrimRight(s, " \t\r\n"), ",")
}

// closeOpenDelimiters scans the input tracking string state and a stack of
// open braces/brackets, then appends the exact closers required: the string
// terminator first if the input ends inside a literal, then one closer per
// open delimiter, innermost first. Array content is typically the innermost
// truncation point, so `]` tends to land before `}`.
func closeOpenDelimiters(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}':
			if n := len(stack); n > 0 && stack[n-1] == '{' {
				stack = stack[:n-1]
			}
		case ']':
			if n := len(stack); n > 0 && stack[n-1] == '[' {
				stack = stack[:n-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

func countUnescapedQuotes(s string) int {
	n := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			n++
		}
	}
	return n
}
