// Package jsonx recovers structured JSON from mixed model output.
//
// Generation gateways return prose, markdown fences, and JSON in one
// string; these helpers extract the first balanced, parseable object or
// array. Absence of one is reported explicitly so callers run their
// deterministic fallback instead of working with a silent empty value.
package jsonx

import (
	"encoding/json"
	"strings"
)

// ExtractObject locates the first balanced JSON object in text. ok is
// false when no parseable object is present.
func ExtractObject(text string) (string, bool) {
	return extractBalanced(stripMarkdownFences(text), '{', '}')
}

// ExtractArray locates the first balanced JSON array in text.
func ExtractArray(text string) (string, bool) {
	return extractBalanced(stripMarkdownFences(text), '[', ']')
}

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func extractBalanced(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
