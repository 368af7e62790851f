// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers and conversational
// preamble from JSON responses.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		if obj := ExtractJSONObject(text); obj != "" {
			return obj
		}
	}

	return text
}

// ExtractJSONObject returns the first balanced {...} object found in text,
// honoring string literals. It returns "" when none exists.
func ExtractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// DecodeObject parses a model payload into v. An empty payload is treated as
// an empty object, so callers fall through to their field defaults.
func DecodeObject(raw string, v any) error {
	raw = CleanJSONBlock(raw)
	if raw == "" {
		raw = "{}"
	}
	if !strings.HasPrefix(raw, "{") {
		return fmt.Errorf("response is not a JSON object")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode JSON object: %w", err)
	}
	return nil
}
