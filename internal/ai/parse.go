package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// decodeArray turns raw model text into a non-empty generic JSON array.
// Markdown fences and surrounding prose are tolerated; one repair pass is attempted
// before giving up.
func decodeArray(raw string) ([]any, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		// Only dig an array out of surrounding prose; a top-level object stays an object.
		if leadsWithArray(cleaned) {
			if arr, ok := extractFirstJSONArray(cleaned); ok {
				cleaned = arr
			}
		}
		if err := json.Unmarshal([]byte(cleaned), &doc); err == nil {
			return nonEmptyArray(doc)
		}
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
		}
		if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
		}
	}

	return nonEmptyArray(doc)
}

func nonEmptyArray(doc any) ([]any, error) {
	items, ok := doc.([]any)
	if !ok || len(items) == 0 {
		return nil, ErrEmptyResult
	}
	return items, nil
}

// leadsWithArray reports whether the first JSON delimiter in s opens an array.
func leadsWithArray(s string) bool {
	i := strings.IndexAny(s, "[{")
	return i >= 0 && s[i] == '['
}

// extractFirstJSONArray finds the first outermost balanced [...].
func extractFirstJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
