// services/json_repair.go
package services

import (
	"regexp"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// repairJSON normalizes the fuzzy JSON that AI engines return: markdown code
// fences, prose around the object, and trailing commas. The result may still
// be invalid JSON; callers fall back to the raw text when unmarshalling fails.
func repairJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip markdown code fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Cut to the outermost object or array when the engine wrapped it in prose
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end > start {
		s = s[start : end+1]
	}

	// Drop trailing commas before closing braces and brackets
	s = trailingCommaRe.ReplaceAllString(s, "$1")

	return s
}
