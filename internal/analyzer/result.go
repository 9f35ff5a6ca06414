package analyzer

import (
	"encoding/json"
	"strings"
)

// DecodeAnalysis turns a model's reply into JSON. Valid JSON (optionally
// wrapped in markdown code fences) passes through; anything else is wrapped
// as {"raw_analysis": "<text>"} so the result is always storable JSON.
func DecodeAnalysis(text string) json.RawMessage {
	candidate := stripCodeFences(strings.TrimSpace(text))
	if json.Valid([]byte(candidate)) && candidate != "" {
		return json.RawMessage(candidate)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw_analysis": text})
	return wrapped
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
