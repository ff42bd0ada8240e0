package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
)

// ExtractJSONBlock locates the first well-formed JSON object or array inside
// raw model output, which routinely arrives wrapped in prose or markdown
// fences. Returns common.ErrParseFailure when no such value exists.
func ExtractJSONBlock(text string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = stripFences(cleaned)

	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '{' && cleaned[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("no JSON value found in model output: %w", common.ErrParseFailure)
}

// ParseJSONObject extracts the first JSON object from text and unmarshals it
// into a generic map.
func ParseJSONObject(text string) (map[string]any, error) {
	raw, err := ExtractJSONBlock(text)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("model output is not a JSON object: %w", common.ErrParseFailure)
	}
	return m, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
