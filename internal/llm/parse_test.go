package llm

import (
	"errors"
	"testing"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
)

func TestExtractJSONBlockPlain(t *testing.T) {
	raw, err := ExtractJSONBlock(`{"score": 80}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"score": 80}` {
		t.Fatalf("unexpected raw: %s", raw)
	}
}

func TestExtractJSONBlockInsideProse(t *testing.T) {
	text := "Sure! Here is the analysis you asked for:\n\n" +
		`{"semanticSummary": "A focused resume.", "keyThemes": ["Go", "ML"], "overallSentiment": "Positive"}` +
		"\n\nLet me know if you need anything else."
	raw, err := ExtractJSONBlock(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw[0] != '{' || raw[len(raw)-1] != '}' {
		t.Fatalf("expected a complete object, got %s", raw)
	}
}

func TestExtractJSONBlockMarkdownFence(t *testing.T) {
	text := "```json\n{\"summary\": \"ok\", \"score\": 71}\n```"
	m, err := ParseJSONObject(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["summary"] != "ok" {
		t.Fatalf("unexpected summary: %v", m["summary"])
	}
}

func TestExtractJSONBlockBracesInStrings(t *testing.T) {
	text := `prefix {"note": "uses {braces} and \"quotes\"", "n": 1} suffix`
	m, err := ParseJSONObject(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["note"] != `uses {braces} and "quotes"` {
		t.Fatalf("unexpected note: %v", m["note"])
	}
}

func TestExtractJSONBlockSkipsMalformedCandidate(t *testing.T) {
	// The first '{' opens an unterminated value; the parser must move on to
	// the next candidate instead of giving up.
	text := `broken { not json ... {"score": 5}`
	m, err := ParseJSONObject(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["score"] != float64(5) {
		t.Fatalf("unexpected score: %v", m["score"])
	}
}

func TestExtractJSONBlockNoJSON(t *testing.T) {
	_, err := ExtractJSONBlock("I could not produce an answer, sorry.")
	if !errors.Is(err, common.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestParseJSONObjectRejectsArray(t *testing.T) {
	_, err := ParseJSONObject(`[1, 2, 3]`)
	if !errors.Is(err, common.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure for non-object, got %v", err)
	}
}
