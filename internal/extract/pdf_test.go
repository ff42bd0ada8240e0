package extract

import (
	"context"
	"strings"
	"testing"
)

func TestExtractRejectsNonPDF(t *testing.T) {
	e := NewPDFExtractor(nil)
	_, err := e.Extract(context.Background(), []byte("plain text resume"))
	if err == nil {
		t.Fatalf("expected error for non-PDF bytes")
	}
	if !strings.Contains(err.Error(), "invalid header") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractRejectsEmpty(t *testing.T) {
	e := NewPDFExtractor(nil)
	if _, err := e.Extract(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestExtractRejectsTruncatedPDF(t *testing.T) {
	e := NewPDFExtractor(nil)
	// Valid header, garbage body.
	if _, err := e.Extract(context.Background(), []byte("%PDF-1.4\nnot really a pdf")); err == nil {
		t.Fatalf("expected error for truncated pdf body")
	}
}
