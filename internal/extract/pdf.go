package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a structurally valid PDF yields no text at all
// (scanned images, empty pages). The message is surfaced verbatim to the
// status endpoint.
var ErrNoText = errors.New("no extractable text found in PDF")

// PDFExtractor extracts plain text from PDF bytes.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

// Extract walks every page and concatenates the text runs. Re-running it on
// the same bytes yields the same text, which is what makes the extract stage
// safe to redeliver.
func (e *PDFExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if len(data) < 4 || !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", fmt.Errorf("not a PDF file: invalid header")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		for _, text := range content.Text {
			b.WriteString(text.S)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrNoText
	}
	e.logger.Debug("extract.pdf.ok", "pages", numPages, "text_len", len(out))
	return out, nil
}
