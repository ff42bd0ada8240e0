package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/extract"
)

// ExtractStage loads the stored PDF, extracts its text and stores the text
// artifact for the analysis stage.
type ExtractStage struct {
	Store     artifact.Store
	Extractor extract.TextExtractor
	TTL       time.Duration
	Logger    *slog.Logger
}

func (s *ExtractStage) Run(ctx context.Context, msg Message) (*Message, error) {
	start := time.Now()

	data, err := s.Store.Get(ctx, msg.FileID, artifact.KindPDF, 1)
	if err != nil {
		return nil, fmt.Errorf("load pdf artifact: %w", err)
	}

	text, err := s.Extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	if err := s.Store.Put(ctx, msg.FileID, artifact.KindText, 1, []byte(text), s.TTL); err != nil {
		return nil, fmt.Errorf("store text artifact: %w", err)
	}

	s.Logger.Info("pipeline.extract.ok",
		"task_id", msg.TaskID,
		"file_id", msg.FileID,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds())

	next := msg.Next(constants.StageAnalyze)
	return &next, nil
}
