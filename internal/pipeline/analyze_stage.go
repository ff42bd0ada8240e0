package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

// AnalyzeStage loads the extracted text, runs the three analyzers plus the
// aggregation pass and stores the combined result for the reporting stage.
// Provider rate-limit errors propagate to the worker, which owns the retry
// decision.
type AnalyzeStage struct {
	Store       artifact.Store
	Service     *analysis.Service
	Client      llm.Client
	Model       string
	Temperature float32
	TTL         time.Duration
	Logger      *slog.Logger
}

func (s *AnalyzeStage) Run(ctx context.Context, msg Message) (*Message, error) {
	start := time.Now()

	text, err := s.Store.Get(ctx, msg.FileID, artifact.KindText, 1)
	if err != nil {
		return nil, fmt.Errorf("load text artifact: %w", err)
	}

	model := msg.Model
	if model == "" {
		model = s.Model
	}
	temperature := s.Temperature
	if msg.Temperature != nil {
		temperature = *msg.Temperature
	}
	threshold := msg.Threshold
	if threshold == 0 {
		threshold = analysis.DefaultThreshold
	}

	req := analysis.Request{
		Text: string(text),
		Model: analysis.ModelConfig{
			Client:      s.Client,
			Model:       model,
			Temperature: temperature,
		},
		Threshold: threshold,
		Criteria:  msg.Criteria,
		JDPrompt:  msg.JDPrompt,
	}

	result, err := s.Service.RunFullAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := artifact.PutJSON(ctx, s.Store, msg.FileID, artifact.Analysis("full"), 1, result, s.TTL); err != nil {
		return nil, fmt.Errorf("store analysis artifact: %w", err)
	}

	// Degraded analyzers are tolerated, a failed aggregation is not: without
	// a summary and score there is nothing for the report stage to ship.
	if result.Status != analysis.CodeOK {
		return nil, fmt.Errorf("aggregation failed: %s", result.Error)
	}

	s.Logger.Info("pipeline.analyze.ok",
		"task_id", msg.TaskID,
		"file_id", msg.FileID,
		"status", result.Status,
		"elapsed_ms", time.Since(start).Milliseconds())

	next := msg.Next(constants.StageReport)
	return &next, nil
}
