package analysis

import (
	"context"
	"log/slog"
)

// Service runs the full fan-out/fan-in analysis. The three analyzers are
// read-only over the same input and independent of each other; they run
// sequentially here, and aggregation only runs after all three have produced
// a result, success or failure.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RunFullAnalysis executes technical, semantic and psychometric analysis and
// aggregates them into one report. A single analyzer's parse failure degrades
// that analyzer's output but never blocks the run; a provider error
// (including rate limits) propagates to the caller, who decides whether a
// reschedule applies. Aggregation failure yields Status 500.
func (s *Service) RunFullAnalysis(ctx context.Context, req Request) (FullResult, error) {
	s.logger.Debug("analysis.run_full",
		"model", req.Model.Model,
		"temperature", req.Model.Temperature,
		"threshold", req.Threshold,
		"text_len", len(req.Text),
	)

	technical, err := TechnicalAnalysis(ctx, req, s.logger)
	if err != nil {
		return FullResult{}, err
	}
	semantic, err := SemanticAnalysis(ctx, req, s.logger)
	if err != nil {
		return FullResult{}, err
	}
	psychometric, err := PsychometricAnalysis(ctx, req, s.logger)
	if err != nil {
		return FullResult{}, err
	}

	report := GenerateFullSummary(ctx, req.Model, technical, semantic, psychometric, s.logger)

	return FullResult{
		Technical:    technical,
		Semantic:     semantic,
		Psychometric: psychometric,
		Summary:      report.Summary,
		Score:        report.Score,
		Status:       report.Status,
		Error:        report.Error,
	}, nil
}
