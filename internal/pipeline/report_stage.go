package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/artifact"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

// ReportStage loads the combined analysis, shapes the final report and
// stores it as the terminal artifact for the job.
type ReportStage struct {
	Store  artifact.Store
	TTL    time.Duration
	Logger *slog.Logger
}

func (s *ReportStage) Run(ctx context.Context, msg Message) (*status.FinalReport, error) {
	start := time.Now()

	var result analysis.FullResult
	if err := artifact.GetJSON(ctx, s.Store, msg.FileID, artifact.Analysis("full"), 1, &result); err != nil {
		return nil, fmt.Errorf("load analysis artifact: %w", err)
	}

	report := &status.FinalReport{
		FileID:  msg.FileID,
		Summary: result.Summary,
		Score:   result.Score,
	}

	if err := artifact.PutJSON(ctx, s.Store, msg.FileID, artifact.KindFinal, 1, report, s.TTL); err != nil {
		return nil, fmt.Errorf("store final artifact: %w", err)
	}

	s.Logger.Info("pipeline.report.ok",
		"task_id", msg.TaskID,
		"file_id", msg.FileID,
		"score", report.Score,
		"elapsed_ms", time.Since(start).Milliseconds())

	return report, nil
}
