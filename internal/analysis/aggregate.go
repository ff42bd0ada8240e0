package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

// aggregateTemperature is fixed; the aggregation call benefits from a little
// more variety than the analyzers.
const aggregateTemperature = 0.5

// GenerateFullSummary fans the three analyzer outputs into one model call and
// returns the combined summary and score. Both fields must be present in the
// response; anything else is a Status 500 report.
func GenerateFullSummary(ctx context.Context, cfg ModelConfig, technical TechnicalOutput, semantic SemanticOutput, psychometric PsychometricOutput, logger *slog.Logger) Report {
	if logger == nil {
		logger = slog.Default()
	}

	messages := []llm.Message{
		llm.System(
			"You are an expert resume analyst. " +
				"Return a JSON object with keys:\n" +
				"- summary: 3-4 line combined summary covering technical, semantic and psychometric findings\n" +
				"- score: (0-100)\n",
		),
		llm.User(
			"Generate a concise overall summary on the following.\n\n" +
				"Semantic: " + mustJSON(semantic) + "\n\n" +
				"Technical: " + mustJSON(technical) + "\n\n" +
				"Psychometric: " + mustJSON(psychometric) + "\n",
		),
	}

	content, err := cfg.Client.CreateCompletion(ctx, cfg.Model, aggregateTemperature, messages)
	if err != nil {
		logger.Error("analysis.aggregate.failed", "error", err)
		return failedReport(err)
	}

	parsed, err := llm.ParseJSONObject(content)
	if err != nil {
		logger.Error("analysis.aggregate.parse_failed", "error", err)
		return failedReport(err)
	}

	summaryVal, hasSummary := parsed["summary"]
	scoreVal, hasScore := parsed["score"]
	if !hasSummary || !hasScore || summaryVal == nil || scoreVal == nil {
		err := fmt.Errorf("invalid summary response from model")
		logger.Error("analysis.aggregate.incomplete", "has_summary", hasSummary, "has_score", hasScore)
		return failedReport(err)
	}

	summary, ok := summaryVal.(string)
	if !ok {
		summary = fmt.Sprintf("%v", summaryVal)
	}
	score, err := coerceScore(scoreVal)
	if err != nil {
		logger.Error("analysis.aggregate.bad_score", "score", scoreVal, "error", err)
		return failedReport(err)
	}

	logger.Info("analysis.aggregate.ok", "score", score)
	return Report{Summary: &summary, Score: score, Status: CodeOK}
}

func coerceScore(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("score is not an integer: %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("score has unexpected type %T", v)
	}
}

func failedReport(err error) Report {
	return Report{Summary: nil, Score: 0, Status: CodeFailed, Error: err.Error()}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
