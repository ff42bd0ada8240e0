package analysis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

var semanticRequired = []string{"semanticSummary", "keyThemes", "overallSentiment"}

// SemanticAnalysis extracts the document's contextual meaning, key themes
// and overall sentiment.
func SemanticAnalysis(ctx context.Context, req Request, logger *slog.Logger) (SemanticOutput, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("analysis.semantic.request", "model", req.Model.Model, "temp", req.Model.Temperature, "text_len", len(req.Text))

	messages := []llm.Message{
		llm.System(
			"You are an expert in semantic analysis. " +
				"RETURN FORMAT: JSON object with\n" +
				"- semanticSummary: A 2-3 line summary of the document's meaning and implications.\n" +
				"- keyThemes: A list of the main themes or topics present in the document. MAX 3\n" +
				"- overallSentiment: An overall sentiment classification (e.g., Positive, Negative, Neutral)\n",
		),
		llm.User(
			"Analyze the following document text to understand its contextual " +
				"meaning, identify key themes, and determine the overall sentiment.\n\n" +
				"Document Text:\n" + req.Text + "\n\n" +
				"Return JSON only.",
		),
	}

	content, err := req.Model.Client.CreateCompletion(ctx, req.Model.Model, req.Model.Temperature, messages)
	if err != nil {
		return SemanticOutput{}, err
	}

	raw, perr := llm.ExtractJSONBlock(content)
	if perr == nil {
		perr = llm.ValidateJSONAgainstSchema(llm.RequiredFieldsSchema(semanticRequired...), raw)
	}
	if perr != nil {
		logger.Warn("analysis.semantic.parse_failed", "error", perr)
		msg := perr.Error()
		return SemanticOutput{Error: &msg, Code: CodeFailed}, nil
	}

	var out SemanticOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		msg := err.Error()
		return SemanticOutput{Error: &msg, Code: CodeFailed}, nil
	}
	out.Error = nil
	out.Code = CodeOK
	logger.Debug("analysis.semantic.ok", "sentiment", out.OverallSentiment)
	return out, nil
}
