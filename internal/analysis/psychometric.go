package analysis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

var psychometricRequired = []string{"psychologicalTraits", "risks", "trends"}

// PsychometricAnalysis infers psychological traits, risks and behavioural
// trends from the document.
func PsychometricAnalysis(ctx context.Context, req Request, logger *slog.Logger) (PsychometricOutput, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("analysis.psychometric.request", "model", req.Model.Model, "temp", req.Model.Temperature, "text_len", len(req.Text))

	messages := []llm.Message{
		llm.System(
			"You are an expert in psychometric analysis of written text. " +
				"RETURN FORMAT: JSON object with\n" +
				"- psychologicalTraits: The dominant psychological traits evident in the document. MAX 3\n" +
				"- risks: Potential behavioural or team risks suggested by the text. MAX 3\n" +
				"- trends: Observable behavioural trends or tendencies. MAX 3\n",
		),
		llm.User(
			"Analyze the following document text to infer psychological traits, " +
				"potential risks, and behavioural trends.\n\n" +
				"Document Text:\n" + req.Text + "\n\n" +
				"Return JSON only.",
		),
	}

	content, err := req.Model.Client.CreateCompletion(ctx, req.Model.Model, req.Model.Temperature, messages)
	if err != nil {
		return PsychometricOutput{}, err
	}

	raw, perr := llm.ExtractJSONBlock(content)
	if perr == nil {
		perr = llm.ValidateJSONAgainstSchema(llm.RequiredFieldsSchema(psychometricRequired...), raw)
	}
	if perr != nil {
		logger.Warn("analysis.psychometric.parse_failed", "error", perr)
		msg := perr.Error()
		return PsychometricOutput{Error: &msg, Code: CodeFailed}, nil
	}

	var out PsychometricOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		msg := err.Error()
		return PsychometricOutput{Error: &msg, Code: CodeFailed}, nil
	}
	out.Error = nil
	out.Code = CodeOK
	logger.Debug("analysis.psychometric.ok")
	return out, nil
}
