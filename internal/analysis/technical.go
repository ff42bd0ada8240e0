package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
)

// DefaultThreshold is the technical fit threshold used when the caller
// supplies none.
const DefaultThreshold = 70

var technicalRequired = []string{"technicalSummary", "skillMatch", "experienceLevel", "overallScore"}

// TechnicalAnalysis scores the document's technical content: skills,
// experience level, overall fit. Optional job-description criteria tighten
// the evaluation. A provider failure propagates as an error; a malformed
// response degrades to a Code 500 output.
func TechnicalAnalysis(ctx context.Context, req Request, logger *slog.Logger) (TechnicalOutput, error) {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	logger.Debug("analysis.technical.request", "model", req.Model.Model, "temp", req.Model.Temperature, "threshold", threshold, "text_len", len(req.Text))

	messages := []llm.Message{
		llm.System(buildTechnicalSystemPrompt(req)),
		llm.User(
			"Analyze the following text to understand its technical details, " +
				"identify mentioned skills, determine overall experience level " +
				"and calculate the overall technical score.\n\n" +
				"Document Text:\n" + req.Text + "\n\n" +
				"Return JSON only.",
		),
	}

	content, err := req.Model.Client.CreateCompletion(ctx, req.Model.Model, req.Model.Temperature, messages)
	if err != nil {
		return TechnicalOutput{}, err
	}

	out, perr := parseTechnical(content)
	if perr != nil {
		logger.Warn("analysis.technical.parse_failed", "error", perr)
		return failedTechnical(perr), nil
	}
	logger.Debug("analysis.technical.ok", "score", out.OverallScore)
	return out, nil
}

func buildTechnicalSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an EXPERT in analysing technical details from text. ")
	b.WriteString("RETURN FORMAT: JSON object with\n")
	b.WriteString("- technicalSummary: A 2 line summary of technical details.\n")
	b.WriteString("- skillMatch: MAX 3 of the skills mentioned in the document.\n")
	b.WriteString("- experienceLevel: An overall true experience level classification (Junior, Mid, Senior, Manager, CTO, COO).\n")
	b.WriteString("- overallScore: A score representing the overall technical fit. (0-100)\n")
	b.WriteString("Evaluation Criteria (optional):\n")
	if req.JDPrompt != "" {
		b.WriteString("- Job Description: " + req.JDPrompt + "\n")
	}
	if c := req.Criteria; c != nil {
		if c.CompanyName != "" {
			b.WriteString("- Company: " + c.CompanyName + "\n")
		}
		if c.Role != "" {
			b.WriteString("- Role: " + c.Role + "\n")
		}
		if c.ExperienceLevel > 0 {
			b.WriteString(fmt.Sprintf("- Expected years of experience: %d\n", c.ExperienceLevel))
		}
		if c.JobDescription != "" {
			b.WriteString("- Job Description: " + c.JobDescription + "\n")
		}
	}
	return b.String()
}

func parseTechnical(content string) (TechnicalOutput, error) {
	raw, err := llm.ExtractJSONBlock(content)
	if err != nil {
		return TechnicalOutput{}, err
	}
	if err := llm.ValidateJSONAgainstSchema(llm.RequiredFieldsSchema(technicalRequired...), raw); err != nil {
		return TechnicalOutput{}, err
	}
	var out TechnicalOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return TechnicalOutput{}, err
	}
	out.Error = nil
	out.Code = CodeOK
	return out, nil
}

func failedTechnical(err error) TechnicalOutput {
	msg := err.Error()
	return TechnicalOutput{Error: &msg, Code: CodeFailed}
}
