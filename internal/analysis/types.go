package analysis

import "github.com/joseph-ayodele/resume-analyzer/internal/llm"

// Per-analyzer result codes.
const (
	CodeOK     = 200
	CodeFailed = 500
)

// ModelConfig carries an already-constructed provider client plus the chosen
// model and temperature. Analyzers never select providers themselves.
type ModelConfig struct {
	Client      llm.Client
	Model       string
	Temperature float32
}

// Criteria is the optional evaluation context attached to a submission.
type Criteria struct {
	CompanyName     string `json:"company_name,omitempty"`
	Role            string `json:"role,omitempty"`
	ExperienceLevel int    `json:"experience_level,omitempty"`
	JobDescription  string `json:"job_description,omitempty"`
}

// Request is the input to a full analysis run.
type Request struct {
	Text      string
	Model     ModelConfig
	Threshold int // technical fit threshold, 0 means default
	Criteria  *Criteria
	JDPrompt  string
}

// Analyzer data fields are deliberately `any`: the prompts request specific
// shapes (strings, max-3 lists, 0-100 integers) but out-of-policy model
// output is accepted as-is, never rejected. Only field PRESENCE is validated.

// TechnicalOutput is the technical analyzer's result.
type TechnicalOutput struct {
	TechnicalSummary any     `json:"technicalSummary"`
	SkillMatch       any     `json:"skillMatch"`
	ExperienceLevel  any     `json:"experienceLevel"`
	OverallScore     any     `json:"overallScore"`
	Error            *string `json:"error"`
	Code             int     `json:"code"`
}

// SemanticOutput is the semantic analyzer's result.
type SemanticOutput struct {
	SemanticSummary  any     `json:"semanticSummary"`
	KeyThemes        any     `json:"keyThemes"`
	OverallSentiment any     `json:"overallSentiment"`
	Error            *string `json:"error"`
	Code             int     `json:"code"`
}

// PsychometricOutput is the psychometric analyzer's result.
type PsychometricOutput struct {
	PsychologicalTraits any     `json:"psychologicalTraits"`
	Risks               any     `json:"risks"`
	Trends              any     `json:"trends"`
	Error               *string `json:"error"`
	Code                int     `json:"code"`
}

// Report is the aggregate result, one discriminated type for both branches:
// success is {Summary, Score, Status: 200}; failure is
// {Summary: nil, Score: 0, Status: 500, Error}.
type Report struct {
	Summary *string `json:"summary"`
	Score   int     `json:"score"`
	Status  int     `json:"status"`
	Error   string  `json:"error,omitempty"`
}

// OK reports whether the aggregate run succeeded.
func (r Report) OK() bool { return r.Status == CodeOK }

// FullResult bundles the three analyzer outputs with the aggregate report;
// it is what the analyze stage persists for the report stage.
type FullResult struct {
	Technical    TechnicalOutput    `json:"technical"`
	Semantic     SemanticOutput     `json:"semantic"`
	Psychometric PsychometricOutput `json:"psychometric"`
	Summary      *string            `json:"summary"`
	Score        int                `json:"score"`
	Status       int                `json:"status"`
	Error        string             `json:"error,omitempty"`
}
