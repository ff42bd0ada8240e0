package constants

// Stage names one phase of the analysis pipeline.
type Stage string

const (
	StageExtract Stage = "extracting"
	StageAnalyze Stage = "analysis"
	StageReport  Stage = "reporting"
)

// Queue routing: extraction gets its own queue, analysis and reporting share one.
const (
	QueueExtraction = "extraction"
	QueueAnalysis   = "analysis"
)

// Queue returns the queue a stage's work is routed to.
func (s Stage) Queue() string {
	if s == StageExtract {
		return QueueExtraction
	}
	return QueueAnalysis
}

// Progress maps an in-flight stage to a fixed progress percentage.
// Unknown stages report 10 so a running-but-unlabelled task is still
// distinguishable from PENDING.
func (s Stage) Progress() int {
	switch s {
	case StageExtract:
		return 20
	case StageAnalyze:
		return 60
	case StageReport:
		return 90
	default:
		return 10
	}
}
