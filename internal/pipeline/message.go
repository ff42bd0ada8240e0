package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
)

// Message is the small handoff payload passed between stages on the queue.
// It carries identifiers and job parameters only; bulk data (raw PDF bytes,
// extracted text, analysis results) always travels through the artifact
// store keyed by FileID.
type Message struct {
	Stage    constants.Stage `json:"stage"`
	TaskID   string          `json:"task_id"`
	FileID   string          `json:"file_id"`
	FileName string          `json:"file_name,omitempty"`

	// Model parameters, bound at submission and carried down the chain.
	Model       string             `json:"ai_model,omitempty"`
	Temperature *float32           `json:"temperature,omitempty"`
	Threshold   int                `json:"threshold,omitempty"`
	Criteria    *analysis.Criteria `json:"criteria,omitempty"`
	JDPrompt    string             `json:"jd_prompt,omitempty"`

	// Attempts counts how many times this unit of work has already run;
	// the retry policy decides what to do with it after a rate limit.
	Attempts int `json:"attempts"`
}

// Next derives the handoff for the following stage, keeping ids and job
// parameters and resetting the attempt counter.
func (m Message) Next(stage constants.Stage) Message {
	next := m
	next.Stage = stage
	next.Attempts = 0
	return next
}

func (m Message) Encode() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s message: %w", m.Stage, err)
	}
	return b, nil
}

func DecodeMessage(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("unmarshal stage message: %w", err)
	}
	if m.TaskID == "" || m.FileID == "" {
		return Message{}, fmt.Errorf("stage message missing task_id or file_id")
	}
	return m, nil
}
