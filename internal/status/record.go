package status

import (
	"time"

	"github.com/joseph-ayodele/resume-analyzer/constants"
)

// StageStatus is the recorded state of one stage of a job's chain.
type StageStatus struct {
	Stage constants.Stage     `json:"stage"`
	State constants.TaskState `json:"state"`
	Error string              `json:"error,omitempty"`
}

// FinalReport is the payload attached to a finished job.
type FinalReport struct {
	FileID  string  `json:"file_id"`
	Summary *string `json:"summary"`
	Score   int     `json:"score"`
}

// Record is the explicit per-job status record, indexed by task id: a fixed
// ordered list of stage statuses instead of a backward-walked chain of broker
// task results. Exactly one stage writes it at a time because stage order is
// strictly enforced per job.
type Record struct {
	TaskID    string        `json:"task_id"`
	FileID    string        `json:"file_id"`
	FileName  string        `json:"file_name"`
	Stages    []StageStatus `json:"stages"`
	Result    *FinalReport  `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewRecord creates a PENDING record for the fixed three-stage chain.
func NewRecord(taskID, fileID, fileName string) *Record {
	return &Record{
		TaskID:   taskID,
		FileID:   fileID,
		FileName: fileName,
		Stages: []StageStatus{
			{Stage: constants.StageExtract, State: constants.TaskStatePending},
			{Stage: constants.StageAnalyze, State: constants.TaskStatePending},
			{Stage: constants.StageReport, State: constants.TaskStatePending},
		},
		CreatedAt: time.Now().UTC(),
	}
}

// SetStage updates one stage's state in place.
func (r *Record) SetStage(stage constants.Stage, state constants.TaskState, errMsg string) {
	for i := range r.Stages {
		if r.Stages[i].Stage == stage {
			r.Stages[i].State = state
			r.Stages[i].Error = errMsg
			return
		}
	}
}

// stage returns the recorded status for a stage, or nil.
func (r *Record) stage(stage constants.Stage) *StageStatus {
	for i := range r.Stages {
		if r.Stages[i].Stage == stage {
			return &r.Stages[i]
		}
	}
	return nil
}
