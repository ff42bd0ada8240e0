package status

import "github.com/joseph-ayodele/resume-analyzer/constants"

// Terminal stage labels in the resolved view.
const (
	StageDone   = "done"
	StageFailed = "failed"
)

// View is the synthesized status returned to pollers.
type View struct {
	TaskID   string              `json:"task_id"`
	State    constants.TaskState `json:"state"`
	Progress int                 `json:"progress"`
	Stage    *string             `json:"stage"`
	Result   *FinalReport        `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Resolve picks the single most relevant state out of a job's stage record.
// Stages are scanned newest to oldest (report, analyze, extract) in priority
// order FAILURE > STARTED > RETRY, so a failure anywhere in the chain
// surfaces immediately even while later stages are still pending, and an
// in-progress earlier stage is visible before the chain reaches later ones.
//
// Progress never decreases across polls: a job that is between stages
// (predecessor SUCCESS, successor not yet started) keeps reporting the
// finished stage's progress instead of dropping back to 0.
func Resolve(rec *Record) View {
	view := View{TaskID: rec.TaskID}

	newestFirst := []constants.Stage{constants.StageReport, constants.StageAnalyze, constants.StageExtract}

	for _, want := range []constants.TaskState{constants.TaskStateFailure, constants.TaskStateStarted, constants.TaskStateRetry} {
		for _, name := range newestFirst {
			st := rec.stage(name)
			if st == nil || st.State != want {
				continue
			}
			if want == constants.TaskStateFailure {
				stage := StageFailed
				view.State = constants.TaskStateFailure
				view.Progress = 100
				view.Stage = &stage
				view.Error = st.Error
				return view
			}
			stage := string(st.Stage)
			view.State = want
			view.Progress = st.Stage.Progress()
			view.Stage = &stage
			return view
		}
	}

	// No failed or running stage. Either everything succeeded, nothing has
	// started, or the job sits between two stages.
	if st := rec.stage(constants.StageReport); st != nil && st.State == constants.TaskStateSuccess {
		stage := StageDone
		view.State = constants.TaskStateSuccess
		view.Progress = 100
		view.Stage = &stage
		view.Result = rec.Result
		return view
	}

	var lastDone *StageStatus
	for _, name := range newestFirst {
		if st := rec.stage(name); st != nil && st.State == constants.TaskStateSuccess {
			lastDone = st
			break
		}
	}
	if lastDone != nil {
		stage := string(lastDone.Stage)
		view.State = constants.TaskStatePending
		view.Progress = lastDone.Stage.Progress()
		view.Stage = &stage
		return view
	}

	view.State = constants.TaskStatePending
	view.Progress = 0
	return view
}
