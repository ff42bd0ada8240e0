package constants

// TaskState is the canonical state for one unit of work in a job chain.
type TaskState string

// Stable values (these exact strings are stored in the status record and
// returned by the status endpoint).
const (
	TaskStatePending TaskState = "PENDING" // enqueued, not picked up yet
	TaskStateStarted TaskState = "STARTED" // running on a worker
	TaskStateRetry   TaskState = "RETRY"   // rescheduled after a rate limit
	TaskStateSuccess TaskState = "SUCCESS" // completed
	TaskStateFailure TaskState = "FAILURE" // terminal failure
)

// Terminal reports whether the state ends the unit of work.
func (s TaskState) Terminal() bool {
	return s == TaskStateSuccess || s == TaskStateFailure
}
