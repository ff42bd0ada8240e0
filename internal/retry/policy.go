// Package retry bounds rate-limit re-attempts for queued units of work.
//
// Instead of signalling a reschedule through control flow, the policy is a
// pure decision function: the orchestrator asks what to do with attempt N
// and gets back either a delay to republish with or a verdict to fail
// terminally. Synchronous call paths never consult it; there the original
// rate-limit error propagates to the caller.
package retry

import "time"

// FailureReason is attached to a unit of work that exhausted its retries.
const FailureReason = "rate_limit"

// Decision is the policy's verdict for one attempt.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Policy holds the retry budget. The zero value retries nothing.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Default matches the queue-level budget: up to 3 re-attempts starting at 5s.
var Default = Policy{
	MaxRetries: 3,
	BaseDelay:  5 * time.Second,
	MaxDelay:   2 * time.Minute,
}

// Decide returns the verdict for a unit of work that has already run
// `attempt` times (first failure passes attempt=0). Delays grow
// exponentially: base, 2*base, 4*base, capped at MaxDelay.
func (p Policy) Decide(attempt int) Decision {
	if attempt >= p.MaxRetries {
		return Decision{}
	}
	delay := p.BaseDelay << uint(attempt)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return Decision{Retry: true, Delay: delay}
}
