// File: internal/agent/models.go
package agent

import (
	"time"

	"github.com/droidpilot/droidpilot-cli/internal/action"
)

// LoopState represents the control loop's current phase within one step of
// its perceive-plan-act cycle.
type LoopState string

const (
	StateIdle       LoopState = "IDLE"       // No task is running.
	StatePerceiving LoopState = "PERCEIVING" // Capturing the screen state.
	StatePlanning   LoopState = "PLANNING"   // Waiting on the planner.
	StateParsing    LoopState = "PARSING"    // Extracting an intent from the response.
	StateValidating LoopState = "VALIDATING" // Bounding the intent into a command.
	StateExecuting  LoopState = "EXECUTING"  // The command is on the device.
	StateCompleted  LoopState = "COMPLETED"  // The planner declared the task done.
	StateFailed     LoopState = "FAILED"     // A fatal failure terminated the task.
	StateExhausted  LoopState = "EXHAUSTED"  // The step budget ran out.
)

// Outcome is the user-visible result of a task. Exactly one of these is
// reported, together with the step count reached.
type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeExhausted Outcome = "EXHAUSTED"
)

// HistoryEntry records one completed (or failed) step. The history is
// append-only; the full list is retained for reporting while only a trailing
// window is ever shown to the planner.
type HistoryEntry struct {
	StepIndex int                  `json:"step_index"`
	Intent    action.Intent        `json:"intent"`
	Command   *action.Command      `json:"command,omitempty"` // nil when the step never produced one
	Reasoning string               `json:"reasoning,omitempty"`
	Success   bool                 `json:"success"`
	Failure   FailureClass         `json:"failure,omitempty"` // empty on success
	Degraded  action.DegradeReason `json:"degraded,omitempty"`
	Error     string               `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// TaskState is the per-task mutable state. It is created at task start,
// mutated once per iteration by the control loop, and discarded at task end.
// It is never shared across tasks.
type TaskState struct {
	TaskID      string
	Description string
	StepCount   int
	MaxSteps    int
	Completed   bool
	History     []HistoryEntry
}

// Window returns the last n history entries, the slice the planner sees.
func (s *TaskState) Window(n int) []HistoryEntry {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// TaskResult is the final report of one task run.
type TaskResult struct {
	TaskID      string
	Description string
	Outcome     Outcome
	Steps       int
	// Failure carries the terminating error classification when the outcome
	// is OutcomeFailed.
	Failure FailureClass
	Err     error
	// Completion records how task completion was detected, when it was.
	Completion action.CompletionSource
	StartTime  time.Time
	EndTime    time.Time
	History    []HistoryEntry
}

// Succeeded reports whether the task reached completion.
func (r *TaskResult) Succeeded() bool {
	return r.Outcome == OutcomeCompleted
}
