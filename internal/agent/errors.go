// File: internal/agent/errors.go
package agent

// FailureClass is a string type used for structured failure reporting from
// the control loop. Using a custom type ensures only predefined constants can
// appear where a classification is expected.
type FailureClass string

const (
	// FailureCapture marks a failed screen capture. It is unconditionally
	// fatal: no planning is possible without a screen.
	FailureCapture FailureClass = "CAPTURE_FAILURE"
	// FailurePlanner marks a planner call that errored or timed out.
	// Recoverable under the continue-on-error policy.
	FailurePlanner FailureClass = "PLANNER_FAILURE"
	// FailureValidation marks an intent the validator rejected. Recoverable
	// under the continue-on-error policy.
	FailureValidation FailureClass = "VALIDATION_ERROR"
	// FailureParseDegraded marks a planner response that degraded to the Wait
	// fallback. Never fatal; recorded for observability only.
	FailureParseDegraded FailureClass = "PARSE_DEGRADED"
	// FailureExecution marks a device command that failed. Execution failures
	// are expected and transient, so the loop always continues past them
	// regardless of policy.
	FailureExecution FailureClass = "EXECUTION_FAILURE"
	// FailureCancelled marks a task stopped by context cancellation at a step
	// boundary.
	FailureCancelled FailureClass = "CANCELLED"
)
