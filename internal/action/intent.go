// File: internal/action/intent.go
package action

import "time"

// Type enumerates every action the planner can legally request. The parser
// only ever emits these values; anything it does not recognize degrades to
// TypeWait before it reaches validation, so "unknown action type" cannot
// silently drop at runtime.
type Type string

const (
	TypeTap          Type = "TAP"           // Tap an element or coordinate.
	TypeLongPress    Type = "LONG_PRESS"    // Press and hold at a coordinate.
	TypeSwipe        Type = "SWIPE"         // Swipe between two coordinates.
	TypeScrollUp     Type = "SCROLL_UP"     // Screen-relative upward scroll.
	TypeScrollDown   Type = "SCROLL_DOWN"   // Screen-relative downward scroll.
	TypeTextInput    Type = "TEXT_INPUT"    // Type text into the focused field.
	TypeKeyEvent     Type = "KEY_EVENT"     // Press a hardware key.
	TypeWait         Type = "WAIT"          // Pause without touching the device.
	TypeTaskComplete Type = "TASK_COMPLETE" // The planner declares the task done.
)

// CompletionSource records how a TASK_COMPLETE intent was detected. The
// heuristic path is inherently less reliable, so the two origins stay
// distinguishable all the way into the task report.
type CompletionSource string

const (
	CompletionExplicit  CompletionSource = "explicit"  // Declared as an action kind.
	CompletionHeuristic CompletionSource = "heuristic" // Inferred from completion language.
)

// Intent is the planner's declared intention prior to coordinate resolution.
// Only the fields belonging to its Type are meaningful; the parser guarantees
// an intent is either fully populated for its variant or replaced wholesale
// by the Wait fallback.
type Intent struct {
	Type Type

	// Tap / LongPress target. Coordinates are device pixels, resolved from an
	// element reference or taken verbatim from the response.
	X int
	Y int

	// Swipe end point.
	X2 int
	Y2 int

	// Touch duration for swipes and long presses. Zero means "apply the
	// canonical default" at validation time.
	Duration time.Duration

	// TextInput payload. A pointer so a present-but-empty string (a valid
	// no-op) is distinguishable from an absent field.
	Text *string

	// KeyEvent key name, validated against the fixed key table.
	Key string

	// Wait pause length. Zero means the canonical default.
	WaitDuration time.Duration

	// Completion provenance, set only on TASK_COMPLETE.
	Completion CompletionSource
}

// DegradeReason tags why a parse degraded to the Wait fallback. It exists for
// observability only and never drives control flow.
type DegradeReason string

const (
	DegradeNone          DegradeReason = ""
	DegradeNoJSON        DegradeReason = "NO_JSON_OBJECT"
	DegradeBadJSON       DegradeReason = "UNPARSEABLE_JSON"
	DegradeUnknownAction DegradeReason = "UNKNOWN_ACTION_TYPE"
	DegradeBadElementRef DegradeReason = "ELEMENT_REF_OUT_OF_RANGE"
	DegradeMissingFields DegradeReason = "MISSING_REQUIRED_FIELDS"
)

// Decision is the full outcome of parsing one planner response.
type Decision struct {
	Intent    Intent
	Reasoning string
	// Degraded is non-empty when the intent is a fallback rather than what
	// the planner asked for.
	Degraded DegradeReason
}
