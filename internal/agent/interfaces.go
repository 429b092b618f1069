// File: internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/droidpilot/droidpilot-cli/internal/action"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// Perceptor captures the current screen state. Implemented by
// perception.Builder; mocked in tests.
type Perceptor interface {
	Capture(ctx context.Context) (*perception.ScreenState, error)
}

// Planner proposes the next action for a task as raw model text. The history
// window it receives is the trailing slice the control loop chose to expose,
// never the full history.
type Planner interface {
	Propose(ctx context.Context, state *perception.ScreenState, task string, history []HistoryEntry) (string, error)
}

// Executor performs one fully bounded command on the device. The control
// loop never retries a failed command; retries, if any, are the executor's
// own concern.
type Executor interface {
	Execute(ctx context.Context, cmd *action.Command) error
}
