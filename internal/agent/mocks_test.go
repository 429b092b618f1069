// File: internal/agent/mocks_test.go
package agent_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/droidpilot/droidpilot-cli/internal/action"
	"github.com/droidpilot/droidpilot-cli/internal/agent"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// -- Perceptor Mock --

// MockPerceptor mocks the agent.Perceptor interface.
type MockPerceptor struct {
	mock.Mock
}

// Capture mocks the screen capture call.
func (m *MockPerceptor) Capture(ctx context.Context) (*perception.ScreenState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*perception.ScreenState), args.Error(1)
}

// -- Planner Mock --

// MockPlanner mocks the agent.Planner interface.
type MockPlanner struct {
	mock.Mock
}

// Propose mocks the planner call, returning canned raw model text.
func (m *MockPlanner) Propose(ctx context.Context, state *perception.ScreenState, task string, history []agent.HistoryEntry) (string, error) {
	args := m.Called(ctx, state, task, history)
	return args.String(0), args.Error(1)
}

// -- Executor Mock --

// MockExecutor mocks the agent.Executor interface.
type MockExecutor struct {
	mock.Mock
}

// Execute mocks command execution on the device.
func (m *MockExecutor) Execute(ctx context.Context, cmd *action.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}
