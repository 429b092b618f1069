// File: internal/agent/models_test.go
package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/droidpilot/droidpilot-cli/internal/agent"
)

func historyOfLen(n int) []agent.HistoryEntry {
	entries := make([]agent.HistoryEntry, n)
	for i := range entries {
		entries[i].StepIndex = i + 1
	}
	return entries
}

func TestTaskState_Window(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		history   int
		window    int
		wantLen   int
		wantFirst int
	}{
		{"empty history", 0, 3, 0, 0},
		{"window larger than history", 2, 5, 2, 1},
		{"window equals history", 3, 3, 3, 1},
		{"window smaller than history", 5, 2, 2, 4},
		{"zero window", 5, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			st := &agent.TaskState{History: historyOfLen(tc.history)}
			got := st.Window(tc.window)
			assert.Len(t, got, tc.wantLen)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantFirst, got[0].StepIndex)
			}
		})
	}
}

func TestTaskResult_Succeeded(t *testing.T) {
	t.Parallel()

	assert.True(t, (&agent.TaskResult{Outcome: agent.OutcomeCompleted}).Succeeded())
	assert.False(t, (&agent.TaskResult{Outcome: agent.OutcomeFailed}).Succeeded())
	assert.False(t, (&agent.TaskResult{Outcome: agent.OutcomeExhausted}).Succeeded())
}
