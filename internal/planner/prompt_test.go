// File: internal/planner/prompt_test.go
package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/droidpilot/droidpilot-cli/internal/action"
	"github.com/droidpilot/droidpilot-cli/internal/agent"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

func TestBuildSystemPrompt_ListsKeyVocabulary(t *testing.T) {
	t.Parallel()

	prompt := buildSystemPrompt()
	assert.NotContains(t, prompt, "{KEYS}")
	for _, key := range action.KeyNames() {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildUserPrompt_RendersElements(t *testing.T) {
	t.Parallel()

	state := &perception.ScreenState{
		ScreenSize: perception.Size{Width: 1080, Height: 2400},
		Elements: []perception.Element{
			{Text: "Send", ClassName: "android.widget.Button", Clickable: true, Center: perception.Point{X: 200, Y: 300}},
			{ContentDesc: "Feed", ClassName: "android.widget.ListView", Scrollable: true, Center: perception.Point{X: 540, Y: 1200}},
		},
	}

	prompt := buildUserPrompt(state, "send the message", nil)

	assert.Contains(t, prompt, "Task: send the message")
	assert.Contains(t, prompt, "Screen size: 1080x2400")
	assert.Contains(t, prompt, `0: "Send" (Button) [clickable] at (200, 300)`)
	assert.Contains(t, prompt, `1: "Feed" (ListView) [scrollable] at (540, 1200)`)
	assert.Contains(t, prompt, "Next action (JSON only):")
	assert.NotContains(t, prompt, "Recent actions")
}

func TestBuildUserPrompt_TruncatesDenseScreens(t *testing.T) {
	t.Parallel()

	elements := make([]perception.Element, maxPromptElements+7)
	for i := range elements {
		elements[i] = perception.Element{Text: "item", ClassName: "c.View"}
	}
	state := &perception.ScreenState{
		ScreenSize: perception.Size{Width: 1080, Height: 2400},
		Elements:   elements,
	}

	prompt := buildUserPrompt(state, "task", nil)

	assert.Contains(t, prompt, "... 7 more elements omitted")
	assert.Equal(t, maxPromptElements, strings.Count(prompt, `"item"`))
}

func TestBuildUserPrompt_RendersHistory(t *testing.T) {
	t.Parallel()

	state := &perception.ScreenState{ScreenSize: perception.Size{Width: 1080, Height: 2400}}
	history := []agent.HistoryEntry{
		{
			StepIndex: 1,
			Command:   &action.Command{Type: action.TypeTap, X: 200, Y: 300},
			Success:   true,
			Reasoning: "pressed send",
		},
		{
			StepIndex: 2,
			Intent:    action.Intent{Type: action.TypeWait},
			Success:   false,
			Failure:   agent.FailureExecution,
		},
	}

	prompt := buildUserPrompt(state, "task", history)

	assert.Contains(t, prompt, "Recent actions:")
	assert.Contains(t, prompt, "step 1: tap(200, 300) (ok): pressed send")
	assert.Contains(t, prompt, "step 2: WAIT (EXECUTION_FAILURE)")
}
