// File: internal/planner/prompt.go
package planner

import (
	"fmt"
	"strings"

	"github.com/droidpilot/droidpilot-cli/internal/action"
	"github.com/droidpilot/droidpilot-cli/internal/agent"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// maxPromptElements caps how many UI elements are rendered into the prompt so
// a dense screen does not blow the context window.
const maxPromptElements = 20

const systemPrompt = `You are an Android GUI automation agent. You observe the current screen and decide the single next action that makes progress on the user's task.

Respond with exactly one JSON object and nothing else:
{
  "action_type": "tap|long_press|swipe|scroll_up|scroll_down|text_input|key_event|wait|task_complete",
  "element_id": <int>,          // for tap/long_press: index from the element list
  "x": <int>, "y": <int>,       // alternative tap target in device pixels
  "x1": <int>, "y1": <int>,     // for swipe: start point
  "x2": <int>, "y2": <int>,     // for swipe: end point
  "text": "<string>",           // for text_input
  "key": "<KEY_NAME>",          // for key_event
  "duration": <float>,          // for wait: seconds
  "reasoning": "why this action"
}

Rules:
- Prefer element_id over raw coordinates when the target is listed.
- Supported keys: ` + "{KEYS}" + `
- Use "task_complete" only when the task goal is visibly achieved.
- Coordinates are absolute device pixels of the original screen size.`

// buildSystemPrompt fills the key vocabulary into the instruction block.
func buildSystemPrompt() string {
	return strings.Replace(systemPrompt, "{KEYS}", strings.Join(action.KeyNames(), ", "), 1)
}

// buildUserPrompt renders the task, the visible elements, and the recent
// history window into the per-step prompt.
func buildUserPrompt(state *perception.ScreenState, task string, history []agent.HistoryEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", task)
	fmt.Fprintf(&b, "Screen size: %dx%d\n\n", state.ScreenSize.Width, state.ScreenSize.Height)

	b.WriteString("Available UI elements:\n")
	count := len(state.Elements)
	if count > maxPromptElements {
		count = maxPromptElements
	}
	for i := 0; i < count; i++ {
		elem := state.Elements[i]
		flags := make([]string, 0, 2)
		if elem.Clickable {
			flags = append(flags, "clickable")
		}
		if elem.Scrollable {
			flags = append(flags, "scrollable")
		}
		flagStr := ""
		if len(flags) > 0 {
			flagStr = " [" + strings.Join(flags, ",") + "]"
		}
		fmt.Fprintf(&b, "  %d: %q (%s)%s at (%d, %d)\n",
			i, elem.Label(), elem.ShortClass(), flagStr, elem.Center.X, elem.Center.Y)
	}
	if len(state.Elements) > count {
		fmt.Fprintf(&b, "  ... %d more elements omitted\n", len(state.Elements)-count)
	}

	if len(history) > 0 {
		b.WriteString("\nRecent actions:\n")
		for _, entry := range history {
			outcome := "ok"
			if !entry.Success {
				outcome = "FAILED"
				if entry.Failure != "" {
					outcome = string(entry.Failure)
				}
			}
			desc := string(entry.Intent.Type)
			if entry.Command != nil {
				desc = entry.Command.String()
			}
			fmt.Fprintf(&b, "  - step %d: %s (%s)", entry.StepIndex, desc, outcome)
			if entry.Reasoning != "" {
				fmt.Fprintf(&b, ": %s", entry.Reasoning)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nNext action (JSON only):")
	return b.String()
}
