// File: internal/action/parser_test.go
package action_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/action"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// testState builds a screen with three tappable elements at known centers.
func testState() *perception.ScreenState {
	return &perception.ScreenState{
		ScreenSize: perception.Size{Width: 1080, Height: 2400},
		Elements: []perception.Element{
			{Text: "Send", Clickable: true, Center: perception.Point{X: 200, Y: 300}},
			{Text: "Cancel", Clickable: true, Center: perception.Point{X: 200, Y: 500}},
			{ContentDesc: "Menu", Clickable: true, Center: perception.Point{X: 1000, Y: 100}},
		},
	}
}

func newTestParser() *action.ResponseParser {
	return action.NewResponseParser(zap.NewNop())
}

func TestParse_TapByElementID(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "tap", "element_id": 1, "reasoning": "press cancel"}`, testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeTap, dec.Intent.Type)
	assert.Equal(t, 200, dec.Intent.X)
	assert.Equal(t, 500, dec.Intent.Y)
	assert.Equal(t, "press cancel", dec.Reasoning)
}

func TestParse_ProseAroundJSON(t *testing.T) {
	t.Parallel()

	// Prose with quotes and a brace inside a JSON string field must not
	// confuse the extraction.
	raw := "Sure! I think we should tap the \"Send\" button. Here is my answer:\n" +
		"```json\n" +
		`{"action_type": "tap", "x": 50, "y": 60, "reasoning": "the {target} is visible"}` + "\n" +
		"```\nLet me know how it goes."

	dec := newTestParser().Parse(raw, testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeTap, dec.Intent.Type)
	assert.Equal(t, 50, dec.Intent.X)
	assert.Equal(t, 60, dec.Intent.Y)
}

func TestParse_MarkdownFence(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"action_type\": \"key_event\", \"key\": \"BACK\"}\n```"
	dec := newTestParser().Parse(raw, testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeKeyEvent, dec.Intent.Type)
	assert.Equal(t, "BACK", dec.Intent.Key)
}

func TestParse_NoJSONDegradesToWait(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse("I am not sure what to do next.", testState())

	assert.Equal(t, action.DegradeNoJSON, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
	assert.Equal(t, action.DefaultWaitDuration, dec.Intent.WaitDuration)
}

func TestParse_UnparseableJSONDegradesToWait(t *testing.T) {
	t.Parallel()

	// Broken beyond what a repair pass can recover. Whether the repair fails
	// outright or yields a nonsense action, the outcome is the Wait fallback.
	dec := newTestParser().Parse(`{"action_type": tap tap tap :::}`, testState())

	assert.NotEmpty(t, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
}

func TestParse_RepairsAlmostJSON(t *testing.T) {
	t.Parallel()

	// Trailing comma and single quotes, the model's favorite mistakes.
	raw := `{'action_type': 'tap', 'element_id': 0,}`
	dec := newTestParser().Parse(raw, testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeTap, dec.Intent.Type)
	assert.Equal(t, 200, dec.Intent.X)
	assert.Equal(t, 300, dec.Intent.Y)
}

func TestParse_ElementRefOutOfRange(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "tap", "element_id": 99}`, testState())

	assert.Equal(t, action.DegradeBadElementRef, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
}

func TestParse_ElementRefFallsBackToCoordinates(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "tap", "element_id": 99, "x": 10, "y": 20}`, testState())

	assert.Empty(t, dec.Degraded, "explicit coordinates rescue a bad element reference")
	assert.Equal(t, action.TypeTap, dec.Intent.Type)
	assert.Equal(t, 10, dec.Intent.X)
	assert.Equal(t, 20, dec.Intent.Y)
}

func TestParse_TouchWithoutTarget(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "tap"}`, testState())
	assert.Equal(t, action.DegradeMissingFields, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
}

func TestParse_LongPress(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "long_press", "element_id": 2, "duration_ms": 1500}`, testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeLongPress, dec.Intent.Type)
	assert.Equal(t, 1000, dec.Intent.X)
	assert.Equal(t, 100, dec.Intent.Y)
	assert.Equal(t, 1500*time.Millisecond, dec.Intent.Duration)
}

func TestParse_Swipe(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "swipe", "x1": 100, "y1": 1500, "x2": 100, "y2": 500}`, testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeSwipe, dec.Intent.Type)
	assert.Equal(t, 100, dec.Intent.X)
	assert.Equal(t, 1500, dec.Intent.Y)
	assert.Equal(t, 100, dec.Intent.X2)
	assert.Equal(t, 500, dec.Intent.Y2)
}

func TestParse_SwipeMissingCoordinates(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "swipe", "x1": 100}`, testState())
	assert.Equal(t, action.DegradeMissingFields, dec.Degraded)
}

func TestParse_Scrolls(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "scroll_down"}`, testState())
	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeScrollDown, dec.Intent.Type)

	dec = newTestParser().Parse(`{"action_type": "scroll_up"}`, testState())
	assert.Equal(t, action.TypeScrollUp, dec.Intent.Type)
}

func TestParse_TextInput(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "text_input", "text": "hello world"}`, testState())
	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeTextInput, dec.Intent.Type)
	require.NotNil(t, dec.Intent.Text)
	assert.Equal(t, "hello world", *dec.Intent.Text)
}

func TestParse_TextInputEmptyStringIsPresent(t *testing.T) {
	t.Parallel()

	// A present-but-empty text field is a valid no-op, not a missing field.
	dec := newTestParser().Parse(`{"action_type": "text_input", "text": ""}`, testState())
	assert.Empty(t, dec.Degraded)
	require.NotNil(t, dec.Intent.Text)
	assert.Equal(t, "", *dec.Intent.Text)
}

func TestParse_TextInputMissingField(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "text_input"}`, testState())
	assert.Equal(t, action.DegradeMissingFields, dec.Degraded)
}

func TestParse_Wait(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "wait", "duration": 2.5}`, testState())
	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
	assert.Equal(t, 2500*time.Millisecond, dec.Intent.WaitDuration)

	dec = newTestParser().Parse(`{"action_type": "wait"}`, testState())
	assert.Equal(t, action.DefaultWaitDuration, dec.Intent.WaitDuration)
}

func TestParse_UnknownActionDegradesToWait(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"action_type": "teleport", "reasoning": "why not"}`, testState())
	assert.Equal(t, action.DegradeUnknownAction, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
	assert.Equal(t, "why not", dec.Reasoning)
}

func TestParse_AltTypeKeyAccepted(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse(`{"type": "key_event", "key": "home"}`, testState())
	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeKeyEvent, dec.Intent.Type)
}

func TestParse_ExplicitCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"action kind", `{"action_type": "task_complete", "reasoning": "goal reached"}`},
		{"boolean flag", `{"action_type": "wait", "task_complete": true, "reasoning": "goal reached"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dec := newTestParser().Parse(tc.raw, testState())
			assert.Empty(t, dec.Degraded)
			assert.Equal(t, action.TypeTaskComplete, dec.Intent.Type)
			assert.Equal(t, action.CompletionExplicit, dec.Intent.Completion)
			assert.Equal(t, "goal reached", dec.Reasoning)
		})
	}
}

func TestParse_HeuristicCompletion(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse("The task is complete. The message was sent successfully.", testState())

	assert.Empty(t, dec.Degraded)
	assert.Equal(t, action.TypeTaskComplete, dec.Intent.Type)
	assert.Equal(t, action.CompletionHeuristic, dec.Intent.Completion)
}

func TestParse_NoHeuristicWithoutCompletionLanguage(t *testing.T) {
	t.Parallel()

	dec := newTestParser().Parse("Something went wrong, retrying.", testState())
	assert.Equal(t, action.DegradeNoJSON, dec.Degraded)
	assert.Equal(t, action.TypeWait, dec.Intent.Type)
}
