// File: internal/action/parser.go
package action

import (
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// plannerAction mirrors the JSON object the planner is prompted to emit.
// Pointer fields distinguish "absent" from zero values, which matters for
// coordinates and for the empty-string text input.
type plannerAction struct {
	ActionType string `json:"action_type"`
	// Some models answer with "type" despite the prompt; accept both.
	AltType      string   `json:"type"`
	ElementID    *int     `json:"element_id"`
	X            *int     `json:"x"`
	Y            *int     `json:"y"`
	X1           *int     `json:"x1"`
	Y1           *int     `json:"y1"`
	X2           *int     `json:"x2"`
	Y2           *int     `json:"y2"`
	DurationMS   *int     `json:"duration_ms"`
	Duration     *float64 `json:"duration"` // seconds, for wait
	Text         *string  `json:"text"`
	Key          string   `json:"key"`
	Reasoning    string   `json:"reasoning"`
	TaskComplete bool     `json:"task_complete"`
}

// ResponseParser extracts a structured action intent from raw planner text.
//
// It never fails outward: malformed JSON, unknown action kinds, and invalid
// element references all degrade to a Wait fallback carrying a diagnostic
// tag. The tag is for observability, not control flow.
type ResponseParser struct {
	logger *zap.Logger
}

// NewResponseParser creates a parser.
func NewResponseParser(logger *zap.Logger) *ResponseParser {
	return &ResponseParser{logger: logger.Named("response_parser")}
}

// Parse resolves the planner's raw text against the current screen state.
func (p *ResponseParser) Parse(raw string, state *perception.ScreenState) Decision {
	candidate, ok := extractActionObject(raw)
	if !ok {
		if completionLanguage(raw) {
			p.logger.Info("No action object; completion inferred from text")
			return completeDecision(CompletionHeuristic, strings.TrimSpace(raw))
		}
		p.logger.Warn("No JSON object found in planner response")
		return p.degrade(DegradeNoJSON, raw)
	}

	var pa plannerAction
	if err := json.Unmarshal([]byte(candidate), &pa); err != nil {
		// The model frequently emits almost-JSON (trailing commas, single
		// quotes). Try one repair pass before giving up.
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &pa) != nil {
			if completionLanguage(raw) {
				p.logger.Info("Unparseable action object; completion inferred from text")
				return completeDecision(CompletionHeuristic, strings.TrimSpace(raw))
			}
			p.logger.Warn("Unparseable action object in planner response", zap.Error(err))
			return p.degrade(DegradeBadJSON, candidate)
		}
		p.logger.Debug("Planner JSON recovered via repair")
	}

	return p.resolve(pa, state)
}

// resolve maps a decoded planner action onto a validated intent variant.
func (p *ResponseParser) resolve(pa plannerAction, state *perception.ScreenState) Decision {
	kind := pa.ActionType
	if kind == "" {
		kind = pa.AltType
	}
	kind = strings.ToLower(strings.TrimSpace(kind))

	if pa.TaskComplete || kind == "task_complete" {
		return completeDecision(CompletionExplicit, pa.Reasoning)
	}

	switch kind {
	case "tap", "long_press":
		return p.resolveTouch(pa, kind, state)

	case "swipe":
		if pa.X1 == nil || pa.Y1 == nil || pa.X2 == nil || pa.Y2 == nil {
			p.logger.Warn("Swipe action missing coordinates")
			return p.degradeWithReasoning(DegradeMissingFields, pa.Reasoning)
		}
		return Decision{
			Intent: Intent{
				Type:     TypeSwipe,
				X:        *pa.X1,
				Y:        *pa.Y1,
				X2:       *pa.X2,
				Y2:       *pa.Y2,
				Duration: durationMS(pa.DurationMS),
			},
			Reasoning: pa.Reasoning,
		}

	case "scroll_up":
		return Decision{Intent: Intent{Type: TypeScrollUp}, Reasoning: pa.Reasoning}

	case "scroll_down":
		return Decision{Intent: Intent{Type: TypeScrollDown}, Reasoning: pa.Reasoning}

	case "text_input", "input_text":
		if pa.Text == nil {
			p.logger.Warn("Text input action missing text field")
			return p.degradeWithReasoning(DegradeMissingFields, pa.Reasoning)
		}
		return Decision{
			Intent:    Intent{Type: TypeTextInput, Text: pa.Text},
			Reasoning: pa.Reasoning,
		}

	case "key_event", "press_key":
		if strings.TrimSpace(pa.Key) == "" {
			p.logger.Warn("Key event action missing key field")
			return p.degradeWithReasoning(DegradeMissingFields, pa.Reasoning)
		}
		return Decision{
			Intent:    Intent{Type: TypeKeyEvent, Key: pa.Key},
			Reasoning: pa.Reasoning,
		}

	case "wait":
		wait := DefaultWaitDuration
		if pa.Duration != nil && *pa.Duration > 0 {
			wait = time.Duration(*pa.Duration * float64(time.Second))
		}
		return Decision{
			Intent:    Intent{Type: TypeWait, WaitDuration: wait},
			Reasoning: pa.Reasoning,
		}

	default:
		p.logger.Warn("Unknown action kind in planner response", zap.String("kind", kind))
		return p.degradeWithReasoning(DegradeUnknownAction, pa.Reasoning)
	}
}

// resolveTouch handles tap and long_press, which share the element-reference
// resolution rules: a valid element index resolves to that element's center;
// an invalid index falls back to explicit coordinates when present, and to
// the Wait fallback otherwise.
func (p *ResponseParser) resolveTouch(pa plannerAction, kind string, state *perception.ScreenState) Decision {
	t := TypeTap
	if kind == "long_press" {
		t = TypeLongPress
	}

	if pa.ElementID != nil {
		if elem, ok := state.Element(*pa.ElementID); ok {
			return Decision{
				Intent: Intent{
					Type:     t,
					X:        elem.Center.X,
					Y:        elem.Center.Y,
					Duration: durationMS(pa.DurationMS),
				},
				Reasoning: pa.Reasoning,
			}
		}
		p.logger.Warn("Element reference out of range",
			zap.Int("element_id", *pa.ElementID),
			zap.Int("elements", len(state.Elements)),
		)
		if pa.X == nil || pa.Y == nil {
			return p.degradeWithReasoning(DegradeBadElementRef, pa.Reasoning)
		}
	}

	if pa.X == nil || pa.Y == nil {
		p.logger.Warn("Touch action has neither element reference nor coordinates")
		return p.degradeWithReasoning(DegradeMissingFields, pa.Reasoning)
	}
	return Decision{
		Intent: Intent{
			Type:     t,
			X:        *pa.X,
			Y:        *pa.Y,
			Duration: durationMS(pa.DurationMS),
		},
		Reasoning: pa.Reasoning,
	}
}

func (p *ResponseParser) degrade(reason DegradeReason, snippet string) Decision {
	return Decision{
		Intent:    Intent{Type: TypeWait, WaitDuration: DefaultWaitDuration},
		Reasoning: truncate(strings.TrimSpace(snippet), 200),
		Degraded:  reason,
	}
}

func (p *ResponseParser) degradeWithReasoning(reason DegradeReason, reasoning string) Decision {
	return Decision{
		Intent:    Intent{Type: TypeWait, WaitDuration: DefaultWaitDuration},
		Reasoning: reasoning,
		Degraded:  reason,
	}
}

func completeDecision(src CompletionSource, reasoning string) Decision {
	return Decision{
		Intent:    Intent{Type: TypeTaskComplete, Completion: src},
		Reasoning: truncate(reasoning, 500),
	}
}

func durationMS(ms *int) time.Duration {
	if ms == nil || *ms <= 0 {
		return 0
	}
	return time.Duration(*ms) * time.Millisecond
}

// extractActionObject isolates the first syntactically balanced top-level
// JSON object from surrounding prose. A naive single-level regex is not
// enough: the planner's text may legitimately contain nested braces inside
// string fields, so the scanner is brace-balanced and string/escape aware.
func extractActionObject(raw string) (string, bool) {
	s := stripMarkdownFence(strings.TrimSpace(raw))

	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			// Quotes in surrounding prose (depth 0) are not JSON strings.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// stripMarkdownFence unwraps ```json ... ``` style blocks the model likes to
// emit despite instructions.
func stripMarkdownFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// completionLanguage reports whether free text reads like a completion claim.
func completionLanguage(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "complete") || strings.Contains(lower, "done")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
