// File: internal/action/validator.go
package action

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/perception"
)

// Canonical parameter defaults, applied uniformly wherever a duration is
// absent from the planner's response.
const (
	DefaultSwipeDuration     = 300 * time.Millisecond
	DefaultLongPressDuration = 1000 * time.Millisecond
	DefaultWaitDuration      = 1 * time.Second

	// scrollFraction is how much of the screen height a screen-relative
	// scroll travels.
	scrollFraction = 3
)

// Command is an intent resolved to absolute, clamped device coordinates and
// concrete parameters. It is the only type handed to the executor.
type Command struct {
	Type Type `json:"type"`

	// Touch start point (tap, long press, swipe).
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`

	// Swipe end point.
	X2 int `json:"x2,omitempty"`
	Y2 int `json:"y2,omitempty"`

	// Touch duration in milliseconds for swipes and long presses.
	DurationMS int `json:"duration_ms,omitempty"`

	// Text input payload. Empty is a valid no-op: the executor sends nothing
	// to the device and reports success. It never clears the target field.
	Text string `json:"text,omitempty"`

	// Hardware key, resolved to its numeric code.
	Key     string `json:"key,omitempty"`
	KeyCode int    `json:"key_code,omitempty"`

	// Wait pause, handled in-process.
	WaitDuration time.Duration `json:"wait_duration,omitempty"`
}

// String renders a compact human-readable form for logs and reports.
func (c *Command) String() string {
	switch c.Type {
	case TypeTap:
		return fmt.Sprintf("tap(%d, %d)", c.X, c.Y)
	case TypeLongPress:
		return fmt.Sprintf("long_press(%d, %d, %dms)", c.X, c.Y, c.DurationMS)
	case TypeSwipe:
		return fmt.Sprintf("swipe(%d, %d -> %d, %d, %dms)", c.X, c.Y, c.X2, c.Y2, c.DurationMS)
	case TypeTextInput:
		return fmt.Sprintf("input_text(%q)", c.Text)
	case TypeKeyEvent:
		return fmt.Sprintf("key_event(%s)", c.Key)
	case TypeWait:
		return fmt.Sprintf("wait(%s)", c.WaitDuration)
	default:
		return string(c.Type)
	}
}

// ValidationError reports an intent that cannot be turned into an executable
// command. It is recoverable: the control loop treats it per the configured
// stop/continue policy.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action: %s: %s", e.Field, e.Reason)
}

// Validator turns intents into fully bounded execution commands.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger.Named("validator")}
}

// Validate applies per-variant field checks, canonical defaults, and
// coordinate clamping into [0,width) x [0,height).
func (v *Validator) Validate(intent Intent, size perception.Size) (*Command, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, &ValidationError{Field: "screen_size", Reason: "unknown screen size"}
	}

	switch intent.Type {
	case TypeTap:
		x, y := v.clamp(intent.X, intent.Y, size)
		return &Command{Type: TypeTap, X: x, Y: y}, nil

	case TypeLongPress:
		x, y := v.clamp(intent.X, intent.Y, size)
		return &Command{
			Type:       TypeLongPress,
			X:          x,
			Y:          y,
			DurationMS: defaultMS(intent.Duration, DefaultLongPressDuration),
		}, nil

	case TypeSwipe:
		x1, y1 := v.clamp(intent.X, intent.Y, size)
		x2, y2 := v.clamp(intent.X2, intent.Y2, size)
		return &Command{
			Type:       TypeSwipe,
			X:          x1,
			Y:          y1,
			X2:         x2,
			Y2:         y2,
			DurationMS: defaultMS(intent.Duration, DefaultSwipeDuration),
		}, nil

	case TypeScrollUp, TypeScrollDown:
		return v.resolveScroll(intent.Type, size), nil

	case TypeTextInput:
		if intent.Text == nil {
			return nil, &ValidationError{Field: "text", Reason: "text field is required"}
		}
		return &Command{Type: TypeTextInput, Text: *intent.Text}, nil

	case TypeKeyEvent:
		code, ok := KeyCode(intent.Key)
		if !ok {
			return nil, &ValidationError{
				Field:  "key",
				Reason: fmt.Sprintf("unknown key %q, supported: %v", intent.Key, KeyNames()),
			}
		}
		return &Command{Type: TypeKeyEvent, Key: intent.Key, KeyCode: code}, nil

	case TypeWait:
		wait := intent.WaitDuration
		if wait <= 0 {
			wait = DefaultWaitDuration
		}
		return &Command{Type: TypeWait, WaitDuration: wait}, nil

	case TypeTaskComplete:
		// Terminal intents never reach the executor; the loop handles them
		// at the parsing stage. Rejecting here keeps the switch exhaustive.
		return nil, &ValidationError{Field: "type", Reason: "task_complete is not executable"}

	default:
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown intent type %q", intent.Type)}
	}
}

// resolveScroll converts a screen-relative scroll into a vertical swipe
// through the horizontal center of the screen.
func (v *Validator) resolveScroll(t Type, size perception.Size) *Command {
	cx := size.Width / 2
	cy := size.Height / 2
	travel := size.Height / scrollFraction

	cmd := &Command{Type: TypeSwipe, X: cx, X2: cx, DurationMS: defaultMS(0, DefaultSwipeDuration)}
	if t == TypeScrollDown {
		// Scrolling down means dragging content upward.
		cmd.Y = cy + travel/2
		cmd.Y2 = cy - travel/2
	} else {
		cmd.Y = cy - travel/2
		cmd.Y2 = cy + travel/2
	}
	x1, y1 := v.clamp(cmd.X, cmd.Y, size)
	x2, y2 := v.clamp(cmd.X2, cmd.Y2, size)
	cmd.X, cmd.Y, cmd.X2, cmd.Y2 = x1, y1, x2, y2
	return cmd
}

// clamp forces a coordinate into [0,width) x [0,height), logging when the
// planner asked for something off-screen.
func (v *Validator) clamp(x, y int, size perception.Size) (int, int) {
	cx := clampInt(x, 0, size.Width-1)
	cy := clampInt(y, 0, size.Height-1)
	if cx != x || cy != y {
		v.logger.Warn("Clamped out-of-bounds coordinates",
			zap.Int("x", x), zap.Int("y", y),
			zap.Int("clamped_x", cx), zap.Int("clamped_y", cy),
			zap.Int("width", size.Width), zap.Int("height", size.Height),
		)
	}
	return cx, cy
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func defaultMS(d, fallback time.Duration) int {
	if d <= 0 {
		d = fallback
	}
	return int(d / time.Millisecond)
}
