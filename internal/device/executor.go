// File: internal/device/executor.go
package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/action"
)

// Executor performs validated commands on the device through the transport.
// It implements the agent.Executor contract over the primitive set
// {tap, swipe, input_text, key_event, wait}.
type Executor struct {
	transport Transport
	logger    *zap.Logger
}

// NewExecutor creates a command executor over the transport.
func NewExecutor(transport Transport, logger *zap.Logger) *Executor {
	return &Executor{
		transport: transport,
		logger:    logger.Named("executor"),
	}
}

// Execute runs one command. It never retries; a failure is reported to the
// control loop, which records it and moves on.
func (e *Executor) Execute(ctx context.Context, cmd *action.Command) error {
	e.logger.Debug("Executing command", zap.String("command", cmd.String()))

	switch cmd.Type {
	case action.TypeTap:
		return e.shell(ctx, "input", "tap", itoa(cmd.X), itoa(cmd.Y))

	case action.TypeLongPress:
		// A long press is a zero-distance swipe held for the duration.
		return e.shell(ctx, "input", "swipe",
			itoa(cmd.X), itoa(cmd.Y), itoa(cmd.X), itoa(cmd.Y), itoa(cmd.DurationMS))

	case action.TypeSwipe:
		return e.shell(ctx, "input", "swipe",
			itoa(cmd.X), itoa(cmd.Y), itoa(cmd.X2), itoa(cmd.Y2), itoa(cmd.DurationMS))

	case action.TypeTextInput:
		// An empty string is a deliberate no-op: nothing is sent and the
		// field is left untouched.
		if cmd.Text == "" {
			return nil
		}
		return e.shell(ctx, "input", "text", escapeText(cmd.Text))

	case action.TypeKeyEvent:
		return e.shell(ctx, "input", "keyevent", itoa(cmd.KeyCode))

	case action.TypeWait:
		return e.wait(ctx, cmd.WaitDuration)

	default:
		return fmt.Errorf("unsupported command type %q", cmd.Type)
	}
}

func (e *Executor) shell(ctx context.Context, args ...string) error {
	if _, err := e.transport.ShellExec(ctx, args...); err != nil {
		return fmt.Errorf("device command failed: %w", err)
	}
	return nil
}

// wait pauses in-process; nothing is sent to the device.
func (e *Executor) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// escapeText prepares text for `input text`, which treats an unescaped space
// as an argument separator.
func escapeText(s string) string {
	return strings.ReplaceAll(s, " ", "%s")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
