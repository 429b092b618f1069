// File: internal/device/executor_test.go
package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/action"
)

// fakeTransport records shell invocations without touching a device.
type fakeTransport struct {
	shellCalls [][]string
	shellOut   []byte
	shellErr   error
	screenPNG  []byte
	screenErr  error
}

func (f *fakeTransport) Connect(ctx context.Context) error { return nil }

func (f *fakeTransport) ShellExec(ctx context.Context, args ...string) ([]byte, error) {
	f.shellCalls = append(f.shellCalls, args)
	return f.shellOut, f.shellErr
}

func (f *fakeTransport) Screencap(ctx context.Context) ([]byte, error) {
	return f.screenPNG, f.screenErr
}

func TestExecute_CommandArgv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  *action.Command
		want []string
	}{
		{
			"tap",
			&action.Command{Type: action.TypeTap, X: 100, Y: 200},
			[]string{"input", "tap", "100", "200"},
		},
		{
			"long press is a held zero-distance swipe",
			&action.Command{Type: action.TypeLongPress, X: 50, Y: 60, DurationMS: 1000},
			[]string{"input", "swipe", "50", "60", "50", "60", "1000"},
		},
		{
			"swipe",
			&action.Command{Type: action.TypeSwipe, X: 540, Y: 1600, X2: 540, Y2: 800, DurationMS: 300},
			[]string{"input", "swipe", "540", "1600", "540", "800", "300"},
		},
		{
			"text input escapes spaces",
			&action.Command{Type: action.TypeTextInput, Text: "hello world again"},
			[]string{"input", "text", "hello%sworld%sagain"},
		},
		{
			"key event sends the numeric code",
			&action.Command{Type: action.TypeKeyEvent, Key: "HOME", KeyCode: 3},
			[]string{"input", "keyevent", "3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			transport := &fakeTransport{}
			executor := NewExecutor(transport, zap.NewNop())

			require.NoError(t, executor.Execute(context.Background(), tc.cmd))
			require.Len(t, transport.shellCalls, 1)
			assert.Equal(t, tc.want, transport.shellCalls[0])
		})
	}
}

func TestExecute_EmptyTextIsNoOp(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	executor := NewExecutor(transport, zap.NewNop())

	err := executor.Execute(context.Background(), &action.Command{Type: action.TypeTextInput, Text: ""})
	require.NoError(t, err)
	assert.Empty(t, transport.shellCalls, "an empty text input must not touch the device")
}

func TestExecute_WaitStaysInProcess(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	executor := NewExecutor(transport, zap.NewNop())

	start := time.Now()
	err := executor.Execute(context.Background(), &action.Command{Type: action.TypeWait, WaitDuration: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Empty(t, transport.shellCalls)
}

func TestExecute_WaitHonorsCancellation(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	executor := NewExecutor(transport, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executor.Execute(ctx, &action.Command{Type: action.TypeWait, WaitDuration: time.Minute})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_DeviceErrorPropagates(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{shellErr: errors.New("device offline")}
	executor := NewExecutor(transport, zap.NewNop())

	err := executor.Execute(context.Background(), &action.Command{Type: action.TypeTap, X: 1, Y: 1})
	assert.ErrorContains(t, err, "device command failed")
}

func TestExecute_UnsupportedType(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(&fakeTransport{}, zap.NewNop())
	err := executor.Execute(context.Background(), &action.Command{Type: action.TypeTaskComplete})
	assert.Error(t, err)
}
