// File: internal/device/transport.go
package device

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/config"
)

// Transport is the single capability interface over the device session:
// connect, run a shell command, grab the screen. The perception and execution
// collaborators own this handle exclusively; nothing else touches it.
type Transport interface {
	Connect(ctx context.Context) error
	ShellExec(ctx context.Context, args ...string) ([]byte, error)
	Screencap(ctx context.Context) ([]byte, error)
}

// runFunc executes a host command and returns its stdout. Injectable so tests
// never need a real adb binary.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// ADB implements Transport by shelling out to the adb binary.
type ADB struct {
	path           string
	serial         string
	commandTimeout time.Duration
	logger         *zap.Logger
	run            runFunc
}

var _ Transport = (*ADB)(nil)

// NewADB creates a transport for the configured device.
func NewADB(cfg config.DeviceConfig, logger *zap.Logger) *ADB {
	return &ADB{
		path:           cfg.ADBPath,
		serial:         cfg.Serial,
		commandTimeout: cfg.CommandTimeout,
		logger:         logger.Named("adb"),
		run:            execRun,
	}
}

// Connect verifies the adb binary is reachable and a device is attached. When
// a serial is configured, that specific device must be present and online.
func (a *ADB) Connect(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	out, err := a.run(ctx, a.path, "devices")
	if err != nil {
		return fmt.Errorf("adb not available: %w", err)
	}

	found := false
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[1] != "device" {
			continue
		}
		if a.serial == "" || fields[0] == a.serial {
			found = true
			break
		}
	}
	if !found {
		if a.serial != "" {
			return fmt.Errorf("device %q not connected", a.serial)
		}
		return fmt.Errorf("no Android device connected")
	}

	a.logger.Info("ADB connection verified", zap.String("serial", a.serial))
	return nil
}

// ShellExec runs a command on the device shell and returns its output.
func (a *ADB) ShellExec(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	argv := append(a.baseArgs(), "shell")
	argv = append(argv, args...)
	a.logger.Debug("adb shell", zap.Strings("args", args))
	return a.run(ctx, a.path, argv...)
}

// Screencap captures the screen as a PNG. exec-out is used instead of shell
// so the binary stream arrives without line-ending mangling.
func (a *ADB) Screencap(ctx context.Context) ([]byte, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	argv := append(a.baseArgs(), "exec-out", "screencap", "-p")
	return a.run(ctx, a.path, argv...)
}

func (a *ADB) baseArgs() []string {
	if a.serial != "" {
		return []string{"-s", a.serial}
	}
	return nil
}

func (a *ADB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.commandTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.commandTimeout)
}
