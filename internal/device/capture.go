// File: internal/device/capture.go
package device

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/config"
)

// dumpPath is where uiautomator writes the hierarchy on the device before we
// read it back.
const dumpPath = "/sdcard/window_dump.xml"

// Source adapts the transport into the perception.DeviceSource contract,
// applying the per-call capture timeout so a stuck device turns into an
// ordinary capture failure instead of a hung step.
type Source struct {
	transport      Transport
	captureTimeout time.Duration
	logger         *zap.Logger
}

// NewSource creates a capture source over the transport.
func NewSource(transport Transport, cfg config.DeviceConfig, logger *zap.Logger) *Source {
	return &Source{
		transport:      transport,
		captureTimeout: cfg.CaptureTimeout,
		logger:         logger.Named("capture"),
	}
}

// Screencap returns the current screen as a PNG.
func (s *Source) Screencap(ctx context.Context) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	png, err := s.transport.Screencap(ctx)
	if err != nil {
		return nil, err
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("screencap returned no data")
	}
	return png, nil
}

// HierarchyDump asks uiautomator for the current window hierarchy and reads
// it back.
func (s *Source) HierarchyDump(ctx context.Context) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.transport.ShellExec(ctx, "uiautomator", "dump", dumpPath); err != nil {
		return nil, fmt.Errorf("uiautomator dump failed: %w", err)
	}
	raw, err := s.transport.ShellExec(ctx, "cat", dumpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy dump: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("hierarchy dump is empty")
	}
	s.logger.Debug("Hierarchy dump read", zap.Int("bytes", len(raw)))
	return raw, nil
}

func (s *Source) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.captureTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.captureTimeout)
}
