// File: internal/perception/state.go
package perception

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/config"
)

// ScreenState is one immutable capture of the device screen: the ordered
// element sequence, the screen size, and the screenshot handle. It is created
// once per loop iteration, owned by that iteration, and discarded afterwards.
type ScreenState struct {
	Elements   []Element
	ScreenSize Size
	Screenshot *Screenshot
	Timestamp  time.Time
}

// Element returns the element at index i and whether the index is in range.
func (s *ScreenState) Element(i int) (Element, bool) {
	if i < 0 || i >= len(s.Elements) {
		return Element{}, false
	}
	return s.Elements[i], true
}

// DeviceSource supplies the raw capture primitives. It is implemented by the
// device transport adapter.
type DeviceSource interface {
	// Screencap returns the current screen as a PNG.
	Screencap(ctx context.Context) ([]byte, error)
	// HierarchyDump returns the raw uiautomator XML for the current screen.
	HierarchyDump(ctx context.Context) ([]byte, error)
}

// Builder composes screenshot, hierarchy, and screen size into a ScreenState.
//
// Capture has a strict dependency on both the screenshot and the hierarchy
// dump: there is no degraded partial state, because planning without either
// is not meaningful.
type Builder struct {
	src    DeviceSource
	parser *HierarchyParser
	cfg    config.PerceptionConfig
	logger *zap.Logger
}

// NewBuilder creates a screen state builder over the given device source.
func NewBuilder(src DeviceSource, cfg config.PerceptionConfig, logger *zap.Logger) *Builder {
	l := logger.Named("perception")
	return &Builder{
		src:    src,
		parser: NewHierarchyParser(l, cfg.MaxDepth),
		cfg:    cfg,
		logger: l,
	}
}

// Capture takes a full snapshot of the current screen.
func (b *Builder) Capture(ctx context.Context) (*ScreenState, error) {
	start := time.Now()

	rawPNG, err := b.src.Screencap(ctx)
	if err != nil {
		return nil, fmt.Errorf("screencap failed: %w", err)
	}

	shot, err := DecodeScreenshot(rawPNG, b.cfg.MaxPlannerWidth)
	if err != nil {
		return nil, fmt.Errorf("screenshot decode failed: %w", err)
	}

	rawDump, err := b.src.HierarchyDump(ctx)
	if err != nil {
		return nil, fmt.Errorf("hierarchy dump failed: %w", err)
	}

	elements, err := b.parser.Parse(rawDump)
	if err != nil {
		return nil, fmt.Errorf("hierarchy parse failed: %w", err)
	}

	state := &ScreenState{
		Elements:   elements,
		ScreenSize: shot.Size,
		Screenshot: shot,
		Timestamp:  time.Now(),
	}

	b.persistScreenshot(shot)

	b.logger.Debug("Screen state captured",
		zap.Int("elements", len(elements)),
		zap.Int("width", shot.Size.Width),
		zap.Int("height", shot.Size.Height),
		zap.Duration("duration", time.Since(start)),
	)
	return state, nil
}

// persistScreenshot writes the original capture to the screenshot directory.
// Persistence is best-effort; a write failure must not fail the capture.
func (b *Builder) persistScreenshot(shot *Screenshot) {
	if b.cfg.ScreenshotDir == "" {
		return
	}
	if err := os.MkdirAll(b.cfg.ScreenshotDir, 0o755); err != nil {
		b.logger.Warn("Failed to create screenshot directory", zap.Error(err))
		return
	}
	name := fmt.Sprintf("screenshot_%d.png", time.Now().UnixNano())
	path := filepath.Join(b.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, shot.PNG, 0o644); err != nil {
		b.logger.Warn("Failed to persist screenshot", zap.String("path", path), zap.Error(err))
		return
	}
	b.logger.Debug("Screenshot saved", zap.String("path", path))
}
