// File: internal/perception/screenshot.go
package perception

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// Screenshot is an opaque handle on one screen capture. The original PNG is
// kept untouched; PlannerPNG is an aspect-preserving downscaled copy used for
// model transmission only. Element coordinates always refer to the original
// device pixels, never the downscaled copy.
type Screenshot struct {
	PNG        []byte
	PlannerPNG []byte
	Size       Size
}

// DecodeScreenshot decodes a raw screencap PNG, records the device screen
// size, and produces the downscaled planner copy when the capture is wider
// than maxPlannerWidth.
func DecodeScreenshot(raw []byte, maxPlannerWidth int) (*Screenshot, error) {
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot PNG: %w", err)
	}

	b := img.Bounds()
	shot := &Screenshot{
		PNG:  raw,
		Size: Size{Width: b.Dx(), Height: b.Dy()},
	}

	if maxPlannerWidth <= 0 || b.Dx() <= maxPlannerWidth {
		shot.PlannerPNG = raw
		return shot, nil
	}

	scaled, err := downscale(img, maxPlannerWidth)
	if err != nil {
		return nil, err
	}
	shot.PlannerPNG = scaled
	return shot, nil
}

// downscale resizes the image to the target width, preserving aspect ratio.
func downscale(img image.Image, width int) ([]byte, error) {
	b := img.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode downscaled screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
