// File: internal/perception/element.go
package perception

import "strings"

// Point is an absolute device-pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is the device screen size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is an axis-aligned rectangle in absolute device pixels, X1<=X2 and
// Y1<=Y2. The zero value stands in for any bounds that could not be parsed.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// IsZero reports whether the rect is the all-zero placeholder.
func (r Rect) IsZero() bool {
	return r.X1 == 0 && r.Y1 == 0 && r.X2 == 0 && r.Y2 == 0
}

// Center returns the integer floor-division midpoint of the rect.
func (r Rect) Center() Point {
	return Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Element is one normalized UI node from the hierarchy dump.
//
// Path is a hierarchical address unique within a single snapshot. It is not
// stable across snapshots and exists for logging and debugging only.
type Element struct {
	Path        string `json:"path"`
	ClassName   string `json:"class"`
	Text        string `json:"text"`
	ContentDesc string `json:"content_desc"`
	ResourceID  string `json:"resource_id"`
	Clickable   bool   `json:"clickable"`
	Scrollable  bool   `json:"scrollable"`
	Enabled     bool   `json:"enabled"`
	Bounds      Rect   `json:"bounds"`
	Center      Point  `json:"center"`
	Depth       int    `json:"depth"`
}

// Label returns the most descriptive short name available for the element:
// its text, then its content description, then the bare class name.
func (e Element) Label() string {
	if e.Text != "" {
		return e.Text
	}
	if e.ContentDesc != "" {
		return e.ContentDesc
	}
	return e.ShortClass()
}

// ShortClass returns the class name without its package prefix, e.g.
// "android.widget.Button" becomes "Button".
func (e Element) ShortClass() string {
	if idx := strings.LastIndex(e.ClassName, "."); idx >= 0 {
		return e.ClassName[idx+1:]
	}
	return e.ClassName
}
