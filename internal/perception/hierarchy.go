// File: internal/perception/hierarchy.go
package perception

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// boundsRegex matches the exact uiautomator bounds grammar "[x1,y1][x2,y2]":
// integers, no whitespace. Anything else is malformed.
var boundsRegex = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// HierarchyParser turns a raw uiautomator XML dump into an ordered sequence
// of element descriptors (depth-first, pre-order).
type HierarchyParser struct {
	logger *zap.Logger
	// maxDepth truncates pathological trees. Nodes beyond it are dropped with
	// a diagnostic; truncation is never an error.
	maxDepth int
}

// NewHierarchyParser creates a parser with the given depth cap.
func NewHierarchyParser(logger *zap.Logger, maxDepth int) *HierarchyParser {
	return &HierarchyParser{
		logger:   logger.Named("hierarchy"),
		maxDepth: maxDepth,
	}
}

// frame is one pending node on the explicit traversal stack.
type frame struct {
	el    *etree.Element
	path  string
	depth int
}

// Parse extracts elements from the raw XML dump. It fails only when the
// document itself is unreadable; individual malformed nodes degrade (zero
// bounds) and never abort traversal of their siblings or children.
//
// An element is emitted iff it is clickable, scrollable, or carries text or a
// content description. Children are visited regardless of whether their
// parent was emitted.
func (p *HierarchyParser) Parse(raw []byte) ([]Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("hierarchy XML has no root element")
	}

	elements := make([]Element, 0, 64)
	truncated := 0

	// Explicit stack instead of recursion so arbitrarily deep dumps cannot
	// exhaust the goroutine stack. Children are pushed in reverse to keep
	// document (pre-)order.
	stack := make([]frame, 0, 32)
	for i := len(root.ChildElements()) - 1; i >= 0; i-- {
		child := root.ChildElements()[i]
		stack = append(stack, frame{
			el:    child,
			path:  fmt.Sprintf("/%s[%d]", child.Tag, i),
			depth: 1,
		})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > p.maxDepth {
			truncated++
			continue
		}

		bounds := parseBounds(f.el.SelectAttrValue("bounds", ""))
		elem := Element{
			Path:        f.path,
			ClassName:   f.el.SelectAttrValue("class", ""),
			Text:        f.el.SelectAttrValue("text", ""),
			ContentDesc: f.el.SelectAttrValue("content-desc", ""),
			ResourceID:  f.el.SelectAttrValue("resource-id", ""),
			Clickable:   f.el.SelectAttrValue("clickable", "false") == "true",
			Scrollable:  f.el.SelectAttrValue("scrollable", "false") == "true",
			Enabled:     f.el.SelectAttrValue("enabled", "true") == "true",
			Bounds:      bounds,
			Center:      bounds.Center(),
			Depth:       f.depth,
		}

		if elem.Clickable || elem.Scrollable || elem.Text != "" || elem.ContentDesc != "" {
			elements = append(elements, elem)
		}

		children := f.el.ChildElements()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				el:    children[i],
				path:  fmt.Sprintf("%s/%s[%d]", f.path, children[i].Tag, i),
				depth: f.depth + 1,
			})
		}
	}

	if truncated > 0 {
		p.logger.Warn("Hierarchy truncated at depth cap",
			zap.Int("max_depth", p.maxDepth),
			zap.Int("dropped_nodes", truncated),
		)
	}

	return elements, nil
}

// parseBounds parses the bounds attribute. Any deviation from the exact
// grammar, including inverted rects, yields the zero rect rather than an
// error so one bad node cannot poison the capture.
func parseBounds(s string) Rect {
	m := boundsRegex.FindStringSubmatch(s)
	if m == nil {
		return Rect{}
	}
	// The regex guarantees integers; Atoi can only fail on overflow, which we
	// also treat as malformed.
	coords := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Rect{}
		}
		coords[i] = n
	}
	r := Rect{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
	if r.X2 < r.X1 || r.Y2 < r.Y1 {
		return Rect{}
	}
	return r
}
