package editor

import (
	"fmt"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

// Rectangle tool defaults, in world units.
const (
	DefaultMinRectSize     = 10.0
	DefaultExpandTolerance = 20.0
)

// RectangleToolConfig tunes the rectangle drawing gesture.
type RectangleToolConfig struct {
	MinWidth  float64
	MinHeight float64
	// ExpandTolerance is the band below the minimum within which an
	// undersized rectangle is expanded to the minimum instead of rejected.
	ExpandTolerance float64
}

// DefaultRectangleToolConfig returns the standard tool tuning.
func DefaultRectangleToolConfig() RectangleToolConfig {
	return RectangleToolConfig{
		MinWidth:        DefaultMinRectSize,
		MinHeight:       DefaultMinRectSize,
		ExpandTolerance: DefaultExpandTolerance,
	}
}

// RectangleTool drives the rectangle drawing gesture: idle, dragging, then
// committed or aborted. It only produces shapes; persistence is the caller's
// concern.
type RectangleTool struct {
	cfg      RectangleToolConfig
	snap     func(geom.Point) geom.Point
	active   bool
	category domain.AreaCategory
	start    geom.Point
	current  geom.Point
}

// NewRectangleTool builds a rectangle tool. snap may be nil to disable
// snapping.
func NewRectangleTool(cfg RectangleToolConfig, snap func(geom.Point) geom.Point) *RectangleTool {
	if snap == nil {
		snap = func(p geom.Point) geom.Point { return p }
	}
	return &RectangleTool{cfg: cfg, snap: snap}
}

// Active reports whether a drag is in progress.
func (t *RectangleTool) Active() bool { return t.active }

// Begin starts a drag at the snapped world point.
func (t *RectangleTool) Begin(worldPt geom.Point, category domain.AreaCategory) {
	t.active = true
	t.category = category
	t.start = t.snap(worldPt)
	t.current = t.start
}

// Move updates the drag to the snapped world point. No-op when idle.
func (t *RectangleTool) Move(worldPt geom.Point) {
	if !t.active {
		return
	}
	t.current = t.snap(worldPt)
}

// Candidate returns the normalized rectangle between the start and current
// points and whether it meets the minimum size.
func (t *RectangleTool) Candidate() (geom.Rect, bool) {
	r := geom.RectFromCorners(t.start, t.current)
	valid := r.Width >= t.cfg.MinWidth && r.Height >= t.cfg.MinHeight
	return r, valid
}

// End finishes the drag. An undersized rectangle within the expand tolerance
// grows symmetrically to exactly the minimum; one outside the band yields a
// ValidationError and the gesture is discarded. Either way the tool returns
// to idle.
func (t *RectangleTool) End() (Shape, error) {
	if !t.active {
		return Shape{}, ValidationError{Messages: []string{"no rectangle gesture in progress"}}
	}
	r, valid := t.Candidate()
	category := t.category
	t.reset()
	if !valid {
		expanded, ok := t.autoExpand(r)
		if !ok {
			return Shape{}, ValidationError{Messages: []string{
				fmt.Sprintf("rectangle %gx%g below minimum %gx%g", r.Width, r.Height, t.cfg.MinWidth, t.cfg.MinHeight),
			}}
		}
		r = expanded
	}
	return Shape{
		Category: category,
		Geometry: domain.NewRectangle(r),
		Style:    DefaultStyle(category),
	}, nil
}

// autoExpand grows an undersized rectangle symmetrically about its center to
// exactly the minimum, when every undersized dimension is within the
// tolerance band.
func (t *RectangleTool) autoExpand(r geom.Rect) (geom.Rect, bool) {
	if r.Width < t.cfg.MinWidth-t.cfg.ExpandTolerance || r.Height < t.cfg.MinHeight-t.cfg.ExpandTolerance {
		return geom.Rect{}, false
	}
	out := r
	if out.Width < t.cfg.MinWidth {
		out.X -= (t.cfg.MinWidth - out.Width) / 2
		out.Width = t.cfg.MinWidth
	}
	if out.Height < t.cfg.MinHeight {
		out.Y -= (t.cfg.MinHeight - out.Height) / 2
		out.Height = t.cfg.MinHeight
	}
	return out, true
}

// Cancel discards the drag with no side effects.
func (t *RectangleTool) Cancel() { t.reset() }

func (t *RectangleTool) reset() {
	t.active = false
	t.start = geom.Point{}
	t.current = geom.Point{}
	t.category = ""
}

// DefaultStyle returns the category-appropriate default presentation.
func DefaultStyle(category domain.AreaCategory) domain.Style {
	switch category {
	case domain.CategoryCollision:
		return domain.Style{Fill: "#e74c3c", Stroke: "#c0392b", StrokeWidth: 2, Opacity: 0.35}
	default:
		return domain.Style{Fill: "#3498db", Stroke: "#2980b9", StrokeWidth: 2, Opacity: 0.5}
	}
}
