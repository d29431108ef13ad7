package editor

import (
	"fmt"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

// Polygon tool defaults.
const (
	DefaultMinVertices  = 3
	DefaultOriginRadius = 10.0 // screen pixels
)

// PolygonToolConfig tunes the polygon drawing gesture.
type PolygonToolConfig struct {
	MinVertices int
	// OriginRadius is the screen-pixel radius around the first vertex that
	// counts as hovering the origin (the close affordance).
	OriginRadius float64
}

// DefaultPolygonToolConfig returns the standard tool tuning.
func DefaultPolygonToolConfig() PolygonToolConfig {
	return PolygonToolConfig{MinVertices: DefaultMinVertices, OriginRadius: DefaultOriginRadius}
}

// PolygonTool drives the polygon drawing gesture: idle, drawing, then closed
// or cancelled. Clicks append snapped vertices; completion requires the
// minimum vertex count.
type PolygonTool struct {
	cfg           PolygonToolConfig
	snap          func(geom.Point) geom.Point
	active        bool
	category      domain.AreaCategory
	vertices      []geom.Point
	originHovered bool
}

// NewPolygonTool builds a polygon tool. snap may be nil to disable snapping.
func NewPolygonTool(cfg PolygonToolConfig, snap func(geom.Point) geom.Point) *PolygonTool {
	if cfg.MinVertices <= 0 {
		cfg.MinVertices = DefaultMinVertices
	}
	if snap == nil {
		snap = func(p geom.Point) geom.Point { return p }
	}
	return &PolygonTool{cfg: cfg, snap: snap}
}

// Active reports whether a gesture is in progress.
func (t *PolygonTool) Active() bool { return t.active }

// Vertices returns the committed vertices so far.
func (t *PolygonTool) Vertices() []geom.Point {
	return append([]geom.Point(nil), t.vertices...)
}

// OriginHovered reports whether the pointer is within the close affordance
// radius of the first vertex.
func (t *PolygonTool) OriginHovered() bool { return t.originHovered }

// Click appends a snapped vertex, starting the gesture on the first click.
// A click while hovering the origin closes the polygon instead, when enough
// vertices exist.
func (t *PolygonTool) Click(worldPt geom.Point, category domain.AreaCategory) (Shape, bool, error) {
	if !t.active {
		t.active = true
		t.category = category
		t.vertices = nil
		t.originHovered = false
	}
	if t.originHovered && len(t.vertices) >= t.cfg.MinVertices {
		shape, err := t.Complete()
		return shape, err == nil, err
	}
	t.vertices = append(t.vertices, t.snap(worldPt))
	return Shape{}, false, nil
}

// Hover updates the origin-hovered flag from the pointer's world position
// and the current zoom (the radius is defined in screen pixels).
func (t *PolygonTool) Hover(worldPt geom.Point, zoom float64) {
	if !t.active || len(t.vertices) == 0 {
		t.originHovered = false
		return
	}
	if zoom <= 0 {
		zoom = 1
	}
	screenDist := t.vertices[0].Distance(worldPt) * zoom
	t.originHovered = screenDist <= t.cfg.OriginRadius
}

// RemoveLastVertex pops the most recent vertex. No-op when empty.
func (t *PolygonTool) RemoveLastVertex() {
	if len(t.vertices) == 0 {
		return
	}
	t.vertices = t.vertices[:len(t.vertices)-1]
}

// Complete closes the polygon. With fewer than MinVertices vertices it
// returns a ValidationError and the gesture stays open for more clicks.
func (t *PolygonTool) Complete() (Shape, error) {
	if !t.active {
		return Shape{}, ValidationError{Messages: []string{"no polygon gesture in progress"}}
	}
	if len(t.vertices) < t.cfg.MinVertices {
		return Shape{}, ValidationError{Messages: []string{
			fmt.Sprintf("polygon requires at least %d vertices, have %d", t.cfg.MinVertices, len(t.vertices)),
		}}
	}
	category := t.category
	shape := Shape{
		Category: category,
		Geometry: domain.NewPolygon(t.vertices),
		Style:    DefaultStyle(category),
	}
	t.Cancel()
	return shape, nil
}

// DoubleClick closes the polygon, same rules as Complete.
func (t *PolygonTool) DoubleClick() (Shape, error) { return t.Complete() }

// Cancel clears all transient state without emitting a shape.
func (t *PolygonTool) Cancel() {
	t.active = false
	t.category = ""
	t.vertices = nil
	t.originHovered = false
}
