package editor

import (
	"errors"
	"testing"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

func TestPolygonTooFewVerticesKeepsGestureOpen(t *testing.T) {
	tool := NewPolygonTool(DefaultPolygonToolConfig(), nil)
	tool.Click(geom.Pt(0, 0), domain.CategoryInteractive)
	tool.Click(geom.Pt(50, 0), domain.CategoryInteractive)

	_, err := tool.Complete()
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !tool.Active() {
		t.Fatalf("gesture must stay open for more vertices")
	}
	if len(tool.Vertices()) != 2 {
		t.Fatalf("vertices lost on failed completion: %v", tool.Vertices())
	}
}

func TestPolygonCompleteNormalizes(t *testing.T) {
	tool := NewPolygonTool(DefaultPolygonToolConfig(), nil)
	tool.Click(geom.Pt(10, 20), domain.CategoryCollision)
	tool.Click(geom.Pt(60, 20), domain.CategoryCollision)
	tool.Click(geom.Pt(60, 70), domain.CategoryCollision)

	shape, err := tool.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if tool.Active() {
		t.Fatalf("tool must return to idle after completion")
	}
	p := shape.Geometry.Polygon
	if p == nil {
		t.Fatalf("expected polygon geometry, got %+v", shape.Geometry)
	}
	if p.Position != geom.Pt(10, 20) {
		t.Fatalf("position must be the bounds origin, got %v", p.Position)
	}
	if p.ScaleX != 1 || p.ScaleY != 1 || p.Rotation != 0 {
		t.Fatalf("transform must be reset, got %+v", p)
	}
	want := []float64{0, 0, 50, 0, 50, 50}
	if len(p.Points) != len(want) {
		t.Fatalf("point count mismatch: %v", p.Points)
	}
	for i := range want {
		if p.Points[i] != want[i] {
			t.Fatalf("box-relative points mismatch: got %v want %v", p.Points, want)
		}
	}
}

func TestPolygonOriginClickCloses(t *testing.T) {
	tool := NewPolygonTool(DefaultPolygonToolConfig(), nil)
	tool.Click(geom.Pt(0, 0), domain.CategoryInteractive)
	tool.Click(geom.Pt(100, 0), domain.CategoryInteractive)
	tool.Click(geom.Pt(100, 100), domain.CategoryInteractive)

	// 6 world units from the origin at zoom 1, inside the 10 px radius.
	tool.Hover(geom.Pt(6, 0), 1)
	if !tool.OriginHovered() {
		t.Fatalf("expected origin hover inside radius")
	}
	shape, done, err := tool.Click(geom.Pt(6, 0), domain.CategoryInteractive)
	if err != nil || !done {
		t.Fatalf("origin click should close the polygon, done=%v err=%v", done, err)
	}
	if got := len(shape.Geometry.Polygon.Points) / 2; got != 3 {
		t.Fatalf("expected 3 vertices, got %d", got)
	}
}

func TestPolygonOriginRadiusScalesWithZoom(t *testing.T) {
	tool := NewPolygonTool(DefaultPolygonToolConfig(), nil)
	tool.Click(geom.Pt(0, 0), domain.CategoryInteractive)
	tool.Click(geom.Pt(100, 0), domain.CategoryInteractive)

	// 6 world units is 24 screen pixels at zoom 4, outside the radius.
	tool.Hover(geom.Pt(6, 0), 4)
	if tool.OriginHovered() {
		t.Fatalf("hover radius must be screen-relative")
	}
	// The same distance at zoom 0.5 is 3 screen pixels.
	tool.Hover(geom.Pt(6, 0), 0.5)
	if !tool.OriginHovered() {
		t.Fatalf("expected hover at low zoom")
	}
}

func TestPolygonRemoveLastVertex(t *testing.T) {
	tool := NewPolygonTool(DefaultPolygonToolConfig(), nil)
	tool.Click(geom.Pt(0, 0), domain.CategoryInteractive)
	tool.Click(geom.Pt(50, 0), domain.CategoryInteractive)
	tool.Click(geom.Pt(50, 50), domain.CategoryInteractive)

	tool.RemoveLastVertex()
	if got := tool.Vertices(); len(got) != 2 || got[1] != geom.Pt(50, 0) {
		t.Fatalf("unexpected vertices after removal: %v", got)
	}
	tool.RemoveLastVertex()
	tool.RemoveLastVertex()
	tool.RemoveLastVertex() // empty, no-op
	if len(tool.Vertices()) != 0 {
		t.Fatalf("expected empty vertex list")
	}
}

func TestPolygonCancelDiscards(t *testing.T) {
	tool := NewPolygonTool(DefaultPolygonToolConfig(), nil)
	tool.Click(geom.Pt(0, 0), domain.CategoryInteractive)
	tool.Cancel()
	if tool.Active() || len(tool.Vertices()) != 0 {
		t.Fatalf("cancel must clear the gesture")
	}
}

func TestPolygonClickSnaps(t *testing.T) {
	grid := GridConfig{Spacing: 10, SnapEnabled: true}
	tool := NewPolygonTool(DefaultPolygonToolConfig(), grid.Snap)
	tool.Click(geom.Pt(12, 9), domain.CategoryInteractive)
	if got := tool.Vertices()[0]; got != geom.Pt(10, 10) {
		t.Fatalf("vertex not snapped: %v", got)
	}
}
