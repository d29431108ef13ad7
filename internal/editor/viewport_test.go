package editor

import (
	"math"
	"testing"

	"mapcore/pkg/geom"
)

func TestScreenWorldRoundTrip(t *testing.T) {
	v := NewViewport()
	v.Zoom = 2.5
	v.Pan = geom.Pt(120, -45)
	points := []geom.Point{
		geom.Pt(0, 0),
		geom.Pt(10, 10),
		geom.Pt(-300.5, 912.25),
		geom.Pt(1e6, -1e6),
	}
	for _, p := range points {
		got := v.WorldToScreen(v.ScreenToWorld(p))
		if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
			t.Fatalf("round trip of %+v gave %+v", p, got)
		}
	}
}

func TestZoomToPointAnchorsCursor(t *testing.T) {
	v := NewViewport()
	v.Zoom = 1
	v.Pan = geom.Pt(50, 20)
	cursor := geom.Pt(400, 300)
	worldBefore := v.ScreenToWorld(cursor)

	zoomed := v.ZoomToPoint(cursor, 2.4)
	if zoomed.Zoom != 2.4 {
		t.Fatalf("zoom not applied: %+v", zoomed)
	}
	worldAfter := zoomed.ScreenToWorld(cursor)
	if !worldBefore.EqualWithin(worldAfter, 1e-9) {
		t.Fatalf("world point under cursor moved: %+v vs %+v", worldBefore, worldAfter)
	}
}

func TestZoomClampNoOpAtLimit(t *testing.T) {
	v := NewViewport()
	v.Zoom = v.MaxZoom
	before := v
	after := v.ZoomToPoint(geom.Pt(100, 100), v.MaxZoom*4)
	if after != before {
		t.Fatalf("zoom past the limit must be a no-op, got %+v", after)
	}
	v.Zoom = v.MinZoom
	before = v
	after = v.ZoomToPoint(geom.Pt(100, 100), 0)
	if after != before {
		t.Fatalf("zoom below the limit must be a no-op, got %+v", after)
	}
}

func TestZoomToFitCentersBounds(t *testing.T) {
	v := NewViewport()
	bounds := geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}
	fitted := v.ZoomToFit(bounds, 800, 600, 20)

	if fitted.Zoom <= 0 {
		t.Fatalf("invalid zoom %g", fitted.Zoom)
	}
	// the bounds center should land on the viewport center
	center := fitted.WorldToScreen(bounds.Center())
	if math.Abs(center.X-400) > 1e-9 || math.Abs(center.Y-300) > 1e-9 {
		t.Fatalf("bounds center not at viewport center: %+v", center)
	}
	// width is the binding dimension: (800-40)/200 = 3.8
	if math.Abs(fitted.Zoom-3.8) > 1e-9 {
		t.Fatalf("expected zoom 3.8, got %g", fitted.Zoom)
	}
}

func TestZoomToFitClampsToMax(t *testing.T) {
	v := NewViewport()
	fitted := v.ZoomToFit(geom.Rect{Width: 1, Height: 1}, 800, 600, 0)
	if fitted.Zoom != v.MaxZoom {
		t.Fatalf("expected clamp to max zoom, got %g", fitted.Zoom)
	}
}

func TestZoomToFitDegenerateBoundsNoOp(t *testing.T) {
	v := NewViewport()
	if got := v.ZoomToFit(geom.Rect{}, 800, 600, 10); got != v {
		t.Fatalf("degenerate bounds must be a no-op, got %+v", got)
	}
}
