package editor

import (
	"mapcore/pkg/geom"
)

// Default zoom limits applied when a Viewport is built by NewViewport.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 8.0
)

// Viewport holds the zoom level and pan offset defining the visible
// world-to-screen mapping. The zero value is unusable; use NewViewport.
type Viewport struct {
	Zoom    float64    `json:"zoom"`
	Pan     geom.Point `json:"pan"`
	MinZoom float64    `json:"min_zoom"`
	MaxZoom float64    `json:"max_zoom"`
}

// NewViewport returns a viewport at zoom 1, pan (0,0) with default limits.
func NewViewport() Viewport {
	return Viewport{Zoom: 1, MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom}
}

// ClampZoom bounds z to the viewport's zoom limits.
func (v Viewport) ClampZoom(z float64) float64 {
	if z < v.MinZoom {
		return v.MinZoom
	}
	if z > v.MaxZoom {
		return v.MaxZoom
	}
	return z
}

// ScreenToWorld converts a screen point into world coordinates.
func (v Viewport) ScreenToWorld(p geom.Point) geom.Point {
	return p.Sub(v.Pan).Div(v.Zoom)
}

// WorldToScreen converts a world point into screen coordinates.
func (v Viewport) WorldToScreen(p geom.Point) geom.Point {
	return p.Mul(v.Zoom).Add(v.Pan)
}

// ZoomToPoint changes zoom while keeping the world point under screenPt at
// the same screen position. Returns the viewport unchanged when the clamped
// zoom equals the current zoom.
func (v Viewport) ZoomToPoint(screenPt geom.Point, newZoom float64) Viewport {
	z := v.ClampZoom(newZoom)
	if z == v.Zoom {
		return v
	}
	world := v.ScreenToWorld(screenPt)
	next := v
	next.Zoom = z
	next.Pan = screenPt.Sub(world.Mul(z))
	return next
}

// ZoomToFit frames bounds inside a viewport of the given pixel size with the
// given padding on every side, centering the bounds. Degenerate bounds or
// viewport dimensions leave the viewport unchanged.
func (v Viewport) ZoomToFit(bounds geom.Rect, viewportW, viewportH, padding float64) Viewport {
	if bounds.Width <= 0 || bounds.Height <= 0 || viewportW <= 0 || viewportH <= 0 {
		return v
	}
	zx := (viewportW - 2*padding) / bounds.Width
	zy := (viewportH - 2*padding) / bounds.Height
	z := zx
	if zy < z {
		z = zy
	}
	z = v.ClampZoom(z)
	next := v
	next.Zoom = z
	center := bounds.Center().Mul(z)
	next.Pan = geom.Pt(viewportW/2, viewportH/2).Sub(center)
	return next
}

// Translate shifts the pan offset by a screen-space delta.
func (v Viewport) Translate(delta geom.Point) Viewport {
	next := v
	next.Pan = v.Pan.Add(delta)
	return next
}
