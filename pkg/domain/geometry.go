package domain

import (
	"fmt"
	"math"

	"mapcore/pkg/geom"
)

// GeometryKind discriminates the geometry variants of an area record.
type GeometryKind string

// Supported geometry kinds.
const (
	KindRectangle GeometryKind = "rectangle"
	KindPolygon   GeometryKind = "polygon"
	KindImage     GeometryKind = "image"
)

// Geometry is a tagged union: Kind selects exactly one populated variant.
// The zero value is invalid and fails Validate.
type Geometry struct {
	Kind      GeometryKind       `json:"kind"`
	Rectangle *RectangleGeometry `json:"rectangle,omitempty"`
	Polygon   *PolygonGeometry   `json:"polygon,omitempty"`
	Image     *ImageGeometry     `json:"image,omitempty"`
}

// RectangleGeometry places an axis-aligned box that may carry a rotation and
// non-uniform scale about its origin corner.
type RectangleGeometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
}

// PolygonGeometry stores box-relative local vertices as flattened x,y pairs
// plus the transform placing them into world space.
type PolygonGeometry struct {
	Points   []float64  `json:"points"`
	Position geom.Point `json:"position"`
	Rotation float64    `json:"rotation"`
	ScaleX   float64    `json:"scale_x"`
	ScaleY   float64    `json:"scale_y"`
}

// ImageGeometry places an uploaded image by asset reference.
type ImageGeometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	AssetID  string  `json:"asset_id,omitempty"`
}

// NewRectangle builds an unrotated, unscaled rectangle geometry.
func NewRectangle(r geom.Rect) Geometry {
	return Geometry{
		Kind: KindRectangle,
		Rectangle: &RectangleGeometry{
			X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			ScaleX: 1, ScaleY: 1,
		},
	}
}

// NewPolygon builds a normalized polygon geometry from absolute world points:
// position is the bounding-box origin, local points are box-relative, and the
// transform is reset to scale 1, rotation 0.
func NewPolygon(absolute []geom.Point) Geometry {
	bounds := geom.BoundsOf(absolute)
	rel := geom.Relative(absolute, bounds.Min())
	return Geometry{
		Kind: KindPolygon,
		Polygon: &PolygonGeometry{
			Points:   FlattenPoints(rel),
			Position: bounds.Min(),
			ScaleX:   1,
			ScaleY:   1,
		},
	}
}

// Clone returns a deep copy of the geometry.
func (g Geometry) Clone() Geometry {
	cp := g
	if g.Rectangle != nil {
		r := *g.Rectangle
		cp.Rectangle = &r
	}
	if g.Polygon != nil {
		p := *g.Polygon
		p.Points = append([]float64(nil), g.Polygon.Points...)
		cp.Polygon = &p
	}
	if g.Image != nil {
		img := *g.Image
		cp.Image = &img
	}
	return cp
}

// Transform returns the placement transform of the populated variant.
func (g Geometry) Transform() geom.Transform {
	switch g.Kind {
	case KindRectangle:
		if g.Rectangle == nil {
			return geom.IdentityTransform()
		}
		return geom.Transform{
			Position: geom.Pt(g.Rectangle.X, g.Rectangle.Y),
			Rotation: g.Rectangle.Rotation,
			ScaleX:   g.Rectangle.ScaleX,
			ScaleY:   g.Rectangle.ScaleY,
		}
	case KindPolygon:
		if g.Polygon == nil {
			return geom.IdentityTransform()
		}
		return geom.Transform{
			Position: g.Polygon.Position,
			Rotation: g.Polygon.Rotation,
			ScaleX:   g.Polygon.ScaleX,
			ScaleY:   g.Polygon.ScaleY,
		}
	case KindImage:
		if g.Image == nil {
			return geom.IdentityTransform()
		}
		scale := g.Image.Scale
		if scale == 0 {
			scale = 1
		}
		return geom.Transform{
			Position: geom.Pt(g.Image.X, g.Image.Y),
			Rotation: g.Image.Rotation,
			ScaleX:   scale,
			ScaleY:   scale,
		}
	}
	return geom.IdentityTransform()
}

// LocalPoints returns the variant's untransformed outline. Rectangles and
// images contribute their four corners; polygons their stored vertices.
func (g Geometry) LocalPoints() []geom.Point {
	switch g.Kind {
	case KindRectangle:
		if g.Rectangle == nil {
			return nil
		}
		c := (geom.Rect{Width: g.Rectangle.Width, Height: g.Rectangle.Height}).Corners()
		return c[:]
	case KindPolygon:
		if g.Polygon == nil {
			return nil
		}
		return UnflattenPoints(g.Polygon.Points)
	case KindImage:
		if g.Image == nil {
			return nil
		}
		c := (geom.Rect{Width: g.Image.Width, Height: g.Image.Height}).Corners()
		return c[:]
	}
	return nil
}

// AbsolutePoints returns the world-space outline after applying the variant's
// transform. This is the comparison baseline used by reconciliation.
func (g Geometry) AbsolutePoints() []geom.Point {
	return g.Transform().ApplyAll(g.LocalPoints())
}

// Bounds returns the axis-aligned bounding box of the absolute outline.
func (g Geometry) Bounds() geom.Rect {
	return geom.BoundsOf(g.AbsolutePoints())
}

// Validate checks the structural invariants of the union: exactly one variant
// populated and matching Kind, finite coordinates, non-negative dimensions,
// and at least three polygon vertices.
func (g Geometry) Validate() error {
	populated := 0
	if g.Rectangle != nil {
		populated++
	}
	if g.Polygon != nil {
		populated++
	}
	if g.Image != nil {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("geometry must populate exactly one variant, found %d", populated)
	}
	switch g.Kind {
	case KindRectangle:
		if g.Rectangle == nil {
			return fmt.Errorf("kind %s without rectangle variant", g.Kind)
		}
		r := g.Rectangle
		if !finite(r.X, r.Y, r.Width, r.Height, r.Rotation, r.ScaleX, r.ScaleY) {
			return fmt.Errorf("rectangle contains non-finite values")
		}
		if r.Width < 0 || r.Height < 0 {
			return fmt.Errorf("rectangle dimensions must be non-negative, got %gx%g", r.Width, r.Height)
		}
	case KindPolygon:
		if g.Polygon == nil {
			return fmt.Errorf("kind %s without polygon variant", g.Kind)
		}
		p := g.Polygon
		if len(p.Points)%2 != 0 {
			return fmt.Errorf("polygon points must be x,y pairs, got %d values", len(p.Points))
		}
		if len(p.Points)/2 < 3 {
			return fmt.Errorf("polygon requires at least 3 vertices, got %d", len(p.Points)/2)
		}
		if !finite(p.Points...) || !finite(p.Position.X, p.Position.Y, p.Rotation, p.ScaleX, p.ScaleY) {
			return fmt.Errorf("polygon contains non-finite values")
		}
	case KindImage:
		if g.Image == nil {
			return fmt.Errorf("kind %s without image variant", g.Kind)
		}
		img := g.Image
		if !finite(img.X, img.Y, img.Width, img.Height, img.Rotation, img.Scale) {
			return fmt.Errorf("image contains non-finite values")
		}
		if img.Width < 0 || img.Height < 0 {
			return fmt.Errorf("image dimensions must be non-negative, got %gx%g", img.Width, img.Height)
		}
	default:
		return fmt.Errorf("unknown geometry kind %q", g.Kind)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FlattenPoints converts points into flattened x,y pairs.
func FlattenPoints(points []geom.Point) []float64 {
	out := make([]float64, 0, len(points)*2)
	for _, p := range points {
		out = append(out, p.X, p.Y)
	}
	return out
}

// UnflattenPoints converts flattened x,y pairs back into points. A trailing
// unpaired value is dropped.
func UnflattenPoints(values []float64) []geom.Point {
	out := make([]geom.Point, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		out = append(out, geom.Pt(values[i], values[i+1]))
	}
	return out
}
