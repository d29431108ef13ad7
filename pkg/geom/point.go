// Package geom provides the 2D value types and pure transform math used by
// the editor core. All types are plain values; nothing here retains state.
package geom

import "math"

// Point represents a 2D point or vector in world or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience constructor for a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Div returns the point divided by a scalar.
func (p Point) Div(s float64) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}

// Scale returns the point scaled component-wise.
func (p Point) Scale(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Rotate returns the point rotated by angle radians around the origin.
func (p Point) Rotate(angle float64) Point {
	if angle == 0 {
		return p
	}
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// EqualWithin reports whether two points match component-wise within eps.
func (p Point) EqualWithin(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// RoundTo returns the point with both coordinates rounded to the given unit.
// A unit of 0.01 rounds to two decimal places; unit <= 0 returns p unchanged.
func (p Point) RoundTo(unit float64) Point {
	if unit <= 0 {
		return p
	}
	return Point{
		X: math.Round(p.X/unit) * unit,
		Y: math.Round(p.Y/unit) * unit,
	}
}
