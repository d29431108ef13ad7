package geom

import "math"

// Rect is an axis-aligned rectangle described by its minimum corner and size.
// Width and Height are never negative for rectangles produced by this package.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromCorners builds the normalized rectangle spanning two opposite
// corners, regardless of drag direction.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// BoundsOf returns the axis-aligned bounding box of the given points.
// The zero Rect is returned for an empty slice.
func BoundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Min returns the minimum corner.
func (r Rect) Min() Point {
	return Point{X: r.X, Y: r.Y}
}

// Max returns the maximum corner.
func (r Rect) Max() Point {
	return Point{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Corners returns the four corners in clockwise order starting at Min.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// Contains reports whether the point lies inside or on the rectangle edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersects reports whether two rectangles overlap. Touching edges count
// as an intersection, matching marquee selection semantics.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 && r.X == 0 && r.Y == 0 {
		return o
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate returns the rectangle shifted by the vector d.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}
