package geom

// Transform places local geometry into world space. Local points are scaled,
// then rotated, then translated by Position, in that order.
type Transform struct {
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
}

// IdentityTransform returns a transform that leaves local points unchanged.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// IsIdentity reports whether applying the transform is a no-op.
func (t Transform) IsIdentity() bool {
	return t.Position == (Point{}) && t.Rotation == 0 && t.ScaleX == 1 && t.ScaleY == 1
}

// Apply maps a local point into world space.
func (t Transform) Apply(p Point) Point {
	return p.Scale(t.ScaleX, t.ScaleY).Rotate(t.Rotation).Add(t.Position)
}

// ApplyAll maps a slice of local points into world space. The result is
// always a fresh slice; the input is never aliased.
func (t Transform) ApplyAll(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// PointsEqualWithin reports whether two point sequences match pairwise within
// eps. Sequences of different lengths never match.
func PointsEqualWithin(a, b []Point, eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].EqualWithin(b[i], eps) {
			return false
		}
	}
	return true
}

// RoundPointsTo rounds every point to the given unit, returning a new slice.
func RoundPointsTo(points []Point, unit float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.RoundTo(unit)
	}
	return out
}

// Relative rebases absolute points against the origin, producing local
// box-relative coordinates.
func Relative(points []Point, origin Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.Sub(origin)
	}
	return out
}
