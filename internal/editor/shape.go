package editor

import (
	"fmt"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

// Shape is the live, rendered representation of one editable area. Its
// geometry carries both the local outline and the placement transform; the
// absolute outline derived from the two is the reconciliation baseline.
type Shape struct {
	ID       string              `json:"id"`
	Category domain.AreaCategory `json:"category"`
	Geometry domain.Geometry     `json:"geometry"`
	Style    domain.Style        `json:"style"`
	Metadata domain.Metadata     `json:"metadata"`
}

// ShapeFromRecord builds a live shape from a canonical record. Polygons are
// normalized to a box-relative representation so later transforms never
// compound with stale canonical ones.
func ShapeFromRecord(rec domain.AreaRecord) Shape {
	return Shape{
		ID:       rec.ID,
		Category: rec.Category,
		Geometry: normalizedGeometry(rec.Geometry),
		Style:    rec.Style,
		Metadata: rec.Metadata,
	}
}

// normalizedGeometry copies rectangle and image geometry directly and
// rebuilds polygons from their absolute outline with scale 1 and rotation 0.
func normalizedGeometry(g domain.Geometry) domain.Geometry {
	if g.Kind == domain.KindPolygon && g.Polygon != nil {
		return domain.NewPolygon(g.AbsolutePoints())
	}
	return g.Clone()
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	cp := s
	cp.Geometry = s.Geometry.Clone()
	cp.Metadata.Tags = append([]string(nil), s.Metadata.Tags...)
	return cp
}

// AbsolutePoints returns the shape's world-space outline.
func (s Shape) AbsolutePoints() []geom.Point {
	return s.Geometry.AbsolutePoints()
}

// Bounds returns the shape's world-space bounding box.
func (s Shape) Bounds() geom.Rect {
	return s.Geometry.Bounds()
}

// TranslateBy shifts the shape's position by a world-space delta.
func (s *Shape) TranslateBy(delta geom.Point) {
	switch s.Geometry.Kind {
	case domain.KindRectangle:
		if r := s.Geometry.Rectangle; r != nil {
			r.X += delta.X
			r.Y += delta.Y
		}
	case domain.KindPolygon:
		if p := s.Geometry.Polygon; p != nil {
			p.Position = p.Position.Add(delta)
		}
	case domain.KindImage:
		if img := s.Geometry.Image; img != nil {
			img.X += delta.X
			img.Y += delta.Y
		}
	}
}

// Resize applies a relative scale factor from a resize gesture. Rectangles
// and images scale their stored dimensions; polygons accumulate ScaleX/ScaleY.
func (s *Shape) Resize(factorX, factorY float64) {
	switch s.Geometry.Kind {
	case domain.KindRectangle:
		if r := s.Geometry.Rectangle; r != nil {
			r.Width *= factorX
			r.Height *= factorY
		}
	case domain.KindPolygon:
		if p := s.Geometry.Polygon; p != nil {
			p.ScaleX *= factorX
			p.ScaleY *= factorY
		}
	case domain.KindImage:
		if img := s.Geometry.Image; img != nil {
			img.Width *= factorX
			img.Height *= factorY
		}
	}
}

// RotationLocked reports whether the shape's category forbids rotation.
// Collision polygons stay axis-aligned so physics queries remain cheap.
func (s Shape) RotationLocked() bool {
	return s.Category == domain.CategoryCollision && s.Geometry.Kind == domain.KindPolygon
}

// Rotate sets the shape's rotation, rejecting the delta when the category
// locks rotation to zero.
func (s *Shape) Rotate(angle float64) error {
	if s.RotationLocked() {
		if angle != 0 {
			return fmt.Errorf("rotation locked for %s %s", s.Category, s.Geometry.Kind)
		}
		return nil
	}
	switch s.Geometry.Kind {
	case domain.KindRectangle:
		if r := s.Geometry.Rectangle; r != nil {
			r.Rotation = angle
		}
	case domain.KindPolygon:
		if p := s.Geometry.Polygon; p != nil {
			p.Rotation = angle
		}
	case domain.KindImage:
		if img := s.Geometry.Image; img != nil {
			img.Rotation = angle
		}
	}
	return nil
}

// CommitGeometry returns the shape's final absolute geometry rounded to the
// commit precision, ready to be written to the canonical store.
func (s Shape) CommitGeometry() domain.Geometry {
	switch s.Geometry.Kind {
	case domain.KindPolygon:
		rounded := geom.RoundPointsTo(s.AbsolutePoints(), CommitPrecision)
		g := domain.NewPolygon(rounded)
		return g
	case domain.KindRectangle:
		g := s.Geometry.Clone()
		r := g.Rectangle
		p := geom.Pt(r.X, r.Y).RoundTo(CommitPrecision)
		r.X, r.Y = p.X, p.Y
		d := geom.Pt(r.Width, r.Height).RoundTo(CommitPrecision)
		r.Width, r.Height = d.X, d.Y
		return g
	default:
		return s.Geometry.Clone()
	}
}

// Record converts the live shape back into a canonical area record. Base
// timestamps are owned by the store and left zero.
func (s Shape) Record() domain.AreaRecord {
	return domain.AreaRecord{
		Base:     domain.Base{ID: s.ID},
		Category: s.Category,
		Geometry: s.Geometry.Clone(),
		Style:    s.Style,
		Metadata: s.Metadata,
	}
}
