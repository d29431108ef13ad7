package editor

import (
	"mapcore/pkg/geom"
)

// Selection tracks the selected shape ids and drives the marquee and drag
// gestures. Hit testing uses shape bounds; the topmost (last in z-order)
// match wins.
type Selection struct {
	scene       *Scene
	snap        func(geom.Point) geom.Point
	selected    []string
	selectedSet map[string]struct{}

	dragging  bool
	dragFrom  geom.Point
	dragTotal geom.Point
	dragIDs   []string

	marqueeActive bool
	marqueeStart  geom.Point
	marqueeCur    geom.Point
}

// NewSelection builds a selection controller over the scene. snap may be nil
// to disable drag snapping.
func NewSelection(scene *Scene, snap func(geom.Point) geom.Point) *Selection {
	if snap == nil {
		snap = func(p geom.Point) geom.Point { return p }
	}
	return &Selection{scene: scene, snap: snap, selectedSet: make(map[string]struct{})}
}

// SelectedIDs returns the selected ids in selection order.
func (s *Selection) SelectedIDs() []string {
	return append([]string(nil), s.selected...)
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id string) bool {
	_, ok := s.selectedSet[id]
	return ok
}

// SetSelected replaces the selection. Returns true when membership changed.
func (s *Selection) SetSelected(ids []string) bool {
	if len(ids) == len(s.selected) {
		same := true
		for i, id := range ids {
			if s.selected[i] != id {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	s.selected = append([]string(nil), ids...)
	s.selectedSet = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.selectedSet[id] = struct{}{}
	}
	return true
}

// Drop removes id from the selection if present.
func (s *Selection) Drop(id string) bool {
	if !s.IsSelected(id) {
		return false
	}
	out := make([]string, 0, len(s.selected)-1)
	for _, sel := range s.selected {
		if sel != id {
			out = append(out, sel)
		}
	}
	return s.SetSelected(out)
}

// HitTest returns the topmost shape whose bounds contain the world point.
func (s *Selection) HitTest(worldPt geom.Point) (string, bool) {
	shapes := s.scene.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Bounds().Contains(worldPt) {
			return shapes[i].ID, true
		}
	}
	return "", false
}

// ClickAt applies a selection click. A plain click selects the hit shape
// (or clears the selection on empty canvas); a modifier click toggles the
// hit shape's membership. Returns true when the selection changed.
func (s *Selection) ClickAt(worldPt geom.Point, multi bool) bool {
	id, hit := s.HitTest(worldPt)
	if !hit {
		if multi {
			return false
		}
		return s.SetSelected(nil)
	}
	if multi {
		if s.IsSelected(id) {
			return s.Drop(id)
		}
		return s.SetSelected(append(s.selected, id))
	}
	return s.SetSelected([]string{id})
}

// BeginMarquee starts a marquee drag from an empty-canvas point.
func (s *Selection) BeginMarquee(worldPt geom.Point) {
	s.marqueeActive = true
	s.marqueeStart = worldPt
	s.marqueeCur = worldPt
}

// MoveMarquee updates the marquee corner.
func (s *Selection) MoveMarquee(worldPt geom.Point) {
	if !s.marqueeActive {
		return
	}
	s.marqueeCur = worldPt
}

// MarqueeRect returns the current marquee rectangle.
func (s *Selection) MarqueeRect() (geom.Rect, bool) {
	if !s.marqueeActive {
		return geom.Rect{}, false
	}
	return geom.RectFromCorners(s.marqueeStart, s.marqueeCur), true
}

// EndMarquee selects every shape whose bounds intersect the marquee,
// replacing the prior selection unless multi is set, in which case the hits
// are added. Returns true when the selection changed.
func (s *Selection) EndMarquee(multi bool) bool {
	rect, active := s.MarqueeRect()
	if !active {
		return false
	}
	s.marqueeActive = false
	var hits []string
	for _, shape := range s.scene.Shapes() {
		if shape.Bounds().Intersects(rect) {
			hits = append(hits, shape.ID)
		}
	}
	if multi {
		merged := append([]string(nil), s.selected...)
		for _, id := range hits {
			if !s.IsSelected(id) {
				merged = append(merged, id)
			}
		}
		return s.SetSelected(merged)
	}
	return s.SetSelected(hits)
}

// BeginDrag starts translating the selection from a point on an already
// selected shape. Returns the ids that will move and whether a drag started.
func (s *Selection) BeginDrag(worldPt geom.Point) ([]string, bool) {
	id, hit := s.HitTest(worldPt)
	if !hit || !s.IsSelected(id) {
		return nil, false
	}
	s.dragging = true
	s.dragFrom = s.snap(worldPt)
	s.dragTotal = geom.Point{}
	s.dragIDs = s.SelectedIDs()
	return append([]string(nil), s.dragIDs...), true
}

// MoveDrag translates every dragged shape by the snapped incremental delta.
func (s *Selection) MoveDrag(worldPt geom.Point) {
	if !s.dragging {
		return
	}
	to := s.snap(worldPt)
	delta := to.Sub(s.dragFrom)
	if delta == (geom.Point{}) {
		return
	}
	s.dragFrom = to
	s.dragTotal = s.dragTotal.Add(delta)
	for _, id := range s.dragIDs {
		if shape, ok := s.scene.Get(id); ok {
			shape.TranslateBy(delta)
		}
	}
}

// EndDrag finishes the translation gesture, returning the moved ids and the
// cumulative world delta as one discrete update.
func (s *Selection) EndDrag() ([]string, geom.Point, bool) {
	if !s.dragging {
		return nil, geom.Point{}, false
	}
	s.dragging = false
	ids := s.dragIDs
	s.dragIDs = nil
	return ids, s.dragTotal, true
}

// Dragging reports whether a translation gesture is in progress.
func (s *Selection) Dragging() bool { return s.dragging }
