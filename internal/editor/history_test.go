package editor

import (
	"fmt"
	"reflect"
	"testing"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

func rectShape(id string, x, y float64) Shape {
	return Shape{
		ID:       id,
		Category: domain.CategoryInteractive,
		Geometry: domain.NewRectangle(geom.Rect{X: x, Y: y, Width: 20, Height: 20}),
		Style:    DefaultStyle(domain.CategoryInteractive),
	}
}

func TestHistoryBoundEvictsOldest(t *testing.T) {
	h := NewHistory(50)
	h.Push(nil, nil, "baseline")
	for i := 0; i < 60; i++ {
		h.Push([]Shape{rectShape("a", float64(i), 0)}, nil, fmt.Sprintf("push %d", i))
	}
	past, future := h.Depth()
	if past != 50 || future != 0 {
		t.Fatalf("expected 50 undo steps, got %d/%d", past, future)
	}
	// the baseline and pushes 0..9 are evicted; the deepest undo target is
	// push 9
	var last Snapshot
	for h.CanUndo() {
		last, _ = h.Undo()
	}
	if last.Label != "push 9" {
		t.Fatalf("expected oldest surviving snapshot to be push 9, got %q", last.Label)
	}
}

func TestHistoryUndoRedoRestoresExactly(t *testing.T) {
	h := NewHistory(10)
	before := []Shape{rectShape("a", 1, 2), rectShape("b", 3, 4)}
	h.Push(before, []string{"a"}, "initial")
	after := []Shape{rectShape("a", 100, 200), rectShape("b", 3, 4)}
	h.Push(after, []string{"b"}, "move")

	snap, ok := h.Undo()
	if !ok {
		t.Fatalf("undo failed")
	}
	if !reflect.DeepEqual(snap.Shapes, before) || !reflect.DeepEqual(snap.SelectedIDs, []string{"a"}) {
		t.Fatalf("undo did not restore the prior state:\n%+v\nvs\n%+v", snap.Shapes, before)
	}
	redo, ok := h.Redo()
	if !ok {
		t.Fatalf("redo failed")
	}
	if !reflect.DeepEqual(redo.Shapes, after) {
		t.Fatalf("redo did not restore the undone state")
	}
	if h.CanRedo() {
		t.Fatalf("redo side must be empty again")
	}
}

func TestHistoryUndoOnBaselineIsNoop(t *testing.T) {
	h := NewHistory(10)
	h.Push(nil, nil, "baseline")
	if h.CanUndo() {
		t.Fatalf("baseline alone must not be undoable")
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo past the baseline must fail")
	}
}

func TestHistoryPushClearsFuture(t *testing.T) {
	h := NewHistory(10)
	h.Push(nil, nil, "baseline")
	h.Push([]Shape{rectShape("a", 0, 0)}, nil, "one")
	if _, ok := h.Undo(); !ok {
		t.Fatalf("undo failed")
	}
	if !h.CanRedo() {
		t.Fatalf("expected redo available")
	}
	h.Push([]Shape{rectShape("b", 0, 0)}, nil, "two")
	if h.CanRedo() {
		t.Fatalf("push must clear the redo side")
	}
}

func TestHistorySnapshotsNeverAliasLiveShapes(t *testing.T) {
	h := NewHistory(10)
	live := []Shape{rectShape("a", 5, 5)}
	h.Push(live, nil, "snap")
	live[0].Geometry.Rectangle.X = 999
	h.Push(live, nil, "mutated")

	snap, _ := h.Undo()
	if snap.Shapes[0].Geometry.Rectangle.X != 5 {
		t.Fatalf("snapshot aliases live geometry: %+v", snap.Shapes[0].Geometry.Rectangle)
	}
}

func TestHistoryPushIgnoredWhileRestoring(t *testing.T) {
	h := NewHistory(10)
	h.Push(nil, nil, "baseline")
	done := h.Restoring()
	h.Push([]Shape{rectShape("a", 0, 0)}, nil, "during restore")
	done()
	if h.CanUndo() {
		t.Fatalf("push during restoration must be a no-op")
	}
}
