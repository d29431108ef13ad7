package editor

import (
	"time"
)

// DefaultHistorySize bounds the undo stack.
const DefaultHistorySize = 50

// Snapshot is an immutable deep copy of the shape collection and selection,
// taken at a discrete commit point. It never aliases live shapes.
type Snapshot struct {
	Shapes      []Shape
	SelectedIDs []string
	TakenAt     time.Time
	Label       string
}

// History is the bounded undo/redo stack. The past side always includes the
// current state on top, so undo pops it and restores the state underneath.
// Pushing clears the redo side; exceeding the bound evicts the oldest entry.
type History struct {
	past      []Snapshot
	future    []Snapshot
	maxSize   int
	restoring bool
	nowFn     func() time.Time
}

// NewHistory returns a history bounded to maxSize undo steps
// (DefaultHistorySize when maxSize <= 0).
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultHistorySize
	}
	return &History{maxSize: maxSize, nowFn: time.Now}
}

// SetNowFunc overrides the snapshot clock for tests.
func (h *History) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		h.nowFn = fn
	}
}

func (h *History) snapshot(shapes []Shape, selected []string, label string) Snapshot {
	cp := make([]Shape, len(shapes))
	for i, s := range shapes {
		cp[i] = s.Clone()
	}
	return Snapshot{
		Shapes:      cp,
		SelectedIDs: append([]string(nil), selected...),
		TakenAt:     h.nowFn().UTC(),
		Label:       label,
	}
}

// Push records the state after a mutation as the new top. Calls made while a
// snapshot is being restored are ignored so restoration cannot feed back into
// the stack. The bound counts undo steps, so up to maxSize+1 snapshots are
// retained including the current state.
func (h *History) Push(shapes []Shape, selected []string, label string) {
	if h.restoring {
		return
	}
	h.past = append(h.past, h.snapshot(shapes, selected, label))
	h.future = nil
	if len(h.past) > h.maxSize+1 {
		h.past = append(h.past[:0:0], h.past[len(h.past)-h.maxSize-1:]...)
	}
}

// CanUndo reports whether an undo point exists below the current state.
func (h *History) CanUndo() bool { return len(h.past) > 1 }

// CanRedo reports whether a redo point exists.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Undo moves the current state to the redo side and returns the snapshot
// underneath it. ok=false when there is nothing to undo.
func (h *History) Undo() (Snapshot, bool) {
	if len(h.past) < 2 {
		return Snapshot{}, false
	}
	top := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, top)
	return h.past[len(h.past)-1], true
}

// Redo moves the most recent redo point back to the past side and returns it.
func (h *History) Redo() (Snapshot, bool) {
	if len(h.future) == 0 {
		return Snapshot{}, false
	}
	snap := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, snap)
	return snap, true
}

// Restoring marks the start of a snapshot restoration and returns a func
// ending it. While restoring, Push is a no-op.
func (h *History) Restoring() func() {
	h.restoring = true
	return func() { h.restoring = false }
}

// Depth returns the undo step count and the redo stack depth.
func (h *History) Depth() (past, future int) {
	undo := len(h.past) - 1
	if undo < 0 {
		undo = 0
	}
	return undo, len(h.future)
}
