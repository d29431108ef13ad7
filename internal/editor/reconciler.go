package editor

import (
	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

// One precision policy for the whole sync path: commit-time rounding and
// read-time comparison use the same 0.01 unit, so a value written by commit
// always compares equal on the next pass.
const (
	CommitPrecision = 0.01
	CompareEpsilon  = 0.01
)

// ReconcileStats counts the mutations of one reconciliation pass.
type ReconcileStats struct {
	Normalized    int
	Added         int
	Removed       int
	SkippedLocked int
	Unchanged     int
}

// Mutations reports whether the pass changed the scene at all.
func (s ReconcileStats) Mutations() int {
	return s.Normalized + s.Added + s.Removed
}

// Reconciler keeps the live scene consistent with the canonical store. It
// owns no canonical data and the lock set exempts shapes under an active
// gesture, so a stale or remote update never fights a live drag.
type Reconciler struct {
	scene   *Scene
	locks   *LockSet
	epsilon float64
	log     Logger
}

// NewReconciler builds a reconciler over the scene and lock set.
func NewReconciler(scene *Scene, locks *LockSet, logger Logger) *Reconciler {
	if logger == nil {
		logger = NoopLogger()
	}
	return &Reconciler{scene: scene, locks: locks, epsilon: CompareEpsilon, log: logger}
}

// Locks returns the reconciler-owned lock set.
func (r *Reconciler) Locks() *LockSet { return r.locks }

// Reconcile runs one pass against the canonical records:
//
//  1. A canonical record with a locked live shape is skipped entirely.
//  2. An unlocked live shape is compared by its current absolute outline
//     (the rendered truth, never a cached canonical copy) against the
//     canonical absolute outline; equal within epsilon means no-op.
//  3. A differing shape is normalized from canonical: polygons are rebuilt
//     box-relative with scale 1 and rotation 0, rectangles and images take
//     the canonical fields directly.
//  4. Canonical records without a live shape are added; live shapes without
//     a canonical record are removed (unless locked).
func (r *Reconciler) Reconcile(records []domain.AreaRecord) ReconcileStats {
	var stats ReconcileStats
	canonical := make(map[string]domain.AreaRecord, len(records))
	for _, rec := range records {
		canonical[rec.ID] = rec
	}

	for _, rec := range records {
		shape, ok := r.scene.Get(rec.ID)
		if !ok {
			r.scene.Add(ShapeFromRecord(rec))
			stats.Added++
			continue
		}
		if r.locks.Locked(rec.ID) {
			stats.SkippedLocked++
			continue
		}
		liveAbs := shape.AbsolutePoints()
		canonAbs := rec.Geometry.AbsolutePoints()
		if geom.PointsEqualWithin(liveAbs, canonAbs, r.epsilon) {
			stats.Unchanged++
			continue
		}
		shape.Geometry = normalizedGeometry(rec.Geometry)
		shape.Style = rec.Style
		shape.Metadata = rec.Metadata
		stats.Normalized++
		r.log.Debug("normalized live shape from canonical", "area_id", rec.ID)
	}

	for _, id := range r.scene.IDs() {
		if _, ok := canonical[id]; ok {
			continue
		}
		if r.locks.Locked(id) {
			stats.SkippedLocked++
			continue
		}
		r.scene.Remove(id)
		stats.Removed++
	}
	return stats
}
