// Package editor implements the interactive map editor core: viewport
// transforms, drawing and selection state machines, bounded undo/redo, and
// the reconciliation loop that keeps live shapes consistent with the
// canonical store while gestures are in progress.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mapcore/internal/blob"
	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsRecorder attaches a metrics sink for instrumented operations.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithTracer attaches a tracer for instrumented operations.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) { s.tracer = t }
}

// WithAuditRecorder attaches an audit sink.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(s *Service) { s.auditor = a }
}

// WithBlobStore attaches the blob backend that holds asset bytes. Without it
// the asset operations fail; area editing is unaffected.
func WithBlobStore(b blob.Store) ServiceOption {
	return func(s *Service) { s.blobs = b }
}

// WithHistorySize bounds the undo stack.
func WithHistorySize(n int) ServiceOption {
	return func(s *Service) { s.history = NewHistory(n) }
}

// WithGrid sets the initial grid configuration.
func WithGrid(cfg GridConfig) ServiceOption {
	return func(s *Service) { s.grid = cfg }
}

// WithRectangleToolConfig tunes the rectangle drawing tool.
func WithRectangleToolConfig(cfg RectangleToolConfig) ServiceOption {
	return func(s *Service) { s.rectCfg = cfg }
}

// WithPolygonToolConfig tunes the polygon drawing tool.
func WithPolygonToolConfig(cfg PolygonToolConfig) ServiceOption {
	return func(s *Service) { s.polyCfg = cfg }
}

// Service is the editor facade. It owns the live scene, tools, history,
// viewport, and reconciler, and mediates every mutation against the
// injected canonical store. All entry points serialize on one mutex: the
// event-loop discipline that makes the lock set and scene a single unit of
// state.
type Service struct {
	mu      sync.Mutex
	store   domain.PersistentStore
	blobs   blob.Store
	scene   *Scene
	sel     *Selection
	history *History
	locks   *LockSet
	rec     *Reconciler

	viewport Viewport
	grid     GridConfig
	rectCfg  RectangleToolConfig
	polyCfg  PolygonToolConfig
	rectTool *RectangleTool
	polyTool *PolygonTool

	events  Events
	log     Logger
	metrics MetricsRecorder
	tracer  Tracer
	auditor AuditRecorder

	gestureReleases  map[string]func()
	pendingReconcile atomic.Bool
	unsubscribe      func()
}

// NewService builds an editor service over the canonical store, loads the
// current store contents into the scene, and subscribes to store events.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:           store,
		scene:           NewScene(),
		history:         NewHistory(DefaultHistorySize),
		locks:           NewLockSet(),
		viewport:        NewViewport(),
		grid:            DefaultGridConfig(),
		rectCfg:         DefaultRectangleToolConfig(),
		polyCfg:         DefaultPolygonToolConfig(),
		log:             NoopLogger(),
		gestureReleases: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	snap := func(p geom.Point) geom.Point { return s.grid.Snap(p) }
	s.rectTool = NewRectangleTool(s.rectCfg, snap)
	s.polyTool = NewPolygonTool(s.polyCfg, snap)
	s.sel = NewSelection(s.scene, snap)
	s.rec = NewReconciler(s.scene, s.locks, s.log)

	s.mu.Lock()
	if store != nil {
		s.rec.Reconcile(store.ListAreas())
	}
	// Seed the baseline before subscribing so a store event cannot race the
	// initial snapshot.
	s.history.Push(s.scene.Shapes(), nil, "initial")
	s.mu.Unlock()
	if store != nil {
		s.unsubscribe = store.Subscribe(s.handleStoreEvent)
	}
	return s
}

// Close detaches the service from the store. Safe to call more than once.
func (s *Service) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetEvents wires the callback sinks. Callbacks run on the event loop.
func (s *Service) SetEvents(ev Events) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.events = ev
}

// handleStoreEvent runs a reconciliation pass for store commits. An event
// arriving while the service mutex is held is deferred and drained when the
// holding entry point unlocks.
func (s *Service) handleStoreEvent(domain.StoreEvent) {
	if s.mu.TryLock() {
		defer s.mu.Unlock()
		s.reconcileLocked(context.Background())
		return
	}
	s.pendingReconcile.Store(true)
}

func (s *Service) drainPending(ctx context.Context) {
	if s.pendingReconcile.Swap(false) {
		s.reconcileLocked(ctx)
	}
}

// unlockAndDrain releases the service mutex, first running any reconciliation
// pass a store event deferred while the mutex was held. Every exported entry
// point unlocks through it, so a deferred pass runs at the end of whichever
// call collided with the event rather than waiting for the next commit.
func (s *Service) unlockAndDrain(ctx context.Context) {
	s.drainPending(ctx)
	s.mu.Unlock()
}

// observe wraps one instrumented operation with metrics, tracing, and audit.
func (s *Service) observe(ctx context.Context, operation, areaID string, fn func(context.Context) error) error {
	spanCtx := ctx
	var span TraceSpan = noopSpan{}
	if s.tracer != nil {
		spanCtx, span = s.tracer.Start(ctx, operation)
	}
	start := time.Now()
	err := fn(spanCtx)
	duration := time.Since(start)
	span.End(err)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, AuditEntry{
			Operation:  operation,
			AreaID:     areaID,
			Success:    err == nil,
			Duration:   duration,
			OccurredAt: start.UTC(),
		})
	}
	return err
}

// --- viewport & grid ---

// Viewport returns the current viewport.
func (s *Service) Viewport() Viewport {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.viewport
}

// ZoomToPoint zooms about a screen point, keeping the world point under it
// fixed.
func (s *Service) ZoomToPoint(screenPt geom.Point, newZoom float64) Viewport {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	next := s.viewport.ZoomToPoint(screenPt, newZoom)
	if next != s.viewport {
		s.viewport = next
		s.events.viewportChanged(next)
	}
	return next
}

// ZoomToFit frames bounds in a viewport of the given pixel dimensions.
func (s *Service) ZoomToFit(bounds geom.Rect, viewportW, viewportH, padding float64) Viewport {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	next := s.viewport.ZoomToFit(bounds, viewportW, viewportH, padding)
	if next != s.viewport {
		s.viewport = next
		s.events.viewportChanged(next)
	}
	return next
}

// PanBy shifts the viewport by a screen-space delta.
func (s *Service) PanBy(delta geom.Point) Viewport {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.viewport = s.viewport.Translate(delta)
	s.events.viewportChanged(s.viewport)
	return s.viewport
}

// Grid returns the grid configuration.
func (s *Service) Grid() GridConfig {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.grid
}

// SetGrid replaces the grid configuration.
func (s *Service) SetGrid(cfg GridConfig) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.grid = cfg
}

// --- scene reads ---

// Shapes returns a deep copy of the scene in z-order.
func (s *Service) Shapes() []Shape {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.scene.CloneShapes()
}

// Shape returns a copy of the live shape with the given id.
func (s *Service) Shape(id string) (Shape, bool) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	if sh, ok := s.scene.Get(id); ok {
		return sh.Clone(), true
	}
	return Shape{}, false
}

// --- rectangle gesture ---

// BeginRectangle starts a rectangle drag at a screen point.
func (s *Service) BeginRectangle(screenPt geom.Point, category domain.AreaCategory) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.rectTool.Begin(s.viewport.ScreenToWorld(screenPt), category)
}

// MoveRectangle updates the rectangle drag.
func (s *Service) MoveRectangle(screenPt geom.Point) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.rectTool.Move(s.viewport.ScreenToWorld(screenPt))
}

// EndRectangle finishes the drag and persists the new area. A validation
// failure is reported through OnValidationError and nothing is committed.
func (s *Service) EndRectangle(ctx context.Context) (Shape, error) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	shape, err := s.rectTool.End()
	if err != nil {
		s.reportValidation(err)
		return Shape{}, err
	}
	return s.persistNewShape(ctx, shape)
}

// CancelRectangle discards an in-progress rectangle drag.
func (s *Service) CancelRectangle() {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.rectTool.Cancel()
}

// --- polygon gesture ---

// PolygonClick appends a vertex, or closes the polygon when the origin is
// hovered. A closed polygon is persisted; created reports whether a shape
// was committed.
func (s *Service) PolygonClick(ctx context.Context, screenPt geom.Point, category domain.AreaCategory) (shape Shape, created bool, err error) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	closed, ok, err := s.polyTool.Click(s.viewport.ScreenToWorld(screenPt), category)
	if err != nil {
		s.reportValidation(err)
		return Shape{}, false, err
	}
	if !ok {
		return Shape{}, false, nil
	}
	persisted, err := s.persistNewShape(ctx, closed)
	if err != nil {
		return Shape{}, false, err
	}
	return persisted, true, nil
}

// PolygonHover updates the origin-hover affordance from the pointer.
func (s *Service) PolygonHover(screenPt geom.Point) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.polyTool.Hover(s.viewport.ScreenToWorld(screenPt), s.viewport.Zoom)
}

// CompletePolygon closes the polygon explicitly and persists it. With too
// few vertices the gesture stays open and OnValidationError fires.
func (s *Service) CompletePolygon(ctx context.Context) (Shape, error) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	shape, err := s.polyTool.Complete()
	if err != nil {
		s.reportValidation(err)
		return Shape{}, err
	}
	return s.persistNewShape(ctx, shape)
}

// PolygonDoubleClick closes the polygon via double-click, same rules as
// CompletePolygon.
func (s *Service) PolygonDoubleClick(ctx context.Context) (Shape, error) {
	return s.CompletePolygon(ctx)
}

// RemoveLastPolygonVertex pops the most recent vertex.
func (s *Service) RemoveLastPolygonVertex() {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.polyTool.RemoveLastVertex()
}

// CancelPolygon discards the polygon gesture.
func (s *Service) CancelPolygon() {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.polyTool.Cancel()
}

// persistNewShape commits a tool-produced shape to the canonical store and
// the scene, taking a history snapshot. Called with the mutex held.
func (s *Service) persistNewShape(ctx context.Context, shape Shape) (Shape, error) {
	var created domain.AreaRecord
	err := s.observe(ctx, "create_area", "", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.AddArea(shape.Record())
			return err
		})
		return err
	})
	if err != nil {
		var violation domain.RuleViolationError
		if errors.As(err, &violation) {
			s.reportValidation(err)
		}
		return Shape{}, err
	}
	shape.ID = created.ID
	s.scene.Add(shape.Clone())
	s.history.Push(s.scene.Shapes(), s.sel.SelectedIDs(), "create "+string(shape.Category))
	s.events.shapeCreated(shape)
	return shape, nil
}

func (s *Service) reportValidation(err error) {
	var ve ValidationError
	if errors.As(err, &ve) {
		s.events.validationFailed(ve.Messages)
		return
	}
	s.events.validationFailed([]string{err.Error()})
}

// --- selection ---

// Click applies a selection click at a screen point; multi toggles
// membership instead of replacing.
func (s *Service) Click(screenPt geom.Point, multi bool) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	if s.sel.ClickAt(s.viewport.ScreenToWorld(screenPt), multi) {
		s.events.selectionChanged(s.sel.SelectedIDs())
	}
}

// BeginMarquee starts a marquee drag on empty canvas.
func (s *Service) BeginMarquee(screenPt geom.Point) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.sel.BeginMarquee(s.viewport.ScreenToWorld(screenPt))
}

// MoveMarquee updates the marquee corner.
func (s *Service) MoveMarquee(screenPt geom.Point) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.sel.MoveMarquee(s.viewport.ScreenToWorld(screenPt))
}

// EndMarquee selects the shapes intersecting the marquee.
func (s *Service) EndMarquee(multi bool) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	if s.sel.EndMarquee(multi) {
		s.events.selectionChanged(s.sel.SelectedIDs())
	}
}

// SelectedIDs returns the selected shape ids.
func (s *Service) SelectedIDs() []string {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.sel.SelectedIDs()
}

// --- drag gesture ---

// BeginDrag starts translating the selection from a screen point on an
// already selected shape, locking every dragged id against reconciliation.
func (s *Service) BeginDrag(screenPt geom.Point) bool {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	ids, ok := s.sel.BeginDrag(s.viewport.ScreenToWorld(screenPt))
	if !ok {
		return false
	}
	for _, id := range ids {
		s.acquireGestureLock(id)
	}
	return true
}

// MoveDrag translates the dragged shapes by the pointer movement.
func (s *Service) MoveDrag(screenPt geom.Point) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.sel.MoveDrag(s.viewport.ScreenToWorld(screenPt))
}

// EndDrag finishes the translation, committing each moved shape's rounded
// absolute geometry to the canonical store as one discrete update. Locks are
// released regardless of write outcome; a rejected write is logged and the
// local optimistic state is retained.
func (s *Service) EndDrag(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	ids, _, ok := s.sel.EndDrag()
	if !ok {
		return nil
	}
	defer func() {
		for _, id := range ids {
			s.releaseGestureLock(id)
		}
	}()
	var firstErr error
	for _, id := range ids {
		if err := s.commitTransformLocked(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.history.Push(s.scene.Shapes(), s.sel.SelectedIDs(), "move selection")
	return firstErr
}

// CancelDrag abandons the translation gesture, releasing locks without a
// store write. Shapes keep their dragged positions until the next
// reconciliation pass snaps them back to canonical.
func (s *Service) CancelDrag(ctx context.Context) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	ids, _, ok := s.sel.EndDrag()
	if !ok {
		return
	}
	for _, id := range ids {
		s.releaseGestureLock(id)
	}
	s.reconcileLocked(ctx)
}

// --- resize / rotate gesture ---

// BeginTransform locks a selected shape for a resize or rotate gesture.
func (s *Service) BeginTransform(id string) error {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	if _, ok := s.scene.Get(id); !ok {
		return domain.ErrNotFound{Entity: domain.EntityArea, ID: id}
	}
	if !s.acquireGestureLock(id) {
		return fmt.Errorf("shape %s already owned by another gesture", id)
	}
	return nil
}

// ResizeShape applies a relative scale factor to a shape under transform.
func (s *Service) ResizeShape(id string, factorX, factorY float64) error {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	if !s.locks.Locked(id) {
		return fmt.Errorf("shape %s not under an active transform", id)
	}
	shape, ok := s.scene.Get(id)
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityArea, ID: id}
	}
	shape.Resize(factorX, factorY)
	return nil
}

// RotateShape sets the rotation of a shape under transform. Categories with
// locked rotation reject non-zero angles.
func (s *Service) RotateShape(id string, angle float64) error {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	if !s.locks.Locked(id) {
		return fmt.Errorf("shape %s not under an active transform", id)
	}
	shape, ok := s.scene.Get(id)
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityArea, ID: id}
	}
	return shape.Rotate(angle)
}

// EndTransform commits the transform gesture and releases the lock.
func (s *Service) EndTransform(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	defer s.releaseGestureLock(id)
	err := s.commitTransformLocked(ctx, id)
	s.history.Push(s.scene.Shapes(), s.sel.SelectedIDs(), "transform shape")
	return err
}

func (s *Service) acquireGestureLock(id string) bool {
	if _, held := s.gestureReleases[id]; held {
		return false
	}
	release, ok := s.locks.Acquire(id)
	if !ok {
		return false
	}
	s.gestureReleases[id] = release
	return true
}

func (s *Service) releaseGestureLock(id string) {
	if release, ok := s.gestureReleases[id]; ok {
		release()
		delete(s.gestureReleases, id)
	}
}

// commitTransformLocked writes a shape's rounded final absolute geometry to
// the canonical store. A rejected write leaves the optimistic local state in
// place; rolling back could race the next gesture.
func (s *Service) commitTransformLocked(ctx context.Context, id string) error {
	shape, ok := s.scene.Get(id)
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityArea, ID: id}
	}
	committed := shape.CommitGeometry()
	err := s.observe(ctx, "commit_transform", id, func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.UpdateArea(id, func(rec *domain.AreaRecord) error {
				rec.Geometry = committed.Clone()
				return nil
			})
			return err
		})
		return err
	})
	if err != nil {
		conflict := ReconciliationConflict{AreaID: id, Err: err}
		s.log.Warn("canonical update rejected, keeping local state", "area_id", id, "error", err)
		return conflict
	}
	shape.Geometry = normalizedGeometry(committed)
	s.events.shapeUpdated(id, committed)
	return nil
}

// --- deletion ---

// DeleteSelected removes every selected shape from the store and scene.
func (s *Service) DeleteSelected(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	ids := s.sel.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}
	var firstErr error
	for _, id := range ids {
		if err := s.deleteAreaLocked(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.sel.SetSelected(nil)
	s.events.selectionChanged(nil)
	s.history.Push(s.scene.Shapes(), nil, "delete selection")
	return firstErr
}

// DeleteArea removes one shape from the store and scene.
func (s *Service) DeleteArea(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	if err := s.deleteAreaLocked(ctx, id); err != nil {
		return err
	}
	if s.sel.Drop(id) {
		s.events.selectionChanged(s.sel.SelectedIDs())
	}
	s.history.Push(s.scene.Shapes(), s.sel.SelectedIDs(), "delete area")
	return nil
}

func (s *Service) deleteAreaLocked(ctx context.Context, id string) error {
	err := s.observe(ctx, "delete_area", id, func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.RemoveArea(id)
		})
		return err
	})
	if err != nil {
		return err
	}
	s.scene.Remove(id)
	return nil
}

// --- history ---

// PushState records the current live state as an undo point.
func (s *Service) PushState(label string) {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	s.history.Push(s.scene.Shapes(), s.sel.SelectedIDs(), label)
}

// CanUndo reports whether an undo point exists.
func (s *Service) CanUndo() bool {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.history.CanUndo()
}

// CanRedo reports whether a redo point exists.
func (s *Service) CanRedo() bool {
	s.mu.Lock()
	defer s.unlockAndDrain(context.Background())
	return s.history.CanRedo()
}

// Undo restores the most recent undo point and pushes the restored state to
// the canonical store. No-op when the stack is empty.
func (s *Service) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	return s.observe(ctx, "undo", "", func(ctx context.Context) error {
		snap, ok := s.history.Undo()
		if !ok {
			return nil
		}
		s.restoreSnapshot(snap)
		return s.syncSceneToStore(ctx)
	})
}

// Redo restores the most recent redo point, mirror of Undo.
func (s *Service) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	return s.observe(ctx, "redo", "", func(ctx context.Context) error {
		snap, ok := s.history.Redo()
		if !ok {
			return nil
		}
		s.restoreSnapshot(snap)
		return s.syncSceneToStore(ctx)
	})
}

func (s *Service) restoreSnapshot(snap Snapshot) {
	done := s.history.Restoring()
	defer done()
	s.scene.Restore(snap.Shapes)
	if s.sel.SetSelected(snap.SelectedIDs) {
		s.events.selectionChanged(s.sel.SelectedIDs())
	}
}

// syncSceneToStore makes the canonical store match the restored scene.
func (s *Service) syncSceneToStore(ctx context.Context) error {
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		live := make(map[string]struct{}, s.scene.Len())
		for _, shape := range s.scene.Shapes() {
			live[shape.ID] = struct{}{}
		}
		for _, rec := range tx.Snapshot().ListAreas() {
			if _, ok := live[rec.ID]; !ok {
				if err := tx.RemoveArea(rec.ID); err != nil {
					return err
				}
			}
		}
		for _, shape := range s.scene.Shapes() {
			rec := shape.Record()
			if _, ok := tx.FindArea(shape.ID); ok {
				if _, err := tx.UpdateArea(shape.ID, func(existing *domain.AreaRecord) error {
					existing.Category = rec.Category
					existing.Geometry = rec.Geometry
					existing.Style = rec.Style
					existing.Metadata = rec.Metadata
					return nil
				}); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.AddArea(rec); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// --- reconciliation ---

// Reconcile runs one reconciliation pass against the canonical store.
func (s *Service) Reconcile(ctx context.Context) ReconcileStats {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	return s.reconcileLocked(ctx)
}

func (s *Service) reconcileLocked(ctx context.Context) ReconcileStats {
	var stats ReconcileStats
	_ = s.observe(ctx, "reconcile", "", func(context.Context) error {
		stats = s.rec.Reconcile(s.store.ListAreas())
		return nil
	})
	if stats.Removed > 0 {
		kept := make([]string, 0, len(s.sel.SelectedIDs()))
		for _, id := range s.sel.SelectedIDs() {
			if _, ok := s.scene.Get(id); ok {
				kept = append(kept, id)
			}
		}
		if s.sel.SetSelected(kept) {
			s.events.selectionChanged(kept)
		}
	}
	if stats.Mutations() > 0 {
		s.log.Debug("reconciliation pass applied changes",
			"normalized", stats.Normalized, "added", stats.Added, "removed", stats.Removed)
	}
	return stats
}

// --- document import/export ---

// ExportDocument returns the canonical store contents as a map document.
func (s *Service) ExportDocument(ctx context.Context) (domain.MapDocument, error) {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	var doc domain.MapDocument
	err := s.observe(ctx, "export_document", "", func(context.Context) error {
		doc = s.store.Document()
		return nil
	})
	return doc, err
}

// ImportDocument validates and loads a map document, replacing the canonical
// store contents and the scene. Area ids are preserved so round-tripping is
// lossless.
func (s *Service) ImportDocument(ctx context.Context, doc domain.MapDocument) error {
	s.mu.Lock()
	defer s.unlockAndDrain(ctx)
	return s.observe(ctx, "import_document", "", func(ctx context.Context) error {
		if err := domain.ValidateDocument(doc); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			view := tx.Snapshot()
			for _, rec := range view.ListAreas() {
				if err := tx.RemoveArea(rec.ID); err != nil {
					return err
				}
			}
			if err := tx.SetBackgroundImage(nil); err != nil {
				return err
			}
			for _, asset := range view.ListAssets() {
				if err := tx.RemoveAsset(asset.ID); err != nil {
					return err
				}
			}
			for _, asset := range doc.Assets {
				if _, err := tx.PutAsset(asset); err != nil {
					return err
				}
			}
			if err := tx.SetWorldDimensions(doc.WorldDimensions); err != nil {
				return err
			}
			if err := tx.SetMetadata(doc.Metadata); err != nil {
				return err
			}
			if err := tx.SetBackgroundImage(doc.BackgroundImage); err != nil {
				return err
			}
			for _, rec := range doc.InteractiveAreas {
				if _, err := tx.AddArea(rec); err != nil {
					return err
				}
			}
			for _, rec := range doc.ImpassableAreas {
				if _, err := tx.AddArea(rec); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.pendingReconcile.Store(false)
		s.rec.Reconcile(s.store.ListAreas())
		if s.sel.SetSelected(nil) {
			s.events.selectionChanged(nil)
		}
		s.history.Push(s.scene.Shapes(), nil, "import document")
		return nil
	})
}
