// Package memory provides the in-memory implementation of the canonical map
// store used for tests, ephemeral sessions, and as the transactional engine
// underneath the durable drivers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mapcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	areas      map[string]domain.AreaRecord
	order      []string // area ids in z-order; ListAreas preserves it
	assets     map[string]domain.Asset
	world      domain.WorldDimensions
	background *string
	meta       domain.DocumentMetadata
	dirty      bool
}

func newMemoryState() memoryState {
	return memoryState{
		areas:  make(map[string]domain.AreaRecord),
		assets: make(map[string]domain.Asset),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.areas {
		cloned.areas[k] = domain.CloneArea(v)
	}
	for k, v := range s.assets {
		cloned.assets[k] = domain.CloneAsset(v)
	}
	cloned.order = append([]string(nil), s.order...)
	cloned.world = s.world
	if s.background != nil {
		id := *s.background
		cloned.background = &id
	}
	cloned.meta = s.meta
	cloned.meta.Tags = append([]string(nil), s.meta.Tags...)
	cloned.dirty = s.dirty
	return cloned
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// Snapshot is the serializable form of the full store state consumed by the
// durable drivers.
type Snapshot struct {
	Areas      []domain.AreaRecord     `json:"areas"`
	Assets     []domain.Asset          `json:"assets"`
	World      domain.WorldDimensions  `json:"world"`
	Background *string                 `json:"background,omitempty"`
	Metadata   domain.DocumentMetadata `json:"metadata"`
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snap := Snapshot{
		Areas:    make([]domain.AreaRecord, 0, len(state.order)),
		Assets:   make([]domain.Asset, 0, len(state.assets)),
		World:    state.world,
		Metadata: state.meta,
	}
	snap.Metadata.Tags = append([]string(nil), state.meta.Tags...)
	for _, id := range state.order {
		if area, ok := state.areas[id]; ok {
			snap.Areas = append(snap.Areas, domain.CloneArea(area))
		}
	}
	for _, id := range sortedAssetIDs(state.assets) {
		snap.Assets = append(snap.Assets, domain.CloneAsset(state.assets[id]))
	}
	if state.background != nil {
		id := *state.background
		snap.Background = &id
	}
	return snap
}

func sortedAssetIDs(assets map[string]domain.Asset) []string {
	ids := make([]string, 0, len(assets))
	for id := range assets {
		ids = append(ids, id)
	}
	// Deterministic order keeps snapshots stable across persists.
	sort.Strings(ids)
	return ids
}

func memoryStateFromSnapshot(snap Snapshot) memoryState {
	state := newMemoryState()
	for _, area := range snap.Areas {
		state.areas[area.ID] = domain.CloneArea(area)
		state.order = append(state.order, area.ID)
	}
	for _, asset := range snap.Assets {
		state.assets[asset.ID] = domain.CloneAsset(asset)
	}
	state.world = snap.World
	if snap.Background != nil {
		id := *snap.Background
		state.background = &id
	}
	state.meta = snap.Metadata
	state.meta.Tags = append([]string(nil), snap.Metadata.Tags...)
	return state
}

// Store is a goroutine-safe transactional canonical store held entirely in
// process memory.
type Store struct {
	mu          sync.RWMutex
	state       memoryState
	engine      *domain.RulesEngine
	nowFn       func() time.Time
	subMu       sync.Mutex
	subscribers map[int]func(domain.StoreEvent)
	nextSubID   int
}

// NewStore constructs an in-memory store backed by the provided rules engine.
// A nil engine falls back to the default area rules.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.DefaultRulesEngine()
	}
	return &Store{
		state:       newMemoryState(),
		engine:      engine,
		nowFn:       func() time.Time { return time.Now().UTC() },
		subscribers: make(map[int]func(domain.StoreEvent)),
	}
}

func newID() string { return uuid.NewString() }

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot. No events
// fire; importing is a bootstrap operation, not an edit.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snap)
}

// RulesEngine exposes the configured engine for integration points.
func (s *Store) RulesEngine() *domain.RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the store clock; tests use it for stable timestamps.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// Subscribe registers a callback for committed mutations and returns its
// unsubscribe function. Callbacks run synchronously after commit, outside the
// store lock, in registration order.
func (s *Store) Subscribe(fn func(domain.StoreEvent)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(event domain.StoreEvent) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.StoreEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subscribers[id])
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

type transaction struct {
	store      *Store
	state      memoryState
	changes    []domain.Change
	now        time.Time
	markedOnly bool
}

type transactionView struct {
	state *memoryState
}

// RunInTransaction executes fn within a transactional copy of the store
// state. Rules evaluate against the candidate state; blocking violations
// abort the commit with a RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			s.mu.Unlock()
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			s.mu.Unlock()
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if len(tx.changes) > 0 || tx.markedOnly {
		tx.state.dirty = true
	}
	s.state = tx.state
	s.mu.Unlock()

	if len(tx.changes) > 0 || tx.markedOnly {
		s.notify(domain.StoreEvent{Changes: tx.changes, Dirty: tx.markedOnly && len(tx.changes) == 0})
	}
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(transactionView{state: &snapshot})
}

// ClearDirty resets the dirty flag; durable drivers call it after a
// successful snapshot.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.dirty = false
}

// Dirty reports whether uncommitted-to-disk edits exist.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.dirty
}

// GetArea retrieves an area by id from committed state.
func (s *Store) GetArea(id string) (domain.AreaRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	area, ok := s.state.areas[id]
	if !ok {
		return domain.AreaRecord{}, false
	}
	return domain.CloneArea(area), true
}

// ListAreas returns all areas from committed state in z-order.
func (s *Store) ListAreas() []domain.AreaRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AreaRecord, 0, len(s.state.order))
	for _, id := range s.state.order {
		if area, ok := s.state.areas[id]; ok {
			out = append(out, domain.CloneArea(area))
		}
	}
	return out
}

// ListAssets returns all asset records in deterministic order.
func (s *Store) ListAssets() []domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Asset, 0, len(s.state.assets))
	for _, id := range sortedAssetIDs(s.state.assets) {
		out = append(out, domain.CloneAsset(s.state.assets[id]))
	}
	return out
}

// Document assembles the export data shape from committed state, splitting
// areas by category while preserving z-order within each list.
func (s *Store) Document() domain.MapDocument {
	snap := s.ExportState()
	doc := domain.MapDocument{
		WorldDimensions:  snap.World,
		BackgroundImage:  snap.Background,
		InteractiveAreas: []domain.AreaRecord{},
		ImpassableAreas:  []domain.AreaRecord{},
		Assets:           snap.Assets,
		Metadata:         snap.Metadata,
		Version:          domain.DocumentVersion,
	}
	if doc.Assets == nil {
		doc.Assets = []domain.Asset{}
	}
	for _, area := range snap.Areas {
		switch area.Category {
		case domain.CategoryCollision:
			doc.ImpassableAreas = append(doc.ImpassableAreas, area)
		default:
			doc.InteractiveAreas = append(doc.InteractiveAreas, area)
		}
	}
	return doc
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// AddArea stores a new area within the transaction.
func (tx *transaction) AddArea(area domain.AreaRecord) (domain.AreaRecord, error) {
	if area.ID == "" {
		area.ID = newID()
	}
	if _, exists := tx.state.areas[area.ID]; exists {
		return domain.AreaRecord{}, duplicateError(domain.EntityArea, area.ID)
	}
	area.CreatedAt = tx.now
	area.UpdatedAt = tx.now
	tx.state.areas[area.ID] = domain.CloneArea(area)
	tx.state.order = append(tx.state.order, area.ID)
	tx.recordChange(domain.Change{Entity: domain.EntityArea, Action: domain.ActionCreate, After: domain.CloneArea(area)})
	return domain.CloneArea(area), nil
}

// UpdateArea mutates an area using the provided mutator function.
func (tx *transaction) UpdateArea(id string, mutator func(*domain.AreaRecord) error) (domain.AreaRecord, error) {
	current, ok := tx.state.areas[id]
	if !ok {
		return domain.AreaRecord{}, domain.ErrNotFound{Entity: domain.EntityArea, ID: id}
	}
	before := domain.CloneArea(current)
	if err := mutator(&current); err != nil {
		return domain.AreaRecord{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.areas[id] = domain.CloneArea(current)
	tx.recordChange(domain.Change{Entity: domain.EntityArea, Action: domain.ActionUpdate, Before: before, After: domain.CloneArea(current)})
	return domain.CloneArea(current), nil
}

// RemoveArea deletes an area from the transaction state.
func (tx *transaction) RemoveArea(id string) error {
	current, ok := tx.state.areas[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityArea, ID: id}
	}
	delete(tx.state.areas, id)
	tx.state.order = removeID(tx.state.order, id)
	tx.recordChange(domain.Change{Entity: domain.EntityArea, Action: domain.ActionDelete, Before: domain.CloneArea(current)})
	return nil
}

// MarkDirty flags the document as needing a durable save without recording a
// structural change.
func (tx *transaction) MarkDirty() {
	tx.markedOnly = true
}

// SetWorldDimensions replaces the world extent.
func (tx *transaction) SetWorldDimensions(world domain.WorldDimensions) error {
	if world.Width < 0 || world.Height < 0 {
		return invalidWorldError(world)
	}
	before := tx.state.world
	tx.state.world = world
	tx.recordChange(domain.Change{Entity: domain.EntityWorld, Action: domain.ActionUpdate, Before: before, After: world})
	return nil
}

// SetBackgroundImage points the document background at an asset, or clears it.
func (tx *transaction) SetBackgroundImage(assetID *string) error {
	if assetID != nil {
		if _, ok := tx.state.assets[*assetID]; !ok {
			return domain.ErrNotFound{Entity: domain.EntityAsset, ID: *assetID}
		}
	}
	tx.state.background = assetID
	tx.recordChange(domain.Change{Entity: domain.EntityWorld, Action: domain.ActionUpdate})
	return nil
}

// SetMetadata replaces the document metadata.
func (tx *transaction) SetMetadata(meta domain.DocumentMetadata) error {
	before := tx.state.meta
	meta.Tags = append([]string(nil), meta.Tags...)
	tx.state.meta = meta
	tx.recordChange(domain.Change{Entity: domain.EntityWorld, Action: domain.ActionUpdate, Before: before, After: meta})
	return nil
}

// PutAsset creates or replaces an asset record.
func (tx *transaction) PutAsset(asset domain.Asset) (domain.Asset, error) {
	if asset.ID == "" {
		asset.ID = newID()
	}
	if existing, ok := tx.state.assets[asset.ID]; ok {
		asset.CreatedAt = existing.CreatedAt
	} else {
		asset.CreatedAt = tx.now
	}
	asset.UpdatedAt = tx.now
	tx.state.assets[asset.ID] = domain.CloneAsset(asset)
	tx.recordChange(domain.Change{Entity: domain.EntityAsset, Action: domain.ActionUpdate, After: domain.CloneAsset(asset)})
	return domain.CloneAsset(asset), nil
}

// RemoveAsset deletes an asset; a background reference to it is cleared.
func (tx *transaction) RemoveAsset(id string) error {
	current, ok := tx.state.assets[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityAsset, ID: id}
	}
	delete(tx.state.assets, id)
	if tx.state.background != nil && *tx.state.background == id {
		tx.state.background = nil
	}
	tx.recordChange(domain.Change{Entity: domain.EntityAsset, Action: domain.ActionDelete, Before: domain.CloneAsset(current)})
	return nil
}

// FindArea retrieves an area from the transaction state.
func (tx *transaction) FindArea(id string) (domain.AreaRecord, bool) {
	area, ok := tx.state.areas[id]
	if !ok {
		return domain.AreaRecord{}, false
	}
	return domain.CloneArea(area), true
}

// Snapshot exposes the transactional state read-only.
func (tx *transaction) Snapshot() domain.TransactionView {
	return transactionView{state: &tx.state}
}

// ListAreas returns all areas within the transaction snapshot in z-order.
func (v transactionView) ListAreas() []domain.AreaRecord {
	out := make([]domain.AreaRecord, 0, len(v.state.order))
	for _, id := range v.state.order {
		if area, ok := v.state.areas[id]; ok {
			out = append(out, domain.CloneArea(area))
		}
	}
	return out
}

// FindArea retrieves an area by id from the snapshot.
func (v transactionView) FindArea(id string) (domain.AreaRecord, bool) {
	area, ok := v.state.areas[id]
	if !ok {
		return domain.AreaRecord{}, false
	}
	return domain.CloneArea(area), true
}

// ListAssets returns all assets within the snapshot.
func (v transactionView) ListAssets() []domain.Asset {
	out := make([]domain.Asset, 0, len(v.state.assets))
	for _, id := range sortedAssetIDs(v.state.assets) {
		out = append(out, domain.CloneAsset(v.state.assets[id]))
	}
	return out
}

// World returns the snapshot's world dimensions.
func (v transactionView) World() domain.WorldDimensions {
	return v.state.world
}
