package domain

import (
	"context"
	"fmt"
)

// Transaction exposes the canonical-store mutations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	AddArea(AreaRecord) (AreaRecord, error)
	UpdateArea(id string, mutator func(*AreaRecord) error) (AreaRecord, error)
	RemoveArea(id string) error
	MarkDirty()
	SetWorldDimensions(WorldDimensions) error
	SetBackgroundImage(assetID *string) error
	SetMetadata(DocumentMetadata) error
	PutAsset(Asset) (Asset, error)
	RemoveAsset(id string) error
	FindArea(id string) (AreaRecord, bool)
	Snapshot() TransactionView
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListAreas() []AreaRecord
	FindArea(id string) (AreaRecord, bool)
	ListAssets() []Asset
	World() WorldDimensions
}

// StoreEvent notifies subscribers of a committed mutation set. Dirty is set
// when the transaction only marked the document dirty without structural
// changes.
type StoreEvent struct {
	Changes []Change
	Dirty   bool
}

// PersistentStore is the canonical, externally-owned collection of area
// records the editor reconciles against. Implementations are goroutine-safe;
// subscriber callbacks fire after commit, outside the store lock.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetArea(id string) (AreaRecord, bool)
	ListAreas() []AreaRecord
	ListAssets() []Asset
	Document() MapDocument
	Dirty() bool
	Subscribe(fn func(StoreEvent)) (unsubscribe func())
}

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
