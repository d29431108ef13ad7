package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func rectArea(id string, r geom.Rect) domain.AreaRecord {
	return domain.AreaRecord{
		Base:     domain.Base{ID: id},
		Category: domain.CategoryInteractive,
		Geometry: domain.NewRectangle(r),
	}
}

func TestStoreAreaCRUD(t *testing.T) {
	store := NewStore(nil)
	store.SetNowFunc(fixedClock())
	ctx := context.Background()

	var created domain.AreaRecord
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.AddArea(rectArea("", geom.Rect{X: 1, Y: 2, Width: 30, Height: 40}))
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", created.Base)
	}

	got, ok := store.GetArea(created.ID)
	if !ok {
		t.Fatalf("created area not found")
	}
	if got.Geometry.Rectangle.Width != 30 {
		t.Fatalf("width = %g", got.Geometry.Rectangle.Width)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateArea(created.ID, func(a *domain.AreaRecord) error {
			a.Geometry.Rectangle.X = 100
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetArea(created.ID)
	if got.Geometry.Rectangle.X != 100 {
		t.Fatalf("update not applied, x = %g", got.Geometry.Rectangle.X)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.RemoveArea(created.ID)
	}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := store.GetArea(created.ID); ok {
		t.Fatalf("area still present after remove")
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.RemoveArea("missing")
	})
	var notFound domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListAreasPreservesOrder(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	ids := []string{"c", "a", "b"}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, id := range ids {
			if _, err := tx.AddArea(rectArea(id, geom.Rect{Width: 1, Height: 1})); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	listed := store.ListAreas()
	if len(listed) != 3 {
		t.Fatalf("len = %d", len(listed))
	}
	for i, id := range ids {
		if listed[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s", i, listed[i].ID, id)
		}
	}
}

func TestStoreBlocksInvalidGeometry(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	bad := domain.AreaRecord{
		Base:     domain.Base{ID: "bad"},
		Category: domain.CategoryCollision,
		Geometry: domain.Geometry{Kind: domain.KindPolygon, Polygon: &domain.PolygonGeometry{
			Points: []float64{0, 0, 1, 1}, ScaleX: 1, ScaleY: 1,
		}},
	}
	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddArea(bad)
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if _, ok := store.GetArea("bad"); ok {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestStoreRollbackOnError(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	boom := errors.New("boom")
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.AddArea(rectArea("x", geom.Rect{Width: 1, Height: 1})); err != nil {
			return err
		}
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := store.GetArea("x"); ok {
		t.Fatalf("failed transaction must not commit")
	}
}

func TestStoreSubscribeAndUnsubscribe(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var events []domain.StoreEvent
	unsubscribe := store.Subscribe(func(ev domain.StoreEvent) {
		events = append(events, ev)
	})

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddArea(rectArea("a1", geom.Rect{Width: 5, Height: 5}))
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(events) != 1 || len(events[0].Changes) != 1 {
		t.Fatalf("expected one event with one change, got %+v", events)
	}
	if events[0].Changes[0].Action != domain.ActionCreate {
		t.Fatalf("action = %s", events[0].Changes[0].Action)
	}

	// Read-only transactions stay silent.
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, _ = tx.FindArea("a1")
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("read-only transaction fired an event")
	}

	unsubscribe()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.RemoveArea("a1")
	}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("unsubscribed callback still fired")
	}
}

func TestStoreMarkDirty(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var dirtyEvents int
	store.Subscribe(func(ev domain.StoreEvent) {
		if ev.Dirty {
			dirtyEvents++
		}
	})
	if store.Dirty() {
		t.Fatalf("new store must be clean")
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tx.MarkDirty()
		return nil
	}); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}
	if !store.Dirty() {
		t.Fatalf("store not dirty after MarkDirty")
	}
	if dirtyEvents != 1 {
		t.Fatalf("dirty events = %d", dirtyEvents)
	}
	store.ClearDirty()
	if store.Dirty() {
		t.Fatalf("ClearDirty did not reset the flag")
	}
}

func TestStoreDocumentSplitsCategories(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.AddArea(rectArea("i1", geom.Rect{Width: 1, Height: 1})); err != nil {
			return err
		}
		wall := domain.AreaRecord{
			Base:     domain.Base{ID: "c1"},
			Category: domain.CategoryCollision,
			Geometry: domain.NewPolygon([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}),
		}
		if _, err := tx.AddArea(wall); err != nil {
			return err
		}
		if err := tx.SetWorldDimensions(domain.WorldDimensions{Width: 800, Height: 600}); err != nil {
			return err
		}
		return tx.SetMetadata(domain.DocumentMetadata{Name: "test map"})
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	doc := store.Document()
	if len(doc.InteractiveAreas) != 1 || doc.InteractiveAreas[0].ID != "i1" {
		t.Fatalf("interactive areas = %+v", doc.InteractiveAreas)
	}
	if len(doc.ImpassableAreas) != 1 || doc.ImpassableAreas[0].ID != "c1" {
		t.Fatalf("impassable areas = %+v", doc.ImpassableAreas)
	}
	if doc.WorldDimensions.Width != 800 || doc.Metadata.Name != "test map" {
		t.Fatalf("document fields not carried: %+v", doc)
	}
	if doc.Version != domain.DocumentVersion {
		t.Fatalf("version = %d", doc.Version)
	}
}

func TestStoreAssetsAndBackground(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var asset domain.Asset
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		asset, err = tx.PutAsset(domain.Asset{Name: "bg.png", BlobKey: "assets/bg.png"})
		if err != nil {
			return err
		}
		return tx.SetBackgroundImage(&asset.ID)
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	doc := store.Document()
	if doc.BackgroundImage == nil || *doc.BackgroundImage != asset.ID {
		t.Fatalf("background = %v", doc.BackgroundImage)
	}

	missing := "missing"
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.SetBackgroundImage(&missing)
	}); err == nil {
		t.Fatalf("expected error for unknown background asset")
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.RemoveAsset(asset.ID)
	}); err != nil {
		t.Fatalf("remove asset: %v", err)
	}
	if doc := store.Document(); doc.BackgroundImage != nil {
		t.Fatalf("removing the background asset must clear the reference")
	}
}

func TestExportImportStateRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.AddArea(rectArea("a", geom.Rect{X: 1, Y: 1, Width: 10, Height: 10})); err != nil {
			return err
		}
		return tx.SetWorldDimensions(domain.WorldDimensions{Width: 100, Height: 100})
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snap := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snap)

	if len(restored.ListAreas()) != 1 {
		t.Fatalf("areas not restored")
	}
	if restored.Document().WorldDimensions.Width != 100 {
		t.Fatalf("world not restored")
	}
	if restored.Dirty() {
		t.Fatalf("imported state must start clean")
	}
}

func TestViewSeesConsistentSnapshot(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddArea(rectArea("a", geom.Rect{Width: 1, Height: 1}))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListAreas()) != 1 {
			t.Fatalf("view missing area")
		}
		if _, ok := v.FindArea("a"); !ok {
			t.Fatalf("FindArea failed in view")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestStoreListAssetsSortedByID(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, id := range []string{"b", "c", "a"} {
			if _, err := tx.PutAsset(domain.Asset{Base: domain.Base{ID: id}, Name: id + ".png", BlobKey: "assets/" + id}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	assets := store.ListAssets()
	if len(assets) != 3 || assets[0].ID != "a" || assets[1].ID != "b" || assets[2].ID != "c" {
		t.Fatalf("expected ascending id order, got %+v", assets)
	}
}

func TestStoreNotifiesInRegistrationOrder(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var order []int
	for i := 0; i < 3; i++ {
		store.Subscribe(func(domain.StoreEvent) { order = append(order, i) })
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddArea(rectArea("a", geom.Rect{Width: 1, Height: 1}))
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("subscribers fired out of registration order: %v", order)
	}
}
