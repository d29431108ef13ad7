package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"mapcore/pkg/domain"
	"mapcore/pkg/geom"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		area := domain.AreaRecord{
			Base:     domain.Base{ID: "a1"},
			Category: domain.CategoryInteractive,
			Geometry: domain.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 90, Height: 70}),
			Style:    domain.Style{Fill: "#00ff00", Opacity: 0.5},
		}
		if _, err := tx.AddArea(area); err != nil {
			return err
		}
		if err := tx.SetWorldDimensions(domain.WorldDimensions{Width: 1000, Height: 800}); err != nil {
			return err
		}
		return tx.SetMetadata(domain.DocumentMetadata{Name: "persisted"})
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if store.Dirty() {
		t.Fatalf("dirty flag must clear after a successful snapshot")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	areas := reopened.ListAreas()
	if len(areas) != 1 || areas[0].ID != "a1" {
		t.Fatalf("areas after reopen = %+v", areas)
	}
	if areas[0].Geometry.Rectangle.Width != 90 {
		t.Fatalf("geometry not restored: %+v", areas[0].Geometry.Rectangle)
	}
	doc := reopened.Document()
	if doc.WorldDimensions.Width != 1000 || doc.Metadata.Name != "persisted" {
		t.Fatalf("document not restored: %+v", doc)
	}
}

func TestStoreBlockedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	bad := domain.AreaRecord{
		Base:     domain.Base{ID: "bad"},
		Category: domain.CategoryCollision,
		Geometry: domain.Geometry{Kind: domain.KindPolygon, Polygon: &domain.PolygonGeometry{
			Points: []float64{0, 0, 1, 1}, ScaleX: 1, ScaleY: 1,
		}},
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AddArea(bad)
		return err
	}); err == nil {
		t.Fatalf("expected rule violation")
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("blocked transaction wrote %d buckets", count)
	}
}

func TestStoreDefaultsPath(t *testing.T) {
	dir := t.TempDir()
	cwd := filepath.Join(dir, "map.db")
	store, err := NewStore(cwd, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != cwd {
		t.Fatalf("path = %s", store.Path())
	}
}
