package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"mapcore/pkg/geom"
)

func sampleDocument() MapDocument {
	bg := "asset-1"
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return MapDocument{
		WorldDimensions: WorldDimensions{Width: 1920, Height: 1080},
		BackgroundImage: &bg,
		InteractiveAreas: []AreaRecord{{
			Base:     Base{ID: "area-1", CreatedAt: created, UpdatedAt: created},
			Category: CategoryInteractive,
			Geometry: NewRectangle(geom.Rect{X: 10, Y: 10, Width: 90, Height: 70}),
			Style:    Style{Fill: "#00ff00", Stroke: "#003300", StrokeWidth: 2, Opacity: 0.5},
			Metadata: Metadata{Name: "meeting room", Tags: []string{"room"}},
		}},
		ImpassableAreas: []AreaRecord{{
			Base:     Base{ID: "area-2", CreatedAt: created, UpdatedAt: created},
			Category: CategoryCollision,
			Geometry: NewPolygon([]geom.Point{geom.Pt(0, 0), geom.Pt(50, 0), geom.Pt(50, 50)}),
			Style:    Style{Fill: "#ff0000", Stroke: "#330000", StrokeWidth: 1, Opacity: 0.4},
		}},
		Assets: []Asset{{
			Base:        Base{ID: "asset-1", CreatedAt: created, UpdatedAt: created},
			Name:        "floor.png",
			BlobKey:     "assets/floor.png",
			ContentType: "image/png",
			Width:       1920,
			Height:      1080,
		}},
		Metadata: DocumentMetadata{Name: "office", Description: "ground floor", Tags: []string{"office", "v2"}},
		Version:  DocumentVersion,
	}
}

func TestDocumentRoundTripLossless(t *testing.T) {
	doc := sampleDocument()
	data, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(doc, decoded) {
		t.Fatalf("round trip not lossless:\n got %+v\nwant %+v", decoded, doc)
	}
}

func TestDecodeDocumentRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MapDocument)
	}{
		{"zero version", func(d *MapDocument) { d.Version = 0 }},
		{"future version", func(d *MapDocument) { d.Version = DocumentVersion + 1 }},
		{"negative world", func(d *MapDocument) { d.WorldDimensions.Width = -1 }},
		{"missing area id", func(d *MapDocument) { d.InteractiveAreas[0].ID = "" }},
		{"category mismatch", func(d *MapDocument) { d.InteractiveAreas[0].Category = CategoryCollision }},
		{"dangling background", func(d *MapDocument) { bad := "nope"; d.BackgroundImage = &bad }},
		{"invalid geometry", func(d *MapDocument) { d.ImpassableAreas[0].Geometry.Polygon.Points = []float64{0, 0, 1, 1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := CloneDocument(sampleDocument())
			tc.mutate(&doc)
			data, err := EncodeDocument(doc)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			_, err = DecodeDocument(data)
			var malformed MalformedInputError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedInputError, got %v", err)
			}
		})
	}
}

func TestDecodeDocumentRejectsNonFiniteCoordinates(t *testing.T) {
	// JSON cannot encode NaN, so a hand-built payload stands in for a
	// malformed external producer.
	payload := []byte(`{"worldDimensions":{"width":100,"height":100},"interactiveAreas":[],"impassableAreas":[],"assets":[],"metadata":{"name":"","description":"","tags":[]},"version":1}`)
	if _, err := DecodeDocument(payload); err != nil {
		t.Fatalf("minimal valid document rejected: %v", err)
	}
	bad := []byte(`{"worldDimensions":{"width":1e999,"height":100},"version":1}`)
	if _, err := DecodeDocument(bad); err == nil {
		t.Fatalf("expected decode failure for out-of-range number")
	}
}

func TestCloneDocumentIsDeep(t *testing.T) {
	doc := sampleDocument()
	cp := CloneDocument(doc)
	cp.InteractiveAreas[0].Metadata.Tags[0] = "changed"
	cp.ImpassableAreas[0].Geometry.Polygon.Points[0] = 123
	*cp.BackgroundImage = "changed"
	if doc.InteractiveAreas[0].Metadata.Tags[0] != "room" {
		t.Fatalf("tags aliased")
	}
	if doc.ImpassableAreas[0].Geometry.Polygon.Points[0] == 123 {
		t.Fatalf("polygon points aliased")
	}
	if *doc.BackgroundImage != "asset-1" {
		t.Fatalf("background pointer aliased")
	}
}
