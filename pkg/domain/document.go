package domain

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion is the current map document format version.
const DocumentVersion = 1

// MapDocument is the persisted/export data shape. Its field names are a
// format boundary consumed by external tooling and round-trip losslessly
// through Encode/Decode.
type MapDocument struct {
	WorldDimensions  WorldDimensions  `json:"worldDimensions"`
	BackgroundImage  *string          `json:"backgroundImage,omitempty"`
	InteractiveAreas []AreaRecord     `json:"interactiveAreas"`
	ImpassableAreas  []AreaRecord     `json:"impassableAreas"`
	Assets           []Asset          `json:"assets"`
	Metadata         DocumentMetadata `json:"metadata"`
	Version          int              `json:"version"`
}

// MalformedInputError reports a document that failed import validation.
// Malformed input is an external-collaborator concern: once a document passes
// this boundary, the core assumes all geometry in it is valid.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e MalformedInputError) Error() string {
	return fmt.Sprintf("malformed map document: %s: %s", e.Field, e.Reason)
}

// EncodeDocument serializes the document to indented JSON.
func EncodeDocument(doc MapDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeDocument parses and validates a map document. Every area that decodes
// successfully is structurally validated so the core never re-validates.
func DecodeDocument(data []byte) (MapDocument, error) {
	var doc MapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return MapDocument{}, MalformedInputError{Field: "document", Reason: err.Error()}
	}
	if err := ValidateDocument(doc); err != nil {
		return MapDocument{}, err
	}
	return doc, nil
}

// ValidateDocument checks the structural invariants of a decoded document.
func ValidateDocument(doc MapDocument) error {
	if doc.Version <= 0 {
		return MalformedInputError{Field: "version", Reason: fmt.Sprintf("must be positive, got %d", doc.Version)}
	}
	if doc.Version > DocumentVersion {
		return MalformedInputError{Field: "version", Reason: fmt.Sprintf("%d is newer than supported version %d", doc.Version, DocumentVersion)}
	}
	if !finite(doc.WorldDimensions.Width, doc.WorldDimensions.Height) {
		return MalformedInputError{Field: "worldDimensions", Reason: "non-finite dimensions"}
	}
	if doc.WorldDimensions.Width < 0 || doc.WorldDimensions.Height < 0 {
		return MalformedInputError{Field: "worldDimensions", Reason: "negative dimensions"}
	}
	assetIDs := make(map[string]struct{}, len(doc.Assets))
	for i, asset := range doc.Assets {
		if asset.ID == "" {
			return MalformedInputError{Field: fmt.Sprintf("assets[%d].id", i), Reason: "missing"}
		}
		assetIDs[asset.ID] = struct{}{}
	}
	if doc.BackgroundImage != nil {
		if _, ok := assetIDs[*doc.BackgroundImage]; !ok {
			return MalformedInputError{Field: "backgroundImage", Reason: fmt.Sprintf("references unknown asset %q", *doc.BackgroundImage)}
		}
	}
	validateAreas := func(field string, areas []AreaRecord, want AreaCategory) error {
		seen := make(map[string]struct{}, len(areas))
		for i, area := range areas {
			if area.ID == "" {
				return MalformedInputError{Field: fmt.Sprintf("%s[%d].id", field, i), Reason: "missing"}
			}
			if _, dup := seen[area.ID]; dup {
				return MalformedInputError{Field: fmt.Sprintf("%s[%d].id", field, i), Reason: fmt.Sprintf("duplicate id %q", area.ID)}
			}
			seen[area.ID] = struct{}{}
			if area.Category != want {
				return MalformedInputError{Field: fmt.Sprintf("%s[%d].category", field, i), Reason: fmt.Sprintf("expected %q, got %q", want, area.Category)}
			}
			if err := area.Geometry.Validate(); err != nil {
				return MalformedInputError{Field: fmt.Sprintf("%s[%d].geometry", field, i), Reason: err.Error()}
			}
		}
		return nil
	}
	if err := validateAreas("interactiveAreas", doc.InteractiveAreas, CategoryInteractive); err != nil {
		return err
	}
	if err := validateAreas("impassableAreas", doc.ImpassableAreas, CategoryCollision); err != nil {
		return err
	}
	return nil
}

// CloneDocument returns a deep copy of the document.
func CloneDocument(doc MapDocument) MapDocument {
	cp := doc
	if doc.BackgroundImage != nil {
		id := *doc.BackgroundImage
		cp.BackgroundImage = &id
	}
	cp.InteractiveAreas = cloneAreas(doc.InteractiveAreas)
	cp.ImpassableAreas = cloneAreas(doc.ImpassableAreas)
	cp.Assets = make([]Asset, len(doc.Assets))
	for i, a := range doc.Assets {
		cp.Assets[i] = CloneAsset(a)
	}
	cp.Metadata.Tags = append([]string(nil), doc.Metadata.Tags...)
	return cp
}

func cloneAreas(areas []AreaRecord) []AreaRecord {
	out := make([]AreaRecord, len(areas))
	for i, a := range areas {
		out[i] = CloneArea(a)
	}
	return out
}
