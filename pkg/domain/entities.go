// Package domain defines the persistent map entities, value types, and rule
// evaluation primitives shared by the editor core and the canonical store.
package domain

import (
	"time"
)

// EntityType identifies the type of record stored in the canonical map store.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityArea identifies an interactive or collision area record.
	EntityArea EntityType = "area"
	// EntityAsset identifies an uploaded asset reference.
	EntityAsset EntityType = "asset"
	// EntityWorld identifies the world dimensions and document metadata record.
	EntityWorld EntityType = "world"
)

// AreaCategory distinguishes the two kinds of editable map areas.
type AreaCategory string

// Area categories determine default styling and which transforms are allowed.
const (
	// CategoryInteractive marks walkable areas that trigger behavior.
	CategoryInteractive AreaCategory = "interactive"
	// CategoryCollision marks impassable areas; their polygons never rotate.
	CategoryCollision AreaCategory = "collision"
)

// Valid reports whether the category is one of the supported values.
func (c AreaCategory) Valid() bool {
	return c == CategoryInteractive || c == CategoryCollision
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all persistent records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Style holds the presentation attributes carried verbatim with each area.
type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Opacity     float64 `json:"opacity"`
}

// Metadata carries free-form descriptive fields attached to an area.
type Metadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// AreaRecord is the canonical persisted representation of one editable area.
type AreaRecord struct {
	Base
	Category AreaCategory `json:"category"`
	Geometry Geometry     `json:"geometry"`
	Style    Style        `json:"style"`
	Metadata Metadata     `json:"metadata"`
}

// Asset references uploaded content (background image, placed images) by key.
// The store treats asset bytes as opaque; decoding is a caller concern.
type Asset struct {
	Base
	Name        string `json:"name"`
	BlobKey     string `json:"blob_key"`
	ContentType string `json:"content_type,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// WorldDimensions describes the editable world extent in world units.
type WorldDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DocumentMetadata names and describes the map document itself.
type DocumentMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// CloneArea returns a deep copy of the record; slices are never shared.
func CloneArea(a AreaRecord) AreaRecord {
	cp := a
	cp.Geometry = a.Geometry.Clone()
	cp.Metadata.Tags = append([]string(nil), a.Metadata.Tags...)
	return cp
}

// CloneAsset returns a copy of the asset record.
func CloneAsset(a Asset) Asset { return a }

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured for subscribers.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
