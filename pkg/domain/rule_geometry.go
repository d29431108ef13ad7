package domain

import (
	"context"
	"fmt"
)

// GeometryValidRule blocks commits that would persist structurally invalid
// geometry: unknown kinds, non-finite coordinates, negative dimensions, or
// polygons with fewer than three vertices.
type GeometryValidRule struct{}

// Name implements Rule.
func (GeometryValidRule) Name() string { return "geometry_valid" }

// Evaluate implements Rule. Only created or updated areas are checked; state
// already committed is assumed valid.
func (GeometryValidRule) Evaluate(_ context.Context, _ RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityArea || change.Action == ActionDelete {
			continue
		}
		area, ok := change.After.(AreaRecord)
		if !ok {
			continue
		}
		if !area.Category.Valid() {
			res.Violations = append(res.Violations, Violation{
				Rule:     "geometry_valid",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("area %s has unknown category %q", area.ID, area.Category),
				Entity:   EntityArea,
				EntityID: area.ID,
			})
			continue
		}
		if err := area.Geometry.Validate(); err != nil {
			res.Violations = append(res.Violations, Violation{
				Rule:     "geometry_valid",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("area %s: %v", area.ID, err),
				Entity:   EntityArea,
				EntityID: area.ID,
			})
		}
	}
	return res, nil
}
