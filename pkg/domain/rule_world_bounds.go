package domain

import (
	"context"
	"fmt"
)

// WorldBoundsRule warns when an area's bounding box extends past the world
// dimensions. Out-of-bounds areas are legal (the world can be resized later),
// so the severity is warn rather than block.
type WorldBoundsRule struct{}

// Name implements Rule.
func (WorldBoundsRule) Name() string { return "world_bounds" }

// Evaluate implements Rule.
func (WorldBoundsRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	world := view.World()
	if world.Width <= 0 || world.Height <= 0 {
		return Result{}, nil
	}
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityArea || change.Action == ActionDelete {
			continue
		}
		area, ok := change.After.(AreaRecord)
		if !ok {
			continue
		}
		bounds := area.Geometry.Bounds()
		if bounds.X < 0 || bounds.Y < 0 || bounds.Max().X > world.Width || bounds.Max().Y > world.Height {
			res.Violations = append(res.Violations, Violation{
				Rule:     "world_bounds",
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("area %s extends outside the %gx%g world", area.ID, world.Width, world.Height),
				Entity:   EntityArea,
				EntityID: area.ID,
			})
		}
	}
	return res, nil
}
