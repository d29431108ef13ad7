package memory

import (
	"fmt"

	"mapcore/pkg/domain"
)

func duplicateError(entity domain.EntityType, id string) error {
	return fmt.Errorf("%s %q already exists", entity, id)
}

func invalidWorldError(world domain.WorldDimensions) error {
	return fmt.Errorf("world dimensions must be non-negative, got %gx%g", world.Width, world.Height)
}
