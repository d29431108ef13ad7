package editor

import (
	"mapcore/pkg/domain"
)

// Events holds the callback sinks wired by the orchestration layer. Nil
// callbacks are skipped. Callbacks run on the event loop; they must not call
// back into the service.
type Events struct {
	OnShapeCreate     func(Shape)
	OnValidationError func(messages []string)
	OnSelectionChange func(selectedIDs []string)
	OnShapeUpdate     func(id string, geometry domain.Geometry)
	OnViewportChange  func(Viewport)
}

func (e Events) shapeCreated(s Shape) {
	if e.OnShapeCreate != nil {
		e.OnShapeCreate(s)
	}
}

func (e Events) validationFailed(messages []string) {
	if e.OnValidationError != nil {
		e.OnValidationError(messages)
	}
}

func (e Events) selectionChanged(ids []string) {
	if e.OnSelectionChange != nil {
		e.OnSelectionChange(append([]string(nil), ids...))
	}
}

func (e Events) shapeUpdated(id string, g domain.Geometry) {
	if e.OnShapeUpdate != nil {
		e.OnShapeUpdate(id, g.Clone())
	}
}

func (e Events) viewportChanged(v Viewport) {
	if e.OnViewportChange != nil {
		e.OnViewportChange(v)
	}
}
