package editor

// Scene is the ordered live shape collection. Order is z-order: the last
// shape is topmost. Mutations happen only on the event loop.
type Scene struct {
	shapes []Shape
	index  map[string]int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{index: make(map[string]int)}
}

// Len returns the number of shapes.
func (sc *Scene) Len() int { return len(sc.shapes) }

// Add appends a shape on top of the z-order. An existing shape with the same
// id is replaced in place instead.
func (sc *Scene) Add(s Shape) {
	if i, ok := sc.index[s.ID]; ok {
		sc.shapes[i] = s
		return
	}
	sc.index[s.ID] = len(sc.shapes)
	sc.shapes = append(sc.shapes, s)
}

// Remove deletes the shape with the given id, preserving the order of the
// rest. Returns false when absent.
func (sc *Scene) Remove(id string) bool {
	i, ok := sc.index[id]
	if !ok {
		return false
	}
	sc.shapes = append(sc.shapes[:i], sc.shapes[i+1:]...)
	delete(sc.index, id)
	for j := i; j < len(sc.shapes); j++ {
		sc.index[sc.shapes[j].ID] = j
	}
	return true
}

// Get returns a pointer to the live shape with the given id. The pointer is
// valid until the next Add or Remove.
func (sc *Scene) Get(id string) (*Shape, bool) {
	i, ok := sc.index[id]
	if !ok {
		return nil, false
	}
	return &sc.shapes[i], true
}

// Shapes returns the shapes in z-order. The slice is shared; callers must
// not retain it across mutations.
func (sc *Scene) Shapes() []Shape { return sc.shapes }

// IDs returns the shape ids in z-order.
func (sc *Scene) IDs() []string {
	ids := make([]string, len(sc.shapes))
	for i, s := range sc.shapes {
		ids[i] = s.ID
	}
	return ids
}

// CloneShapes returns an order-preserving deep copy of all shapes.
func (sc *Scene) CloneShapes() []Shape {
	out := make([]Shape, len(sc.shapes))
	for i, s := range sc.shapes {
		out[i] = s.Clone()
	}
	return out
}

// Restore replaces the scene contents with a deep copy of shapes.
func (sc *Scene) Restore(shapes []Shape) {
	sc.shapes = make([]Shape, len(shapes))
	sc.index = make(map[string]int, len(shapes))
	for i, s := range shapes {
		sc.shapes[i] = s.Clone()
		sc.index[s.ID] = i
	}
}
