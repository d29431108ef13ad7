package editor

// LockSet tracks the shape ids owned by in-progress pointer gestures. A
// locked shape is exempt from reconciliation so remote updates never fight a
// live drag. Locking is per id; unrelated shapes keep reconciling normally.
type LockSet struct {
	held map[string]struct{}
}

// NewLockSet returns an empty lock set.
func NewLockSet() *LockSet {
	return &LockSet{held: make(map[string]struct{})}
}

// Acquire takes the lock for id and returns a release func. The release is
// idempotent and meant for defer, so a panic mid-gesture cannot leave the id
// locked. Returns ok=false when another gesture already owns the id.
func (l *LockSet) Acquire(id string) (release func(), ok bool) {
	if _, exists := l.held[id]; exists {
		return func() {}, false
	}
	l.held[id] = struct{}{}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		delete(l.held, id)
	}, true
}

// Locked reports whether id is owned by an active gesture.
func (l *LockSet) Locked(id string) bool {
	_, ok := l.held[id]
	return ok
}

// Len returns the number of held locks.
func (l *LockSet) Len() int { return len(l.held) }
