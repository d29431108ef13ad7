package editor

import (
	"fmt"
	"strings"
)

// ValidationError reports a gesture that produced geometry below the minimum
// constraints. The gesture is aborted (or left open, for polygons) without
// side effects.
type ValidationError struct {
	Messages []string
}

func (e ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ReconciliationConflict reports a canonical-store write rejected during
// commit. The local optimistic state is retained; rolling back could race a
// subsequent gesture.
type ReconciliationConflict struct {
	AreaID string
	Err    error
}

func (e ReconciliationConflict) Error() string {
	return fmt.Sprintf("canonical update rejected for area %s: %v", e.AreaID, e.Err)
}

func (e ReconciliationConflict) Unwrap() error { return e.Err }
