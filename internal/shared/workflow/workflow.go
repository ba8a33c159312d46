package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTransitionDenied marks an illegal status transition. The HTTP layer
// maps it to a 409.
var ErrTransitionDenied = errors.New("workflow transition denied")

// Table maps a current status to the statuses it may legally move to.
// Tables are static per entity kind; the validator itself holds no state.
type Table map[string][]string

// POITable is the point-of-interest lifecycle. Each edge is one-way and
// statuses cannot be skipped; a validated POI may drop back to draft.
var POITable = Table{
	"draft":     {"validated"},
	"validated": {"published", "draft"},
	"published": {"archived"},
	"archived":  {},
}

// RenderRetryTable is the only explicit render-job edge outside the scene
// loop: a failed job may be reset to pending.
var RenderRetryTable = Table{
	"failed": {"pending"},
}

// TransitionError reports a denied transition together with the targets the
// current status would allow.
type TransitionError struct {
	Current string
	Target  string
	Allowed []string
}

func (e *TransitionError) Error() string {
	allowed := "none"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("cannot transition from %q to %q (allowed: %s)", e.Current, e.Target, allowed)
}

func (e *TransitionError) Unwrap() error { return ErrTransitionDenied }

// CanTransition reports whether the edge current→target exists in table.
func CanTransition(current, target string, table Table) bool {
	for _, allowed := range table[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CheckTransition returns nil when the edge is legal and a *TransitionError
// otherwise. It never mutates anything; callers apply the status change
// themselves after a nil result.
func CheckTransition(current, target string, table Table) error {
	if CanTransition(current, target, table) {
		return nil
	}
	allowed := append([]string(nil), table[current]...)
	return &TransitionError{Current: current, Target: target, Allowed: allowed}
}
