package catalog

import "slices"

// RevealTracker records which vehicles in the current result set have a loaded
// primary image. Membership only grows between resets.
//
// A RevealTracker is not safe for concurrent use; the Controller owning it
// serializes access.
type RevealTracker struct {
	loaded map[string]struct{}
}

// NewRevealTracker returns an empty tracker.
func NewRevealTracker() *RevealTracker {
	return &RevealTracker{loaded: make(map[string]struct{})}
}

// Reset empties the set. Called whenever the vehicle list is replaced.
func (t *RevealTracker) Reset() {
	clear(t.loaded)
}

// MarkLoaded adds id to the set and reports whether it was newly added.
func (t *RevealTracker) MarkLoaded(id string) bool {
	if _, ok := t.loaded[id]; ok {
		return false
	}
	t.loaded[id] = struct{}{}
	return true
}

// IsLoaded reports whether id is in the set.
func (t *RevealTracker) IsLoaded(id string) bool {
	_, ok := t.loaded[id]
	return ok
}

// Len returns the number of revealed vehicles.
func (t *RevealTracker) Len() int {
	return len(t.loaded)
}

// Snapshot returns the revealed ids, sorted.
func (t *RevealTracker) Snapshot() []string {
	ids := make([]string, 0, len(t.loaded))
	for id := range t.loaded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
