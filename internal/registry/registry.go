// Package registry maps group type ids to small dense indices and back.
package registry

import "github.com/roach88/cohort/internal/ir"

// Types is a bidirectional GroupTypeID <-> index mapping.
// Types are registered once and never removed, so indices are stable.
type Types struct {
	ids   []ir.GroupTypeID
	index map[ir.GroupTypeID]int
}

// New returns an empty registry.
func New() *Types {
	return &Types{index: make(map[ir.GroupTypeID]int)}
}

// Add registers id and returns its index. Returns false if id was already
// registered, together with the existing index.
func (t *Types) Add(id ir.GroupTypeID) (int, bool) {
	if i, ok := t.index[id]; ok {
		return i, false
	}
	i := len(t.ids)
	t.ids = append(t.ids, id)
	t.index[id] = i
	return i, true
}

// Index returns the index for id.
func (t *Types) Index(id ir.GroupTypeID) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// ID returns the id registered at index i. Panics if i is out of range.
func (t *Types) ID(i int) ir.GroupTypeID {
	return t.ids[i]
}

// Len returns the number of registered types.
func (t *Types) Len() int {
	return len(t.ids)
}

// IDs returns the registered ids in registration order.
func (t *Types) IDs() []ir.GroupTypeID {
	out := make([]ir.GroupTypeID, len(t.ids))
	copy(out, t.ids)
	return out
}
