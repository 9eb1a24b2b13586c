package testutil

import "github.com/roach88/cohort/internal/ir"

// People is a fixed set of existing person ids.
type People map[ir.PersonID]bool

// NewPeople returns ids 0..n-1.
func NewPeople(n int) People {
	p := make(People, n)
	for i := 0; i < n; i++ {
		p[ir.PersonID(i)] = true
	}
	return p
}

// PersonExists reports whether id is in the set.
func (p People) PersonExists(id ir.PersonID) bool {
	return p[id]
}
