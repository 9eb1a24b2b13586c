// Package index provides growable containers addressed directly by dense,
// small, non-negative integer ids.
//
// They replace hash maps for id spaces that are issued by a counter, such as
// group ids and person ids. Lookups are a bounds check and an array read.
//
// Containers grow the backing array by at least 1.5x when an id beyond the
// current capacity is written. Clearing a slot reclaims no memory; only Reset
// drops the backing array. Ids are never recycled by the callers, so no
// generation counters are kept.
//
// None of the containers are safe for concurrent mutation. All access must
// come from the single execution context that owns the store.
package index

// grow returns the new capacity for a container that must hold index need.
func grow(current, need int) int {
	next := current + current/2
	if next < need+1 {
		next = need + 1
	}
	if next < 8 {
		next = 8
	}
	return next
}

func checkID(id int) {
	if id < 0 {
		panic("index: negative id")
	}
}
