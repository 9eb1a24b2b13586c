package index

// Values maps dense ids to values of type T.
//
// Ids that were never set, or were cleared, report the zero value and false.
// Presence is tracked in a separate bitset so T needs no sentinel.
type Values[T any] struct {
	values  []T
	present Bits
}

// NewValues returns an empty container with room for n ids.
func NewValues[T any](n int) *Values[T] {
	s := &Values[T]{}
	if n > 0 {
		s.values = make([]T, 0, n)
		s.present.Resize(n)
	}
	return s
}

// Set stores v for id, growing the backing array as needed.
func (s *Values[T]) Set(id int, v T) {
	checkID(id)
	if id >= len(s.values) {
		if id >= cap(s.values) {
			values := make([]T, len(s.values), grow(cap(s.values), id))
			copy(values, s.values)
			s.values = values
		}
		s.values = s.values[:id+1]
	}
	s.values[id] = v
	s.present.Set(id)
}

// Get returns the value for id and whether one is present.
func (s *Values[T]) Get(id int) (T, bool) {
	if !s.present.Get(id) {
		var zero T
		return zero, false
	}
	return s.values[id], true
}

// Has reports whether id holds a value.
func (s *Values[T]) Has(id int) bool {
	return s.present.Get(id)
}

// Clear removes the value for id. The slot is kept and zeroed so that
// pointers held by T can be collected.
func (s *Values[T]) Clear(id int) {
	if id < 0 || id >= len(s.values) {
		return
	}
	var zero T
	s.values[id] = zero
	s.present.Unset(id)
}

// Len returns one past the highest id ever set.
func (s *Values[T]) Len() int {
	return len(s.values)
}

// Cap returns the capacity of the backing array.
func (s *Values[T]) Cap() int {
	return cap(s.values)
}

// Reset drops the backing array and all values.
func (s *Values[T]) Reset() {
	s.values = nil
	s.present.Reset()
}
