package index

// Unset is the sentinel returned by Ints for ids never set or cleared.
const Unset = -1

// Ints maps dense ids to small non-negative ints, with Unset for absence.
// Values are stored as int32 to halve the footprint of large populations.
type Ints struct {
	values []int32
}

// NewInts returns an empty container with room for n ids.
func NewInts(n int) *Ints {
	s := &Ints{}
	if n > 0 {
		s.values = make([]int32, 0, n)
	}
	return s
}

// Set stores v for id. v must be non-negative and fit in int32.
func (s *Ints) Set(id, v int) {
	checkID(id)
	if v < 0 || v > 1<<31-1 {
		panic("index: Ints value out of range")
	}
	s.ensure(id)
	s.values[id] = int32(v)
}

// Get returns the value stored for id, or Unset.
func (s *Ints) Get(id int) int {
	if id < 0 || id >= len(s.values) {
		return Unset
	}
	return int(s.values[id])
}

// Clear resets id to Unset. The slot is kept.
func (s *Ints) Clear(id int) {
	if id >= 0 && id < len(s.values) {
		s.values[id] = Unset
	}
}

// Len returns one past the highest id ever set.
func (s *Ints) Len() int {
	return len(s.values)
}

// Reset drops the backing array.
func (s *Ints) Reset() {
	s.values = nil
}

func (s *Ints) ensure(id int) {
	if id < len(s.values) {
		return
	}
	if id >= cap(s.values) {
		values := make([]int32, len(s.values), grow(cap(s.values), id))
		copy(values, s.values)
		s.values = values
	}
	old := len(s.values)
	s.values = s.values[:id+1]
	for i := old; i <= id; i++ {
		s.values[i] = Unset
	}
}
