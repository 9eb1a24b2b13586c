package event

// Clause requires the extracted field to equal Value.
type Clause struct {
	Extractor Extractor
	Value     any
}

// Filter selects events of one type whose fields match every clause.
// A filter with no clauses matches every event of its type.
type Filter struct {
	Type    Type
	Clauses []Clause
}

// All returns a filter matching every event of type t.
func All(t Type) Filter {
	return Filter{Type: t}
}

// Where returns a copy of f with an added clause.
func (f Filter) Where(x Extractor, value any) Filter {
	clauses := make([]Clause, len(f.Clauses), len(f.Clauses)+1)
	copy(clauses, f.Clauses)
	f.Clauses = append(clauses, Clause{Extractor: x, Value: value})
	return f
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e Event) bool {
	if e.Type() != f.Type {
		return false
	}
	for _, c := range f.Clauses {
		if c.Extractor.Extract(e) != c.Value {
			return false
		}
	}
	return true
}
