// Package population tracks which person ids exist and tells observers when
// a person is removed.
package population

import (
	"log/slog"

	"github.com/roach88/cohort/internal/index"
	"github.com/roach88/cohort/internal/ir"
)

// Registry issues dense person ids and records removals. Ids are never
// reused. Not safe for concurrent use.
type Registry struct {
	alive     index.Bits
	next      ir.PersonID
	count     int
	observers []func(ir.PersonID)
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for removal records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPerson issues the next person id.
func (r *Registry) AddPerson() ir.PersonID {
	id := r.next
	r.next++
	r.alive.Set(int(id))
	r.count++
	return id
}

// AddPeople issues n person ids and returns them in order.
func (r *Registry) AddPeople(n int) []ir.PersonID {
	out := make([]ir.PersonID, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.AddPerson())
	}
	return out
}

// PersonExists reports whether id was issued and not removed.
func (r *Registry) PersonExists(id ir.PersonID) bool {
	return !id.IsNull() && r.alive.Get(int(id))
}

// OnRemoved registers fn to be called after each removal, in registration
// order.
func (r *Registry) OnRemoved(fn func(ir.PersonID)) {
	r.observers = append(r.observers, fn)
}

// RemovePerson removes id and notifies observers.
func (r *Registry) RemovePerson(id ir.PersonID) error {
	if id.IsNull() {
		return ir.NewError(ir.ErrNullPersonID, "person id is null")
	}
	if !r.alive.Get(int(id)) {
		return ir.NewError(ir.ErrUnknownPersonID, "person %d does not exist", id).With("person", id)
	}
	r.alive.Unset(int(id))
	r.count--
	r.logger.Debug("person removed", "person", int(id))
	for _, fn := range r.observers {
		fn(id)
	}
	return nil
}

// Count returns the number of existing people.
func (r *Registry) Count() int {
	return r.count
}

// Issued returns the number of ids ever issued.
func (r *Registry) Issued() int {
	return int(r.next)
}

// People returns the existing person ids in ascending order.
func (r *Registry) People() []ir.PersonID {
	out := make([]ir.PersonID, 0, r.count)
	for id := ir.PersonID(0); id < r.next; id++ {
		if r.alive.Get(int(id)) {
			out = append(out, id)
		}
	}
	return out
}
