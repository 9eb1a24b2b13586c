package group

import (
	"github.com/roach88/cohort/internal/event"
	"github.com/roach88/cohort/internal/ir"
)

// PersonSource reports which person ids currently exist.
type PersonSource interface {
	PersonExists(ir.PersonID) bool
}

// Publisher delivers observation events.
type Publisher interface {
	HasSubscribers(event.Type) bool
	Publish(event.Event)
}

// Clock reports the current simulation time.
type Clock interface {
	Now() float64
}

// Uniform draws from one random stream.
type Uniform interface {
	Float64() float64
	IntN(n int) int
}

// RandomSource resolves random streams by name. The empty name is the
// default stream.
type RandomSource interface {
	Uniform(stream string) (Uniform, error)
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func(stream string) (Uniform, error)

// Uniform calls f.
func (f RandomFunc) Uniform(stream string) (Uniform, error) {
	return f(stream)
}

// Dependencies are the collaborators a Manager consumes.
// People is required. A nil Bus publishes nothing, a nil Clock reads zero
// and a nil Random makes every sample fail.
type Dependencies struct {
	People PersonSource
	Bus    Publisher
	Clock  Clock
	Random RandomSource
}

type nopBus struct{}

func (nopBus) HasSubscribers(event.Type) bool { return false }
func (nopBus) Publish(event.Event)            {}

type zeroClock struct{}

func (zeroClock) Now() float64 { return 0 }

type noRandom struct{}

func (noRandom) Uniform(stream string) (Uniform, error) {
	return nil, ir.NewError(ir.ErrUnknownStream, "no random source configured").With("stream", stream)
}
