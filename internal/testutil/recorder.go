package testutil

import (
	"github.com/roach88/cohort/internal/event"
)

// Recorder captures every event published on a bus.
type Recorder struct {
	Events []event.Event
}

// NewRecorder subscribes a recorder to every event type on bus.
func NewRecorder(bus *event.Bus) *Recorder {
	r := &Recorder{}
	bus.SubscribeAll(r.record)
	return r
}

func (r *Recorder) record(e event.Event) {
	r.Events = append(r.Events, e)
}

// Of returns the recorded events of type t in publish order.
func (r *Recorder) Of(t event.Type) []event.Event {
	var out []event.Event
	for _, e := range r.Events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// Descriptions returns event.Describe of every recorded event.
func (r *Recorder) Descriptions() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = event.Describe(e)
	}
	return out
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
