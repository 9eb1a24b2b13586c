package harness

import (
	"github.com/roach88/cohort/internal/group"
)

// TraceEvent is one published event, or one sample draw, in run order.
type TraceEvent struct {
	Seq    int     `json:"seq"`
	Time   float64 `json:"time"`
	Type   string  `json:"type"`
	Detail string  `json:"detail"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step behaved as expected and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace contains published events and sample draws in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the final exported state.
	Snapshot group.Snapshot `json:"snapshot"`

	// SimTime is the engine time when the run ended.
	SimTime float64 `json:"sim_time"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace entry with the next sequence number.
func (r *Result) AddTrace(time float64, typ, detail string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    len(r.Trace) + 1,
		Time:   time,
		Type:   typ,
		Detail: detail,
	})
}

// Count returns the number of trace entries of the given type.
func (r *Result) Count(typ string) int {
	n := 0
	for _, e := range r.Trace {
		if e.Type == typ {
			n++
		}
	}
	return n
}
