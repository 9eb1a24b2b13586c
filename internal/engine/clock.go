package engine

import (
	"math"
	"sync/atomic"
)

// Clock holds the simulation time and a monotonic logical sequence.
//
// Time moves only forward, and only from the Run loop. Seq numbers order
// work scheduled at the same time.
//
// Thread-safety: reads are safe from any goroutine (atomic operations).
type Clock struct {
	now atomic.Uint64 // math.Float64bits of the current time
	seq atomic.Int64
}

// NewClock creates a clock at time 0 and seq 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at the given time.
// Used to resume a simulation from a checkpoint.
func NewClockAt(start float64) *Clock {
	c := &Clock{}
	c.now.Store(math.Float64bits(start))
	return c
}

// Now returns the current simulation time.
func (c *Clock) Now() float64 {
	return math.Float64frombits(c.now.Load())
}

// Seq returns the last issued sequence number.
func (c *Clock) Seq() int64 {
	return c.seq.Load()
}

// next returns the next sequence number.
func (c *Clock) next() int64 {
	return c.seq.Add(1)
}

// advance moves the clock to t. Callers guarantee t >= Now().
func (c *Clock) advance(t float64) {
	c.now.Store(math.Float64bits(t))
}
