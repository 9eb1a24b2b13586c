package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Engine is the single-writer simulation scheduler.
//
// Thread-safety model:
//   - Enqueue(), Stop(), Now(): safe from any goroutine
//   - ScheduleAt(): from the Run goroutine, or before Run starts
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	clock      *Clock
	plans      planHeap
	queue      *requestQueue
	boundaries []func()
	stats      Stats
	dirty      bool // work ran since the last boundary
}

// Stats counts the work an Engine has done.
type Stats struct {
	Plans      int
	Requests   int
	Boundaries int
	Failures   int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithBoundary registers fn to run after all work at a time point and
// before time advances. Time points where nothing ran are skipped. If Run
// does no work at all, hooks still run once. Hooks run in registration
// order.
func WithBoundary(fn func()) Option {
	return func(e *Engine) {
		e.boundaries = append(e.boundaries, fn)
	}
}

// WithClock sets the clock, for resuming at a non-zero time.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine with no scheduled work.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock: NewClock(),
		queue: newRequestQueue(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the engine clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Now returns the current simulation time.
func (e *Engine) Now() float64 {
	return e.clock.Now()
}

// Stats returns counters for the work done so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// ScheduleAt schedules fn to run at time at. Plans at equal times run in the
// order they were scheduled.
func (e *Engine) ScheduleAt(at float64, name string, fn Plan) error {
	if math.IsNaN(at) || math.IsInf(at, 0) {
		return &RuntimeError{Code: ErrCodeInvalidTime, Message: fmt.Sprintf("plan time %v is not finite", at), Plan: name}
	}
	if now := e.clock.Now(); at < now {
		return NewPastTimeError(name, at, now)
	}
	e.plans.push(plan{time: at, seq: e.clock.next(), name: name, fn: fn})
	return nil
}

// ScheduleAfter schedules fn to run delay time units from now.
func (e *Engine) ScheduleAfter(delay float64, name string, fn Plan) error {
	return e.ScheduleAt(e.clock.Now()+delay, name, fn)
}

// Pending returns the number of scheduled plans.
func (e *Engine) Pending() int {
	return len(e.plans)
}

// Enqueue submits a request to run at the current time.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(r Request) bool {
	return e.queue.Enqueue(r)
}

// Run processes requests and plans until none remain, ctx is cancelled or
// Stop is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: A failing plan or request is logged with its name and the
// current time, and processing continues. Retrying would make the schedule
// depend on failure timing.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "time", e.clock.Now(), "plans", len(e.plans))

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("engine stopping: context cancelled", "time", e.clock.Now())
			e.queue.Close()
			return err
		}
		if e.queue.Closed() {
			slog.Info("engine stopping: stopped", "time", e.clock.Now())
			return nil
		}

		if r, ok := e.queue.TryDequeue(); ok {
			e.stats.Requests++
			e.runStep(ctx, "request", r.Name, r.Do)
			continue
		}

		if len(e.plans) > 0 && e.plans.peek().time <= e.clock.Now() {
			p := e.plans.pop()
			e.stats.Plans++
			e.runStep(ctx, "plan", p.name, p.fn)
			continue
		}

		if e.dirty {
			e.runBoundaries()
			if e.queue.Len() > 0 || (len(e.plans) > 0 && e.plans.peek().time <= e.clock.Now()) {
				continue
			}
		}

		if len(e.plans) == 0 {
			if e.stats.Boundaries == 0 {
				e.runBoundaries()
			}
			slog.Info("engine stopping: no work left",
				"time", e.clock.Now(),
				"plans_run", e.stats.Plans,
				"requests_run", e.stats.Requests,
			)
			return nil
		}
		next := e.plans.peek().time
		slog.Debug("time advancing", "from", e.clock.Now(), "to", next)
		e.clock.advance(next)
	}
}

// Stop makes Run return after the current step. Queued requests that have
// not started are dropped.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) runStep(ctx context.Context, kind, name string, fn func(context.Context) error) {
	e.dirty = true
	if fn == nil {
		return
	}
	if err := fn(ctx); err != nil {
		e.stats.Failures++
		logStepError(kind, name, e.clock.Now(), err)
	}
}

func (e *Engine) runBoundaries() {
	e.stats.Boundaries++
	e.dirty = false
	for _, fn := range e.boundaries {
		fn()
	}
}

// logStepError logs a failed step with enough context to find it in a
// schedule.
func logStepError(kind, name string, now float64, err error) {
	slog.Error("step failed",
		"kind", kind,
		"name", name,
		"time", now,
		"error", err,
	)
}
