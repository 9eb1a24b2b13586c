package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cohort/internal/compiler"
	"github.com/roach88/cohort/internal/engine"
	"github.com/roach88/cohort/internal/event"
	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/population"
	"github.com/roach88/cohort/internal/random"
)

// Harness is the scenario execution engine.
// It wires a population, random streams, an event bus and a group manager
// onto one engine, exactly as a simulation would.
type Harness struct {
	manager *group.Manager
	people  *population.Registry
	engine  *engine.Engine
	result  *Result
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger passed to the store components. By default
// their logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Create the population, random streams, bus and group manager
// 2. Apply the CUE schema, if any
// 3. Schedule every step on the engine at its time
// 4. Run the engine until no steps remain
// 5. Export the final state and evaluate assertions
//
// The returned error covers setup failures only; step and assertion
// failures are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	people := population.New(population.WithLogger(cfg.logger))
	people.AddPeople(scenario.People)
	streams := random.New(scenario.Seed, scenario.Streams...)
	bus := event.NewBus(event.WithBusLogger(cfg.logger))

	h := &Harness{people: people, result: NewResult()}
	h.engine = engine.New(engine.WithBoundary(func() {
		h.manager.PurgePending()
	}))
	h.manager = group.New(group.Dependencies{
		People: people,
		Bus:    bus,
		Clock:  h.engine.Clock(),
		Random: group.RandomFunc(func(name string) (group.Uniform, error) {
			s, err := streams.Uniform(name)
			if err != nil {
				return nil, err
			}
			return s, nil
		}),
	}, group.WithLogger(cfg.logger))
	people.OnRemoved(h.manager.HandlePersonRemoval)

	bus.SubscribeAll(func(e event.Event) {
		h.result.AddTrace(h.engine.Now(), e.Type().String(), event.Describe(e))
	})

	if dir := scenario.SchemaDir(); dir != "" {
		specs, err := compiler.LoadSchemaDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		if err := h.manager.ApplySchema(specs); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	for i, step := range scenario.Steps {
		name := fmt.Sprintf("steps[%d] %s", i, step.Op)
		err := h.engine.ScheduleAt(step.At, name, func(context.Context) error {
			h.check(i, step, h.execute(step))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", name, err)
		}
	}

	if err := h.engine.Run(ctx); err != nil {
		return nil, fmt.Errorf("engine run: %w", err)
	}

	h.result.SimTime = h.engine.Now()
	h.result.Snapshot = h.manager.Export()
	for _, msg := range EvaluateAssertions(h.manager, h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}
