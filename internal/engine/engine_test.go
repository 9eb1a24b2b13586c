package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trace records what ran and when.
type trace struct {
	e     *Engine
	steps []string
}

func (tr *trace) plan(name string) Plan {
	return func(context.Context) error {
		tr.steps = append(tr.steps, fmt.Sprintf("%s@%v", name, tr.e.Now()))
		return nil
	}
}

func setup(t *testing.T, opts ...Option) *trace {
	t.Helper()
	tr := &trace{}
	opts = append(opts, WithBoundary(func() {
		tr.steps = append(tr.steps, fmt.Sprintf("boundary@%v", tr.e.Now()))
	}))
	tr.e = New(opts...)
	return tr
}

func TestEngine_RunsPlansInTimeOrder(t *testing.T) {
	tr := setup(t)
	require.NoError(t, tr.e.ScheduleAt(2, "b", tr.plan("b")))
	require.NoError(t, tr.e.ScheduleAt(1, "a", tr.plan("a")))
	require.NoError(t, tr.e.ScheduleAt(2, "c", tr.plan("c")))

	require.NoError(t, tr.e.Run(context.Background()))

	assert.Equal(t, []string{
		"a@1", "boundary@1",
		"b@2", "c@2", "boundary@2",
	}, tr.steps)
	assert.Equal(t, 3, tr.e.Stats().Plans)
}

func TestEngine_RequestsRunBeforeTimeAdvances(t *testing.T) {
	tr := setup(t)
	require.NoError(t, tr.e.ScheduleAt(0, "start", func(ctx context.Context) error {
		tr.e.Enqueue(Request{Name: "req", Do: tr.plan("req")})
		return tr.e.ScheduleAt(1, "later", tr.plan("later"))
	}))

	require.NoError(t, tr.e.Run(context.Background()))

	assert.Equal(t, []string{
		"req@0", "boundary@0",
		"later@1", "boundary@1",
	}, tr.steps)
	assert.Equal(t, 1, tr.e.Stats().Requests)
}

func TestEngine_PlanScheduledAtCurrentTimeRunsThisTick(t *testing.T) {
	tr := setup(t)
	require.NoError(t, tr.e.ScheduleAt(1, "first", func(ctx context.Context) error {
		return tr.e.ScheduleAfter(0, "again", tr.plan("again"))
	}))

	require.NoError(t, tr.e.Run(context.Background()))

	assert.Equal(t, []string{"again@1", "boundary@1"}, tr.steps)
}

func TestEngine_ScheduleInPast(t *testing.T) {
	e := New(WithClock(NewClockAt(5)))

	err := e.ScheduleAt(4, "late", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.True(t, IsPastTimeError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "late", re.Plan)
	assert.Equal(t, 0, e.Pending())
}

func TestEngine_ScheduleInvalidTime(t *testing.T) {
	e := New()
	err := e.ScheduleAfter(1/zero(), "inf", nil)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidTime, re.Code)
}

func zero() float64 { return 0 }

func TestEngine_ErrorsAreLoggedAndProcessingContinues(t *testing.T) {
	tr := setup(t)
	require.NoError(t, tr.e.ScheduleAt(1, "fail", func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, tr.e.ScheduleAt(1, "ok", tr.plan("ok")))

	require.NoError(t, tr.e.Run(context.Background()))

	assert.Equal(t, []string{"ok@1", "boundary@1"}, tr.steps)
	assert.Equal(t, 1, tr.e.Stats().Failures)
}

func TestEngine_EmptyRunCallsBoundaryOnce(t *testing.T) {
	tr := setup(t)
	require.NoError(t, tr.e.Run(context.Background()))
	assert.Equal(t, []string{"boundary@0"}, tr.steps)
}

func TestEngine_ContextCancelled(t *testing.T) {
	tr := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tr.e.ScheduleAt(1, "cancel", func(context.Context) error {
		cancel()
		return nil
	}))
	require.NoError(t, tr.e.ScheduleAt(2, "never", tr.plan("never")))

	err := tr.e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, tr.steps, "never@2")
	assert.False(t, tr.e.Enqueue(Request{Name: "after"}))
}

func TestEngine_Stop(t *testing.T) {
	tr := setup(t)
	require.NoError(t, tr.e.ScheduleAt(1, "stop", func(context.Context) error {
		tr.e.Stop()
		return nil
	}))
	require.NoError(t, tr.e.ScheduleAt(2, "never", tr.plan("never")))

	done := make(chan error, 1)
	go func() { done <- tr.e.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Empty(t, tr.steps)
	assert.Equal(t, 1, tr.e.Pending())
}

func TestEngine_ResumeFromClock(t *testing.T) {
	tr := setup(t, WithClock(NewClockAt(10)))
	require.NoError(t, tr.e.ScheduleAfter(1.5, "x", tr.plan("x")))

	require.NoError(t, tr.e.Run(context.Background()))

	assert.Equal(t, []string{"x@11.5", "boundary@11.5"}, tr.steps)
}
