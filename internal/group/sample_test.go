package group

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/ir"
	"github.com/roach88/cohort/internal/testutil"
)

func sampleFixture(t *testing.T, members ...ir.PersonID) (*fixture, ir.GroupID) {
	t.Helper()
	f := newFixture(t, 10)
	f.addType(t, "A")
	g := f.addGroup(t, "A")
	for _, p := range members {
		f.join(t, p, g)
	}
	return f, g
}

func TestSample_EmptyGroup(t *testing.T) {
	f, g := sampleFixture(t)

	p, ok, err := f.m.Sample(SampleRequest{Group: g})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ir.NoPerson, p)

	_, ok, err = f.m.Sample(SampleRequest{Group: g, Weights: func(ir.PersonID, ir.GroupID) float64 { return 1 }})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSample_OnlyExcludedRemains(t *testing.T) {
	f, g := sampleFixture(t, 4)

	_, ok, err := f.m.Sample(SampleRequest{Group: g, Exclude: 4, Excluding: true})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.m.Sample(SampleRequest{
		Group: g, Exclude: 4, Excluding: true,
		Weights: func(ir.PersonID, ir.GroupID) float64 { return 1 },
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSample_UniformRejectsExcluded(t *testing.T) {
	f, g := sampleFixture(t, 3, 4, 5)
	f.random.Stream("").Ints = []int{0, 0, 2}

	p, ok, err := f.m.Sample(SampleRequest{Group: g, Exclude: 3, Excluding: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ir.PersonID(5), p)

	_, ints := f.random.Stream("").Draws()
	assert.Equal(t, 3, ints)
}

func TestSample_UniformWithoutExclusion(t *testing.T) {
	f, g := sampleFixture(t, 3, 4, 5)
	f.random.Stream("").Ints = []int{1}

	p, ok, err := f.m.Sample(SampleRequest{Group: g})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ir.PersonID(4), p)
}

func TestSample_OneHotWeightAlwaysWins(t *testing.T) {
	f, g := sampleFixture(t, 0, 1, 2, 3, 4)
	weights := func(p ir.PersonID, _ ir.GroupID) float64 {
		if p == 3 {
			return 1
		}
		return 0
	}
	for _, u := range []float64{0, 0.25, 0.5, 0.999999} {
		f.random.Stream("").Floats = []float64{u}
		p, ok, err := f.m.Sample(SampleRequest{Group: g, Weights: weights})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ir.PersonID(3), p, "draw %v", u)
	}
}

func TestSample_WeightedPrefixSearch(t *testing.T) {
	f, g := sampleFixture(t, 0, 1, 2)
	weights := func(p ir.PersonID, _ ir.GroupID) float64 { return float64(p) + 1 }

	tests := []struct {
		u    float64
		want ir.PersonID
	}{
		{0, 0},
		{0.1, 0},
		{1.0 / 6, 0},
		{0.4, 1},
		{0.5, 1},
		{0.9, 2},
	}
	for _, tt := range tests {
		f.random.Stream("").Floats = []float64{tt.u}
		p, ok, err := f.m.Sample(SampleRequest{Group: g, Weights: weights})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tt.want, p, "draw %v", tt.u)
	}
}

func TestSample_WeightedRespectsExclusion(t *testing.T) {
	f, g := sampleFixture(t, 0, 1)
	f.random.Stream("").Floats = []float64{0}

	p, ok, err := f.m.Sample(SampleRequest{
		Group: g, Exclude: 0, Excluding: true,
		Weights: func(ir.PersonID, ir.GroupID) float64 { return 1 },
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ir.PersonID(1), p)
}

func TestSample_AllZeroWeights(t *testing.T) {
	f, g := sampleFixture(t, 0, 1)

	_, ok, err := f.m.Sample(SampleRequest{Group: g, Weights: func(ir.PersonID, ir.GroupID) float64 { return 0 }})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSample_MalformedWeightsReleaseGuard(t *testing.T) {
	f, g := sampleFixture(t, 0, 1)

	for name, w := range map[string]float64{
		"negative": -1,
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.m.Sample(SampleRequest{Group: g, Weights: func(ir.PersonID, ir.GroupID) float64 { return w }})
			assert.Equal(t, ir.ErrMalformedWeights, ir.CodeOf(err))

			_, ok, err := f.m.Sample(SampleRequest{Group: g})
			require.NoError(t, err, "guard released after failure")
			assert.True(t, ok)
		})
	}
}

func TestSample_NonFiniteTotal(t *testing.T) {
	f, g := sampleFixture(t, 0, 1)

	_, _, err := f.m.Sample(SampleRequest{Group: g, Weights: func(ir.PersonID, ir.GroupID) float64 { return math.MaxFloat64 }})
	assert.Equal(t, ir.ErrMalformedWeights, ir.CodeOf(err))
}

func TestSample_NestedCallIsAccessViolation(t *testing.T) {
	f, g := sampleFixture(t, 0, 1)
	var nested error

	_, ok, err := f.m.Sample(SampleRequest{Group: g, Weights: func(ir.PersonID, ir.GroupID) float64 {
		_, _, nested = f.m.Sample(SampleRequest{Group: g})
		return 1
	}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ir.ErrAccessViolation, ir.CodeOf(nested))
}

func TestSample_PanicInWeightsReleasesGuard(t *testing.T) {
	f, g := sampleFixture(t, 0)

	assert.Panics(t, func() {
		_, _, _ = f.m.Sample(SampleRequest{Group: g, Weights: func(ir.PersonID, ir.GroupID) float64 { panic("boom") }})
	})

	_, ok, err := f.m.Sample(SampleRequest{Group: g})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSample_Errors(t *testing.T) {
	f, g := sampleFixture(t, 0)

	_, _, err := f.m.Sample(SampleRequest{Group: ir.NoGroup})
	assert.Equal(t, ir.ErrNullGroupID, ir.CodeOf(err))

	_, _, err = f.m.Sample(SampleRequest{Group: 7})
	assert.Equal(t, ir.ErrUnknownGroupID, ir.CodeOf(err))

	_, _, err = f.m.Sample(SampleRequest{Group: g, Stream: "missing"})
	assert.Equal(t, ir.ErrUnknownStream, ir.CodeOf(err))
}

func TestSample_NamedStream(t *testing.T) {
	f, g := sampleFixture(t, 0, 1)
	f.random.Add("contacts", &testutil.ScriptedStream{Ints: []int{1}})

	p, ok, err := f.m.Sample(SampleRequest{Group: g, Stream: "contacts"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ir.PersonID(1), p)
}

func TestSample_NoRandomSource(t *testing.T) {
	m := New(Dependencies{People: testutil.NewPeople(1)}, WithLogger(discardLogger()))
	require.NoError(t, m.AddGroupType("A"))
	g, err := m.AddGroup(GroupRequest{Type: "A"})
	require.NoError(t, err)

	_, _, err = m.Sample(SampleRequest{Group: g})
	assert.Equal(t, ir.ErrUnknownStream, ir.CodeOf(err))
}

func TestSample_ScratchBuffersReused(t *testing.T) {
	f, g := sampleFixture(t, 0, 1, 2, 3)
	w := func(ir.PersonID, ir.GroupID) float64 { return 1 }

	_, _, err := f.m.Sample(SampleRequest{Group: g, Weights: w})
	require.NoError(t, err)
	capAfter := cap(f.m.sampler.weights)

	require.NoError(t, f.m.RemovePersonFromGroup(3, g))
	_, _, err = f.m.Sample(SampleRequest{Group: g, Weights: w})
	require.NoError(t, err)
	assert.Equal(t, capAfter, cap(f.m.sampler.weights))
}
