package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/ir"
)

func TestRun_HouseholdLifecycle(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/household_lifecycle.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.True(t, result.Pass)

	assert.Equal(t, 6.0, result.SimTime)
	assert.Equal(t, ir.GroupID(3), result.Snapshot.NextGroupID)
	assert.Equal(t, 1, result.Count("GroupImminentlyRemoved"))

	// Schema types are registered before the first step.
	require.NotEmpty(t, result.Trace)
	assert.Equal(t, "GroupTypeAdded", result.Trace[0].Type)
	assert.Equal(t, 0.0, result.Trace[0].Time)
}

func TestRun_WeightedSampling(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/weighted_sampling.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.True(t, result.Pass)
}

func TestRun_RecordsStepFailures(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failures
people: 1
steps:
  - at: 0
    op: add_group_type
    group_type: A
  - at: 0
    op: add_group_type
    group_type: A
  - at: 1
    op: add_group
    group_type: A
    expect_error: UNKNOWN_GROUP_TYPE_ID
  - at: 2
    op: remove_group
    group: 5
    expect_error: NULL_GROUP_ID
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "steps[1] (add_group_type at 0)")
	assert.Contains(t, result.Errors[0], "DUPLICATE_GROUP_TYPE")
	assert.Contains(t, result.Errors[1], "expected error UNKNOWN_GROUP_TYPE_ID, got success")
	assert.Contains(t, result.Errors[2], "expected error NULL_GROUP_ID, got UNKNOWN_GROUP_ID")
}

func TestRun_StepsAtEqualTimesRunInFileOrder(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: ordering
people: 2
steps:
  - at: 1
    op: add_member
    person: 1
    group: 0
  - at: 0
    op: add_group_type
    group_type: A
  - at: 0
    op: add_group
    group_type: A
  - at: 1
    op: add_member
    person: 0
    group: 0
assertions:
  - type: group_members
    group: 0
    people: [0, 1]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	require.Len(t, result.Snapshot.Memberships, 2)
	assert.Equal(t, ir.PersonID(1), result.Snapshot.Memberships[0].Person)
	assert.Equal(t, ir.PersonID(0), result.Snapshot.Memberships[1].Person)
}

func TestRun_DefinePropertyWithGroupValues(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: define
steps:
  - at: 0
    op: add_group_type
    group_type: A
  - at: 0
    op: add_group
    group_type: A
  - at: 0
    op: add_group
    group_type: A
  - at: 1
    op: define_property
    group_type: A
    property: size
    kind: int
    width: 16
    group_values: {1: 3}
    expect_error: INSUFFICIENT_PROPERTY_VALUE_ASSIGNMENT
  - at: 1
    op: define_property
    group_type: A
    property: size
    kind: int
    width: 16
    group_values: {0: 2, 1: 3}
  - at: 2
    op: set_property
    group: 1
    property: size
    value: 40000
    expect_error: INCOMPATIBLE_VALUE
assertions:
  - type: property_value
    group: 1
    property: size
    value: 3
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
}

func TestRun_MissingSchema(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: schema
schema: testdata/does-not-exist
steps:
  - at: 0
    op: add_group_type
    group_type: A
`))
	require.NoError(t, err)

	_, err = Run(s)
	assert.ErrorContains(t, err, "failed to load schema")
}
