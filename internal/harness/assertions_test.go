package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/ir"
	"github.com/roach88/cohort/internal/testutil"
)

func intp(i int) *int    { return &i }
func boolp(b bool) *bool { return &b }

func assertionStore(t *testing.T) *group.Manager {
	t.Helper()
	m := group.New(group.Dependencies{People: testutil.NewPeople(3)})
	require.NoError(t, m.AddGroupType("A"))
	require.NoError(t, m.DefineGroupProperty(group.PropertyDefinitionRequest{
		Type: "A", Property: "size", Definition: ir.PropertyDefinition{Kind: ir.KindInt, Default: ir.Int(4), Mutable: true},
	}))
	g, err := m.AddGroup(group.GroupRequest{Type: "A"})
	require.NoError(t, err)
	require.NoError(t, m.AddPersonToGroup(2, g))
	require.NoError(t, m.AddPersonToGroup(0, g))
	return m
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	m := assertionStore(t)
	result := NewResult()
	result.AddTrace(0, "GroupAdded", "GroupAdded group_id=group(0) group_type=A")

	errs := EvaluateAssertions(m, result, []Assertion{
		{Type: AssertGroupMembers, Group: intp(0), People: []int{0, 2}},
		{Type: AssertPersonGroups, Person: intp(2), Groups: []int{0}},
		{Type: AssertPersonGroups, Person: intp(1), Groups: nil},
		{Type: AssertPropertyValue, Group: intp(0), Property: "size", Value: 4},
		{Type: AssertGroupExists, Group: intp(0)},
		{Type: AssertGroupExists, Group: intp(9), Exists: boolp(false)},
		{Type: AssertGroupCount, GroupType: "A", Count: intp(1)},
		{Type: AssertEventCount, Event: "GroupAdded", Count: intp(1)},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	m := assertionStore(t)
	result := NewResult()

	errs := EvaluateAssertions(m, result, []Assertion{
		{Type: AssertGroupMembers, Group: intp(0), People: []int{1}},
		{Type: AssertGroupMembers, Group: intp(7), People: []int{}},
		{Type: AssertPropertyValue, Group: intp(0), Property: "size", Value: 5},
		{Type: AssertPropertyValue, Group: intp(0), Property: "size", Value: "big"},
		{Type: AssertGroupExists, Group: intp(0), Exists: boolp(false)},
		{Type: AssertGroupCount, GroupType: "B", Count: intp(0)},
		{Type: AssertEventCount, Event: "GroupAdded", Count: intp(2)},
	})
	require.Len(t, errs, 7)
	assert.Contains(t, errs[0], "assertions[0]: Assertion failed: group_members")
	assert.Contains(t, errs[0], "Actual: [0 2]")
	assert.Contains(t, errs[1], "UNKNOWN_GROUP_ID")
	assert.Contains(t, errs[2], "Actual: 4")
	assert.Contains(t, errs[5], "UNKNOWN_GROUP_TYPE_ID")
	assert.Contains(t, errs[6], "Actual: 0")
}

func TestAssertionError_Error(t *testing.T) {
	err := &AssertionError{Type: AssertGroupCount, Expected: "1", Actual: "2"}
	assert.Equal(t, "Assertion failed: group_count\n  Expected: 1\n  Actual: 2", err.Error())
}
