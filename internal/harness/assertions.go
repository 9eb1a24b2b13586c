package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions evaluates all assertions against the final store and
// the run trace. Returns one message per failed assertion.
func EvaluateAssertions(m *group.Manager, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(m, result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(m *group.Manager, result *Result, a Assertion) error {
	switch a.Type {
	case AssertGroupMembers:
		return assertGroupMembers(m, a)
	case AssertPersonGroups:
		return assertPersonGroups(m, a)
	case AssertPropertyValue:
		return assertPropertyValue(m, a)
	case AssertGroupExists:
		return assertGroupExists(m, a)
	case AssertGroupCount:
		return assertGroupCount(m, a)
	case AssertEventCount:
		return assertEventCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertGroupMembers compares members without regard to order; removals
// may reorder a membership list.
func assertGroupMembers(m *group.Manager, a Assertion) error {
	g := ir.GroupID(*a.Group)
	members, err := m.PeopleForGroup(g)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("members %v of %v", a.People, g), Actual: err.Error()}
	}
	got := make([]int, 0, len(members))
	for _, p := range members {
		got = append(got, int(p))
	}
	if !sameSet(got, a.People) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("members %v of %v", sorted(a.People), g), Actual: fmt.Sprint(sorted(got))}
	}
	return nil
}

func assertPersonGroups(m *group.Manager, a Assertion) error {
	p := ir.PersonID(*a.Person)
	groups, err := m.GroupsForPerson(p)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("groups %v of %v", a.Groups, p), Actual: err.Error()}
	}
	got := make([]int, 0, len(groups))
	for _, g := range groups {
		got = append(got, int(g))
	}
	if !sameSet(got, a.Groups) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("groups %v of %v", sorted(a.Groups), p), Actual: fmt.Sprint(sorted(got))}
	}
	return nil
}

func assertPropertyValue(m *group.Manager, a Assertion) error {
	g := ir.GroupID(*a.Group)
	prop := ir.PropertyID(a.Property)
	expected := fmt.Sprintf("%v %s = %v", g, prop, a.Value)

	got, err := m.GroupPropertyValue(g, prop)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: err.Error()}
	}
	want, err := ir.ValueOf(got.Kind(), a.Value)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprintf("%v (%v)", got, err)}
	}
	if !ir.Equal(got, want) {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprint(got)}
	}
	return nil
}

func assertGroupExists(m *group.Manager, a Assertion) error {
	want := a.Exists == nil || *a.Exists
	g := ir.GroupID(*a.Group)
	if got := m.GroupExists(g); got != want {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%v exists=%t", g, want), Actual: fmt.Sprintf("exists=%t", got)}
	}
	return nil
}

func assertGroupCount(m *group.Manager, a Assertion) error {
	typeID := ir.GroupTypeID(a.GroupType)
	n, err := m.GroupCountForGroupType(typeID)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d groups of %q", *a.Count, typeID), Actual: err.Error()}
	}
	if n != *a.Count {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d groups of %q", *a.Count, typeID), Actual: fmt.Sprint(n)}
	}
	return nil
}

func assertEventCount(result *Result, a Assertion) error {
	if n := result.Count(a.Event); n != *a.Count {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d %s events", *a.Count, a.Event), Actual: fmt.Sprint(n)}
	}
	return nil
}

func sameSet(got, want []int) bool {
	return slices.Equal(sorted(got), sorted(want))
}

func sorted(ids []int) []int {
	out := slices.Clone(ids)
	if out == nil {
		out = []int{}
	}
	slices.Sort(out)
	return out
}
