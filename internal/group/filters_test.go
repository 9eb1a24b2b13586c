package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/event"
	"github.com/roach88/cohort/internal/ir"
)

func TestFilters_ValidateArguments(t *testing.T) {
	f := newFixture(t, 3)
	f.addType(t, "A")
	f.define(t, "A", "score", ir.PropertyDefinition{Kind: ir.KindInt, Default: ir.Int(0), Mutable: true})
	g := f.addGroup(t, "A")
	fl := f.m.Filters()

	tests := []struct {
		name string
		err  error
		code ir.ErrorCode
	}{
		{"type added unknown type", second(fl.GroupTypeAddedByType("B")), ir.ErrUnknownGroupType},
		{"group added null type", second(fl.GroupAddedByType("")), ir.ErrNullGroupTypeID},
		{"removed unknown group", second(fl.GroupImminentlyRemovedByGroup(5)), ir.ErrUnknownGroupID},
		{"membership unknown person", second(fl.GroupMembershipAddedByPerson(9)), ir.ErrUnknownPersonID},
		{"membership null group", second(fl.GroupMembershipRemovedByGroupAndPerson(ir.NoGroup, 1)), ir.ErrNullGroupID},
		{"membership type and unknown person", second(fl.GroupMembershipAddedByTypeAndPerson("A", 9)), ir.ErrUnknownPersonID},
		{"defined unknown property", second(fl.GroupPropertyDefinedByTypeAndProperty("A", "rank")), ir.ErrUnknownPropertyID},
		{"updated unknown type", second(fl.GroupPropertyUpdatedByTypeAndProperty("B", "score")), ir.ErrUnknownGroupType},
		{"updated unknown property on group", second(fl.GroupPropertyUpdatedByGroupAndProperty(g, "rank")), ir.ErrUnknownPropertyID},
		{"valid", second(fl.GroupPropertyUpdatedByGroupAndProperty(g, "score")), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ir.CodeOf(tt.err))
		})
	}
}

func second(_ event.Filter, err error) error {
	return err
}

func TestFilters_RouteMembershipEvents(t *testing.T) {
	f := newFixture(t, 5)
	f.addType(t, "home")
	f.addType(t, "work")
	h := f.addGroup(t, "home")
	w := f.addGroup(t, "work")
	fl := f.m.Filters()

	byGroup, err := fl.GroupMembershipAddedByGroup(h)
	require.NoError(t, err)
	byType, err := fl.GroupMembershipAddedByType("work")
	require.NoError(t, err)
	byPair, err := fl.GroupMembershipAddedByGroupAndPerson(w, 2)
	require.NoError(t, err)
	byTypePerson, err := fl.GroupMembershipRemovedByTypeAndPerson("home", 1)
	require.NoError(t, err)

	var hits []string
	f.bus.Subscribe(byGroup, func(event.Event) { hits = append(hits, "group") })
	f.bus.Subscribe(byType, func(event.Event) { hits = append(hits, "type") })
	f.bus.Subscribe(byPair, func(event.Event) { hits = append(hits, "pair") })
	f.bus.Subscribe(byTypePerson, func(event.Event) { hits = append(hits, "removed") })

	f.join(t, 1, h)
	f.join(t, 1, w)
	f.join(t, 2, w)
	require.NoError(t, f.m.RemovePersonFromGroup(1, w))
	require.NoError(t, f.m.RemovePersonFromGroup(1, h))

	assert.Equal(t, []string{"group", "type", "type", "pair", "removed"}, hits)
}

func TestFilters_RoutePropertyAndLifecycleEvents(t *testing.T) {
	f := newFixture(t, 0)
	f.addType(t, "A")
	f.addType(t, "B")
	f.define(t, "A", "score", ir.PropertyDefinition{Kind: ir.KindInt, Default: ir.Int(0), Mutable: true})
	f.define(t, "B", "score", ir.PropertyDefinition{Kind: ir.KindInt, Default: ir.Int(0), Mutable: true})
	a := f.addGroup(t, "A")
	b := f.addGroup(t, "B")
	fl := f.m.Filters()

	updA, err := fl.GroupPropertyUpdatedByTypeAndProperty("A", "score")
	require.NoError(t, err)
	removedB, err := fl.GroupImminentlyRemovedByType("B")
	require.NoError(t, err)
	addedA, err := fl.GroupAddedByType("A")
	require.NoError(t, err)
	definedB, err := fl.GroupPropertyDefinedByType("B")
	require.NoError(t, err)

	var hits []string
	f.bus.Subscribe(updA, func(e event.Event) { hits = append(hits, event.Describe(e)) })
	f.bus.Subscribe(removedB, func(e event.Event) { hits = append(hits, event.Describe(e)) })
	f.bus.Subscribe(addedA, func(e event.Event) { hits = append(hits, event.Describe(e)) })
	f.bus.Subscribe(definedB, func(e event.Event) { hits = append(hits, event.Describe(e)) })

	require.NoError(t, f.m.SetGroupPropertyValue(a, "score", ir.Int(1)))
	require.NoError(t, f.m.SetGroupPropertyValue(b, "score", ir.Int(1)))
	require.NoError(t, f.m.RemoveGroup(a))
	require.NoError(t, f.m.RemoveGroup(b))
	f.addGroup(t, "B")
	f.addGroup(t, "A")
	f.define(t, "B", "flag", ir.PropertyDefinition{Kind: ir.KindBool, Default: ir.Bool(false)})

	assert.Equal(t, []string{
		"GroupPropertyUpdated group_id=group(0) group_type=A property_id=score previous=0 current=1",
		"GroupImminentlyRemoved group_id=group(1) group_type=B",
		"GroupAdded group_id=group(3) group_type=A",
		"GroupPropertyDefined group_type=B property_id=flag",
	}, hits)
}

func TestFilters_Unfiltered(t *testing.T) {
	f := newFixture(t, 0)
	fl := f.m.Filters()

	assert.Equal(t, event.All(event.TypeGroupTypeAdded), fl.GroupTypeAdded())
	assert.Equal(t, event.TypeGroupAdded, fl.GroupAdded().Type)
	assert.Equal(t, event.TypeGroupImminentlyRemoved, fl.GroupImminentlyRemoved().Type)
	assert.Equal(t, event.TypeGroupMembershipAdded, fl.GroupMembershipAdded().Type)
	assert.Equal(t, event.TypeGroupMembershipRemoved, fl.GroupMembershipRemoved().Type)
	assert.Equal(t, event.TypeGroupPropertyDefined, fl.GroupPropertyDefined().Type)
	assert.Equal(t, event.TypeGroupPropertyUpdated, fl.GroupPropertyUpdated().Type)
}
