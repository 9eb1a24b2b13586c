package group

import (
	"github.com/roach88/cohort/internal/event"
	"github.com/roach88/cohort/internal/ir"
)

// Filters builds validated event filters. Every constructor checks the ids
// it is given against the current store before returning.
type Filters struct {
	m *Manager
}

// Filters returns the filter factory bound to this store.
func (m *Manager) Filters() Filters {
	return Filters{m: m}
}

func by(t event.Type, clauses ...any) event.Filter {
	f := event.All(t)
	for i := 0; i+1 < len(clauses); i += 2 {
		f = f.Where(event.MustField(t, clauses[i].(string)), clauses[i+1])
	}
	return f
}

func (f Filters) groupType(t ir.GroupTypeID) error {
	_, err := f.m.typeIndex(t)
	return err
}

func (f Filters) property(t ir.GroupTypeID, prop ir.PropertyID) error {
	_, err := f.m.GroupPropertyDefinition(t, prop)
	return err
}

func (f Filters) groupProperty(g ir.GroupID, prop ir.PropertyID) error {
	_, err := f.m.propertyManager(g, prop)
	return err
}

// GroupTypeAdded matches every GroupTypeAdded event.
func (f Filters) GroupTypeAdded() event.Filter {
	return event.All(event.TypeGroupTypeAdded)
}

// GroupTypeAddedByType matches the registration of one existing type.
func (f Filters) GroupTypeAddedByType(t ir.GroupTypeID) (event.Filter, error) {
	if err := f.groupType(t); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupTypeAdded, event.FieldGroupType, t), nil
}

// GroupAdded matches every GroupAdded event.
func (f Filters) GroupAdded() event.Filter {
	return event.All(event.TypeGroupAdded)
}

// GroupAddedByType matches groups created with type t.
func (f Filters) GroupAddedByType(t ir.GroupTypeID) (event.Filter, error) {
	if err := f.groupType(t); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupAdded, event.FieldGroupType, t), nil
}

// GroupImminentlyRemoved matches every GroupImminentlyRemoved event.
func (f Filters) GroupImminentlyRemoved() event.Filter {
	return event.All(event.TypeGroupImminentlyRemoved)
}

// GroupImminentlyRemovedByGroup matches the removal of group g.
func (f Filters) GroupImminentlyRemovedByGroup(g ir.GroupID) (event.Filter, error) {
	if err := f.m.checkGroup(g); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupImminentlyRemoved, event.FieldGroupID, g), nil
}

// GroupImminentlyRemovedByType matches removals of groups of type t.
func (f Filters) GroupImminentlyRemovedByType(t ir.GroupTypeID) (event.Filter, error) {
	if err := f.groupType(t); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupImminentlyRemoved, event.FieldGroupType, t), nil
}

// GroupMembershipAdded matches every GroupMembershipAdded event.
func (f Filters) GroupMembershipAdded() event.Filter {
	return event.All(event.TypeGroupMembershipAdded)
}

// GroupMembershipAddedByGroup matches people joining group g.
func (f Filters) GroupMembershipAddedByGroup(g ir.GroupID) (event.Filter, error) {
	return f.membershipByGroup(event.TypeGroupMembershipAdded, g)
}

// GroupMembershipAddedByType matches people joining groups of type t.
func (f Filters) GroupMembershipAddedByType(t ir.GroupTypeID) (event.Filter, error) {
	return f.membershipByType(event.TypeGroupMembershipAdded, t)
}

// GroupMembershipAddedByPerson matches person p joining any group.
func (f Filters) GroupMembershipAddedByPerson(p ir.PersonID) (event.Filter, error) {
	return f.membershipByPerson(event.TypeGroupMembershipAdded, p)
}

// GroupMembershipAddedByGroupAndPerson matches person p joining group g.
func (f Filters) GroupMembershipAddedByGroupAndPerson(g ir.GroupID, p ir.PersonID) (event.Filter, error) {
	return f.membershipByGroupAndPerson(event.TypeGroupMembershipAdded, g, p)
}

// GroupMembershipAddedByTypeAndPerson matches person p joining a group of
// type t.
func (f Filters) GroupMembershipAddedByTypeAndPerson(t ir.GroupTypeID, p ir.PersonID) (event.Filter, error) {
	return f.membershipByTypeAndPerson(event.TypeGroupMembershipAdded, t, p)
}

// GroupMembershipRemoved matches every GroupMembershipRemoved event.
func (f Filters) GroupMembershipRemoved() event.Filter {
	return event.All(event.TypeGroupMembershipRemoved)
}

// GroupMembershipRemovedByGroup matches people leaving group g.
func (f Filters) GroupMembershipRemovedByGroup(g ir.GroupID) (event.Filter, error) {
	return f.membershipByGroup(event.TypeGroupMembershipRemoved, g)
}

// GroupMembershipRemovedByType matches people leaving groups of type t.
func (f Filters) GroupMembershipRemovedByType(t ir.GroupTypeID) (event.Filter, error) {
	return f.membershipByType(event.TypeGroupMembershipRemoved, t)
}

// GroupMembershipRemovedByPerson matches person p leaving any group.
func (f Filters) GroupMembershipRemovedByPerson(p ir.PersonID) (event.Filter, error) {
	return f.membershipByPerson(event.TypeGroupMembershipRemoved, p)
}

// GroupMembershipRemovedByGroupAndPerson matches person p leaving group g.
func (f Filters) GroupMembershipRemovedByGroupAndPerson(g ir.GroupID, p ir.PersonID) (event.Filter, error) {
	return f.membershipByGroupAndPerson(event.TypeGroupMembershipRemoved, g, p)
}

// GroupMembershipRemovedByTypeAndPerson matches person p leaving a group of
// type t.
func (f Filters) GroupMembershipRemovedByTypeAndPerson(t ir.GroupTypeID, p ir.PersonID) (event.Filter, error) {
	return f.membershipByTypeAndPerson(event.TypeGroupMembershipRemoved, t, p)
}

func (f Filters) membershipByGroup(et event.Type, g ir.GroupID) (event.Filter, error) {
	if err := f.m.checkGroup(g); err != nil {
		return event.Filter{}, err
	}
	return by(et, event.FieldGroupID, g), nil
}

func (f Filters) membershipByType(et event.Type, t ir.GroupTypeID) (event.Filter, error) {
	if err := f.groupType(t); err != nil {
		return event.Filter{}, err
	}
	return by(et, event.FieldGroupType, t), nil
}

func (f Filters) membershipByPerson(et event.Type, p ir.PersonID) (event.Filter, error) {
	if err := f.m.checkPerson(p); err != nil {
		return event.Filter{}, err
	}
	return by(et, event.FieldPersonID, p), nil
}

func (f Filters) membershipByGroupAndPerson(et event.Type, g ir.GroupID, p ir.PersonID) (event.Filter, error) {
	if err := f.m.checkGroup(g); err != nil {
		return event.Filter{}, err
	}
	if err := f.m.checkPerson(p); err != nil {
		return event.Filter{}, err
	}
	return by(et, event.FieldGroupID, g, event.FieldPersonID, p), nil
}

func (f Filters) membershipByTypeAndPerson(et event.Type, t ir.GroupTypeID, p ir.PersonID) (event.Filter, error) {
	if err := f.groupType(t); err != nil {
		return event.Filter{}, err
	}
	if err := f.m.checkPerson(p); err != nil {
		return event.Filter{}, err
	}
	return by(et, event.FieldGroupType, t, event.FieldPersonID, p), nil
}

// GroupPropertyDefined matches every GroupPropertyDefined event.
func (f Filters) GroupPropertyDefined() event.Filter {
	return event.All(event.TypeGroupPropertyDefined)
}

// GroupPropertyDefinedByType matches definitions on type t.
func (f Filters) GroupPropertyDefinedByType(t ir.GroupTypeID) (event.Filter, error) {
	if err := f.groupType(t); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupPropertyDefined, event.FieldGroupType, t), nil
}

// GroupPropertyDefinedByTypeAndProperty matches the definition of prop on
// type t. The property must already be defined.
func (f Filters) GroupPropertyDefinedByTypeAndProperty(t ir.GroupTypeID, prop ir.PropertyID) (event.Filter, error) {
	if err := f.property(t, prop); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupPropertyDefined, event.FieldGroupType, t, event.FieldPropertyID, prop), nil
}

// GroupPropertyUpdated matches every GroupPropertyUpdated event.
func (f Filters) GroupPropertyUpdated() event.Filter {
	return event.All(event.TypeGroupPropertyUpdated)
}

// GroupPropertyUpdatedByTypeAndProperty matches updates of prop on any
// group of type t.
func (f Filters) GroupPropertyUpdatedByTypeAndProperty(t ir.GroupTypeID, prop ir.PropertyID) (event.Filter, error) {
	if err := f.property(t, prop); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupPropertyUpdated, event.FieldGroupType, t, event.FieldPropertyID, prop), nil
}

// GroupPropertyUpdatedByGroupAndProperty matches updates of prop on group g.
func (f Filters) GroupPropertyUpdatedByGroupAndProperty(g ir.GroupID, prop ir.PropertyID) (event.Filter, error) {
	if err := f.groupProperty(g, prop); err != nil {
		return event.Filter{}, err
	}
	return by(event.TypeGroupPropertyUpdated, event.FieldGroupID, g, event.FieldPropertyID, prop), nil
}
