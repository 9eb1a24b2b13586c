package group

import (
	"slices"

	"github.com/roach88/cohort/internal/index"
	"github.com/roach88/cohort/internal/ir"
	"github.com/roach88/cohort/internal/property"
)

// GroupTypeExists reports whether typeID is registered.
func (m *Manager) GroupTypeExists(typeID ir.GroupTypeID) bool {
	_, ok := m.types.Index(typeID)
	return ok
}

// GroupExists reports whether group exists. A group queued for removal
// exists until it is purged.
func (m *Manager) GroupExists(group ir.GroupID) bool {
	return !group.IsNull() && m.groupTypes.Get(int(group)) != index.Unset
}

// GroupTypeIDs returns the registered group types in registration order.
func (m *Manager) GroupTypeIDs() []ir.GroupTypeID {
	return m.types.IDs()
}

// GroupType returns the type of group.
func (m *Manager) GroupType(group ir.GroupID) (ir.GroupTypeID, error) {
	if err := m.checkGroup(group); err != nil {
		return "", err
	}
	return m.typeOf(group), nil
}

// GroupIDs returns every existing group id in ascending order.
func (m *Manager) GroupIDs() []ir.GroupID {
	var out []ir.GroupID
	for g := ir.GroupID(0); g < m.nextGroupID; g++ {
		if m.groupTypes.Get(int(g)) != index.Unset {
			out = append(out, g)
		}
	}
	return out
}

// GroupsForGroupType returns the groups of typeID in creation order.
func (m *Manager) GroupsForGroupType(typeID ir.GroupTypeID) ([]ir.GroupID, error) {
	ti, err := m.typeIndex(typeID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.groupsByType[ti]), nil
}

// GroupCountForGroupType returns the number of groups of typeID.
func (m *Manager) GroupCountForGroupType(typeID ir.GroupTypeID) (int, error) {
	ti, err := m.typeIndex(typeID)
	if err != nil {
		return 0, err
	}
	return len(m.groupsByType[ti]), nil
}

// PeopleForGroup returns the members of group in the order they joined.
func (m *Manager) PeopleForGroup(group ir.GroupID) ([]ir.PersonID, error) {
	if err := m.checkGroup(group); err != nil {
		return nil, err
	}
	members, _ := m.membersOf.Get(int(group))
	return slices.Clone(members), nil
}

// PersonCountForGroup returns the number of members of group.
func (m *Manager) PersonCountForGroup(group ir.GroupID) (int, error) {
	if err := m.checkGroup(group); err != nil {
		return 0, err
	}
	members, _ := m.membersOf.Get(int(group))
	return len(members), nil
}

// GroupsForPerson returns the groups person belongs to in the order joined.
func (m *Manager) GroupsForPerson(person ir.PersonID) ([]ir.GroupID, error) {
	if err := m.checkPerson(person); err != nil {
		return nil, err
	}
	groups, _ := m.groupsOf.Get(int(person))
	return slices.Clone(groups), nil
}

// GroupCountForPerson returns the number of groups person belongs to.
func (m *Manager) GroupCountForPerson(person ir.PersonID) (int, error) {
	if err := m.checkPerson(person); err != nil {
		return 0, err
	}
	groups, _ := m.groupsOf.Get(int(person))
	return len(groups), nil
}

// GroupsForPersonAndGroupType returns the groups of typeID that person
// belongs to.
func (m *Manager) GroupsForPersonAndGroupType(person ir.PersonID, typeID ir.GroupTypeID) ([]ir.GroupID, error) {
	if err := m.checkPerson(person); err != nil {
		return nil, err
	}
	ti, err := m.typeIndex(typeID)
	if err != nil {
		return nil, err
	}
	groups, _ := m.groupsOf.Get(int(person))
	var out []ir.GroupID
	for _, g := range groups {
		if m.groupTypes.Get(int(g)) == ti {
			out = append(out, g)
		}
	}
	return out, nil
}

// GroupTypesForPerson returns the distinct types of the groups person
// belongs to, in registration order.
func (m *Manager) GroupTypesForPerson(person ir.PersonID) ([]ir.GroupTypeID, error) {
	if err := m.checkPerson(person); err != nil {
		return nil, err
	}
	groups, _ := m.groupsOf.Get(int(person))
	seen := index.NewBits(m.types.Len())
	for _, g := range groups {
		seen.Set(m.groupTypes.Get(int(g)))
	}
	var out []ir.GroupTypeID
	for ti := 0; ti < m.types.Len(); ti++ {
		if seen.Get(ti) {
			out = append(out, m.types.ID(ti))
		}
	}
	return out, nil
}

// PeopleForGroupType returns the distinct members of all groups of typeID
// in ascending order.
func (m *Manager) PeopleForGroupType(typeID ir.GroupTypeID) ([]ir.PersonID, error) {
	ti, err := m.typeIndex(typeID)
	if err != nil {
		return nil, err
	}
	var seen index.Bits
	var out []ir.PersonID
	for _, g := range m.groupsByType[ti] {
		members, _ := m.membersOf.Get(int(g))
		for _, p := range members {
			if !seen.Get(int(p)) {
				seen.Set(int(p))
				out = append(out, p)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

// PersonCountForGroupType returns the number of distinct members of all
// groups of typeID.
func (m *Manager) PersonCountForGroupType(typeID ir.GroupTypeID) (int, error) {
	people, err := m.PeopleForGroupType(typeID)
	return len(people), err
}

// IsPersonInGroup reports whether person is a member of group.
func (m *Manager) IsPersonInGroup(person ir.PersonID, group ir.GroupID) (bool, error) {
	if err := m.checkPerson(person); err != nil {
		return false, err
	}
	if err := m.checkGroup(group); err != nil {
		return false, err
	}
	return m.linked(person, group), nil
}

// LastIssuedGroupID returns the highest group id ever issued, whether or not
// that group still exists.
func (m *Manager) LastIssuedGroupID() (ir.GroupID, bool) {
	if m.nextGroupID == 0 {
		return ir.NoGroup, false
	}
	return m.nextGroupID - 1, true
}

// GroupPropertyIDs returns the properties defined on typeID in definition
// order.
func (m *Manager) GroupPropertyIDs(typeID ir.GroupTypeID) ([]ir.PropertyID, error) {
	ti, err := m.typeIndex(typeID)
	if err != nil {
		return nil, err
	}
	return m.catalogs[ti].PropertyIDs(), nil
}

// GroupPropertyExists reports whether prop is defined on typeID.
func (m *Manager) GroupPropertyExists(typeID ir.GroupTypeID, prop ir.PropertyID) bool {
	ti, ok := m.types.Index(typeID)
	return ok && m.catalogs[ti].Has(prop)
}

// GroupPropertyDefinition returns the definition of prop on typeID.
func (m *Manager) GroupPropertyDefinition(typeID ir.GroupTypeID, prop ir.PropertyID) (ir.PropertyDefinition, error) {
	ti, err := m.typeIndex(typeID)
	if err != nil {
		return ir.PropertyDefinition{}, err
	}
	if prop.IsNull() {
		return ir.PropertyDefinition{}, ir.NewError(ir.ErrNullPropertyID, "property id is empty")
	}
	def, ok := m.catalogs[ti].Definition(prop)
	if !ok {
		return ir.PropertyDefinition{}, unknownProperty(typeID, prop)
	}
	return def, nil
}

// GroupPropertyValue returns the value of prop for group, falling back to
// the definition's default.
func (m *Manager) GroupPropertyValue(group ir.GroupID, prop ir.PropertyID) (ir.Value, error) {
	mgr, err := m.propertyManager(group, prop)
	if err != nil {
		return nil, err
	}
	return mgr.Get(int(group)), nil
}

// GroupPropertyTime returns when prop was last assigned for group. Fails
// with PROPERTY_VALUE_TIME_NOT_TRACKED unless the definition tracks times.
func (m *Manager) GroupPropertyTime(group ir.GroupID, prop ir.PropertyID) (float64, error) {
	mgr, err := m.propertyManager(group, prop)
	if err != nil {
		return 0, err
	}
	return mgr.Time(int(group))
}

func (m *Manager) propertyManager(group ir.GroupID, prop ir.PropertyID) (*property.Manager, error) {
	if err := m.checkGroup(group); err != nil {
		return nil, err
	}
	if prop.IsNull() {
		return nil, ir.NewError(ir.ErrNullPropertyID, "property id is empty")
	}
	mgr := m.catalogs[m.groupTypes.Get(int(group))].Manager(prop)
	if mgr == nil {
		return nil, unknownProperty(m.typeOf(group), prop)
	}
	return mgr, nil
}

func unknownProperty(typeID ir.GroupTypeID, prop ir.PropertyID) error {
	return ir.NewError(ir.ErrUnknownPropertyID, "property %q is not defined on group type %q", prop, typeID).
		With("group_type", typeID).With("property", prop)
}
