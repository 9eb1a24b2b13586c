package group

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/cohort/internal/event"
	"github.com/roach88/cohort/internal/index"
	"github.com/roach88/cohort/internal/ir"
	"github.com/roach88/cohort/internal/property"
	"github.com/roach88/cohort/internal/registry"
)

// Manager owns all group, membership and property state.
type Manager struct {
	people PersonSource
	bus    Publisher
	clock  Clock
	random RandomSource
	logger *slog.Logger

	types    *registry.Types
	catalogs []*property.Catalog

	// groupTypes maps group id to type index, index.Unset when absent.
	groupTypes   *index.Ints
	membersOf    *index.Values[[]ir.PersonID]
	groupsOf     *index.Values[[]ir.GroupID]
	groupsByType [][]ir.GroupID
	nextGroupID  ir.GroupID

	pending    []ir.GroupID
	pendingSet index.Bits

	coverage property.CoverageSet
	sampler  sampler
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for mutation and purge records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New returns an empty store.
func New(deps Dependencies, opts ...Option) *Manager {
	if deps.People == nil {
		panic("group: Dependencies.People is required")
	}
	m := &Manager{
		people:     deps.People,
		bus:        deps.Bus,
		clock:      deps.Clock,
		random:     deps.Random,
		logger:     slog.Default(),
		types:      registry.New(),
		groupTypes: index.NewInts(0),
		membersOf:  index.NewValues[[]ir.PersonID](0),
		groupsOf:   index.NewValues[[]ir.GroupID](0),
	}
	if m.bus == nil {
		m.bus = nopBus{}
	}
	if m.clock == nil {
		m.clock = zeroClock{}
	}
	if m.random == nil {
		m.random = noRandom{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddGroupType registers a new group type.
func (m *Manager) AddGroupType(typeID ir.GroupTypeID) error {
	if typeID.IsNull() {
		return ir.NewError(ir.ErrNullGroupTypeID, "group type id is empty")
	}
	if _, ok := m.types.Index(typeID); ok {
		return ir.NewError(ir.ErrDuplicateType, "group type %q already exists", typeID).With("group_type", typeID)
	}

	m.types.Add(typeID)
	m.catalogs = append(m.catalogs, property.NewCatalog(m.clock))
	m.groupsByType = append(m.groupsByType, nil)

	m.logger.Debug("group type added", "group_type", typeID)
	if m.bus.HasSubscribers(event.TypeGroupTypeAdded) {
		m.bus.Publish(event.GroupTypeAdded{GroupType: typeID})
	}
	return nil
}

// GroupValue is one explicit property value for one group.
type GroupValue struct {
	Group ir.GroupID
	Value ir.Value
}

// PropertyDefinitionRequest defines a property on a group type. Values
// supplies explicit values for existing groups of that type; when the
// definition has no default it must cover every one of them.
type PropertyDefinitionRequest struct {
	Type       ir.GroupTypeID
	Property   ir.PropertyID
	Definition ir.PropertyDefinition
	Values     []GroupValue
}

// DefineGroupProperty adds a property definition to a group type.
func (m *Manager) DefineGroupProperty(req PropertyDefinitionRequest) error {
	ti, err := m.typeIndex(req.Type)
	if err != nil {
		return err
	}
	cat := m.catalogs[ti]
	if err := cat.ValidateDefinition(req.Property, req.Definition); err != nil {
		return err
	}
	for _, gv := range req.Values {
		if err := m.checkGroup(gv.Group); err != nil {
			return err
		}
		if got := m.groupTypes.Get(int(gv.Group)); got != ti {
			return ir.NewError(ir.ErrIncorrectType, "group %d is of type %q, not %q",
				gv.Group, m.types.ID(got), req.Type).With("group", gv.Group)
		}
		if err := property.ValidateAgainst(req.Definition, req.Property, gv.Value); err != nil {
			return err
		}
	}
	if !req.Definition.HasDefault() {
		m.coverage.Begin(int(m.nextGroupID))
		for _, gv := range req.Values {
			m.coverage.Mark(int(gv.Group))
		}
		for _, g := range m.groupsByType[ti] {
			if !m.coverage.Covered(int(g)) {
				return ir.NewError(ir.ErrInsufficientValue,
					"property %q has no default and group %d has no value", req.Property, g).
					With("group", g).With("property", req.Property)
			}
		}
	}

	mgr, err := cat.Define(req.Property, req.Definition)
	if err != nil {
		panic("group: definition failed after validation: " + err.Error())
	}
	for _, gv := range req.Values {
		mgr.Set(int(gv.Group), gv.Value)
	}

	m.logger.Debug("group property defined",
		"group_type", req.Type,
		"property", req.Property,
		"kind", req.Definition.Kind.String(),
		"values", len(req.Values),
	)
	if m.bus.HasSubscribers(event.TypeGroupPropertyDefined) {
		m.bus.Publish(event.GroupPropertyDefined{GroupType: req.Type, Property: req.Property})
	}
	return nil
}

// GroupRequest creates a group of Type with initial property values.
type GroupRequest struct {
	Type   ir.GroupTypeID
	Values map[ir.PropertyID]ir.Value
}

// AddGroup creates a group and returns its id.
func (m *Manager) AddGroup(req GroupRequest) (ir.GroupID, error) {
	ti, err := m.typeIndex(req.Type)
	if err != nil {
		return ir.NoGroup, err
	}
	cat := m.catalogs[ti]
	props := slices.Sorted(maps.Keys(req.Values))
	for _, p := range props {
		if err := cat.ValidateValue(p, req.Values[p]); err != nil {
			return ir.NoGroup, err
		}
	}
	if err := cat.CheckCreationCoverage(req.Values); err != nil {
		return ir.NoGroup, err
	}

	id := m.nextGroupID
	m.nextGroupID++
	m.groupTypes.Set(int(id), ti)
	m.groupsByType[ti] = append(m.groupsByType[ti], id)
	for _, p := range props {
		cat.Manager(p).Set(int(id), req.Values[p])
	}

	m.logger.Debug("group added", "group", int(id), "group_type", req.Type)
	if m.bus.HasSubscribers(event.TypeGroupAdded) {
		m.bus.Publish(event.GroupAdded{Group: id, GroupType: req.Type})
	}
	return id, nil
}

// AddPersonToGroup links a person and a group.
func (m *Manager) AddPersonToGroup(person ir.PersonID, group ir.GroupID) error {
	if err := m.checkPerson(person); err != nil {
		return err
	}
	if err := m.checkGroup(group); err != nil {
		return err
	}
	if m.linked(person, group) {
		return ir.NewError(ir.ErrDuplicateMember, "person %d is already in group %d", person, group).
			With("person", person).With("group", group)
	}

	members, _ := m.membersOf.Get(int(group))
	m.membersOf.Set(int(group), append(members, person))
	groups, _ := m.groupsOf.Get(int(person))
	m.groupsOf.Set(int(person), append(groups, group))

	m.logger.Debug("membership added", "person", int(person), "group", int(group))
	if m.bus.HasSubscribers(event.TypeGroupMembershipAdded) {
		m.bus.Publish(event.GroupMembershipAdded{Person: person, Group: group, GroupType: m.typeOf(group)})
	}
	return nil
}

// RemovePersonFromGroup unlinks a person and a group.
func (m *Manager) RemovePersonFromGroup(person ir.PersonID, group ir.GroupID) error {
	if err := m.checkPerson(person); err != nil {
		return err
	}
	if err := m.checkGroup(group); err != nil {
		return err
	}
	if !m.linked(person, group) {
		return ir.NewError(ir.ErrNonMember, "person %d is not in group %d", person, group).
			With("person", person).With("group", group)
	}

	removeMember(m.membersOf, int(group), person)
	removeMember(m.groupsOf, int(person), group)

	m.logger.Debug("membership removed", "person", int(person), "group", int(group))
	if m.bus.HasSubscribers(event.TypeGroupMembershipRemoved) {
		m.bus.Publish(event.GroupMembershipRemoved{Person: person, Group: group, GroupType: m.typeOf(group)})
	}
	return nil
}

// SetGroupPropertyValue assigns an explicit property value to a group.
func (m *Manager) SetGroupPropertyValue(group ir.GroupID, prop ir.PropertyID, value ir.Value) error {
	if err := m.checkGroup(group); err != nil {
		return err
	}
	if prop.IsNull() {
		return ir.NewError(ir.ErrNullPropertyID, "property id is empty")
	}
	cat := m.catalogs[m.groupTypes.Get(int(group))]
	if err := cat.ValidateMutable(prop); err != nil {
		return err
	}
	if err := cat.ValidateValue(prop, value); err != nil {
		return err
	}

	mgr := cat.Manager(prop)
	notify := m.bus.HasSubscribers(event.TypeGroupPropertyUpdated)
	var previous ir.Value
	if notify {
		previous = mgr.Get(int(group))
	}
	mgr.Set(int(group), value)

	m.logger.Debug("group property updated", "group", int(group), "property", prop)
	if notify {
		m.bus.Publish(event.GroupPropertyUpdated{
			Group:     group,
			GroupType: m.typeOf(group),
			Property:  prop,
			Previous:  previous,
			Current:   value,
		})
	}
	return nil
}

// RemoveGroup marks a group for removal and publishes
// GroupImminentlyRemoved. The group stays readable until PurgePending runs.
// Removing a group that is already pending succeeds without effect.
func (m *Manager) RemoveGroup(group ir.GroupID) error {
	if err := m.checkGroup(group); err != nil {
		return err
	}
	if m.pendingSet.Get(int(group)) {
		return nil
	}

	m.pendingSet.Set(int(group))
	m.pending = append(m.pending, group)

	m.logger.Debug("group removal queued", "group", int(group))
	if m.bus.HasSubscribers(event.TypeGroupImminentlyRemoved) {
		m.bus.Publish(event.GroupImminentlyRemoved{Group: group, GroupType: m.typeOf(group)})
	}
	return nil
}

// PendingRemovals returns the number of groups awaiting purge.
func (m *Manager) PendingRemovals() int {
	return len(m.pending)
}

// PurgePending drops every group queued by RemoveGroup: memberships in both
// directions, property storage and type bookkeeping. It returns the number
// of groups purged.
func (m *Manager) PurgePending() int {
	if len(m.pending) == 0 {
		return 0
	}
	pending := m.pending
	m.pending = nil
	for _, g := range pending {
		m.purge(g)
	}
	m.logger.Info("groups purged", "count", len(pending), "time", m.clock.Now())
	return len(pending)
}

func (m *Manager) purge(group ir.GroupID) {
	id := int(group)
	ti := m.groupTypes.Get(id)
	if ti == index.Unset {
		panic("group: purging a group that does not exist")
	}

	members, _ := m.membersOf.Get(id)
	for _, p := range members {
		removeMember(m.groupsOf, int(p), group)
	}
	m.membersOf.Clear(id)

	cat := m.catalogs[ti]
	for _, p := range cat.PropertyIDs() {
		cat.Manager(p).RemoveID(id)
	}

	m.groupsByType[ti] = slices.DeleteFunc(m.groupsByType[ti], func(g ir.GroupID) bool { return g == group })
	m.groupTypes.Clear(id)
	m.pendingSet.Unset(id)
}

// HandlePersonRemoval strips a removed person from every group. The person
// is not re-validated and no events are published.
func (m *Manager) HandlePersonRemoval(person ir.PersonID) {
	if person.IsNull() {
		return
	}
	groups, ok := m.groupsOf.Get(int(person))
	if !ok {
		return
	}
	for _, g := range groups {
		removeMember(m.membersOf, int(g), person)
	}
	m.groupsOf.Clear(int(person))
	m.logger.Debug("person removed from groups", "person", int(person), "groups", len(groups))
}

func (m *Manager) typeIndex(typeID ir.GroupTypeID) (int, error) {
	if typeID.IsNull() {
		return 0, ir.NewError(ir.ErrNullGroupTypeID, "group type id is empty")
	}
	ti, ok := m.types.Index(typeID)
	if !ok {
		return 0, ir.NewError(ir.ErrUnknownGroupType, "group type %q does not exist", typeID).With("group_type", typeID)
	}
	return ti, nil
}

func (m *Manager) checkGroup(group ir.GroupID) error {
	if group.IsNull() {
		return ir.NewError(ir.ErrNullGroupID, "group id is null")
	}
	if m.groupTypes.Get(int(group)) == index.Unset {
		return ir.NewError(ir.ErrUnknownGroupID, "group %d does not exist", group).With("group", group)
	}
	return nil
}

func (m *Manager) checkPerson(person ir.PersonID) error {
	if person.IsNull() {
		return ir.NewError(ir.ErrNullPersonID, "person id is null")
	}
	if !m.people.PersonExists(person) {
		return ir.NewError(ir.ErrUnknownPersonID, "person %d does not exist", person).With("person", person)
	}
	return nil
}

func (m *Manager) typeOf(group ir.GroupID) ir.GroupTypeID {
	return m.types.ID(m.groupTypes.Get(int(group)))
}

// linked scans the shorter of the two membership lists.
func (m *Manager) linked(person ir.PersonID, group ir.GroupID) bool {
	members, _ := m.membersOf.Get(int(group))
	groups, _ := m.groupsOf.Get(int(person))
	if len(members) <= len(groups) {
		return slices.Contains(members, person)
	}
	return slices.Contains(groups, group)
}

// removeMember deletes v from the list at id, clearing the slot when the
// list becomes empty.
func removeMember[T comparable](s *index.Values[[]T], id int, v T) {
	list, ok := s.Get(id)
	if !ok {
		return
	}
	i := slices.Index(list, v)
	if i < 0 {
		return
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		s.Clear(id)
		return
	}
	s.Set(id, list)
}
