package group

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/event"
	"github.com/roach88/cohort/internal/ir"
	"github.com/roach88/cohort/internal/testutil"
)

type scripted struct {
	r *testutil.ScriptedRandom
}

func (s scripted) Uniform(name string) (Uniform, error) {
	st, err := s.r.Lookup(name)
	if err != nil {
		return nil, ir.NewError(ir.ErrUnknownStream, "%v", err)
	}
	return st, nil
}

type fixture struct {
	m      *Manager
	bus    *event.Bus
	rec    *testutil.Recorder
	clock  *testutil.ManualClock
	random *testutil.ScriptedRandom
	people testutil.People
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, people int) *fixture {
	t.Helper()
	f := &fixture{
		bus:    event.NewBus(event.WithBusLogger(discardLogger())),
		clock:  testutil.NewManualClock(0),
		random: testutil.NewScriptedRandom(nil),
		people: testutil.NewPeople(people),
	}
	f.rec = testutil.NewRecorder(f.bus)
	f.m = New(f.deps(), WithLogger(discardLogger()))
	return f
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		People: f.people,
		Bus:    f.bus,
		Clock:  f.clock,
		Random: scripted{f.random},
	}
}

func (f *fixture) addType(t *testing.T, id ir.GroupTypeID) {
	t.Helper()
	require.NoError(t, f.m.AddGroupType(id))
}

func (f *fixture) addGroup(t *testing.T, typeID ir.GroupTypeID) ir.GroupID {
	t.Helper()
	g, err := f.m.AddGroup(GroupRequest{Type: typeID})
	require.NoError(t, err)
	return g
}

func (f *fixture) join(t *testing.T, p ir.PersonID, g ir.GroupID) {
	t.Helper()
	require.NoError(t, f.m.AddPersonToGroup(p, g))
}

func (f *fixture) define(t *testing.T, typeID ir.GroupTypeID, prop ir.PropertyID, def ir.PropertyDefinition, values ...GroupValue) {
	t.Helper()
	require.NoError(t, f.m.DefineGroupProperty(PropertyDefinitionRequest{
		Type: typeID, Property: prop, Definition: def, Values: values,
	}))
}

// requireSymmetric checks that both membership directions agree.
func requireSymmetric(t *testing.T, m *Manager, people int) {
	t.Helper()
	for _, g := range m.GroupIDs() {
		members, err := m.PeopleForGroup(g)
		require.NoError(t, err)
		for _, p := range members {
			groups, err := m.GroupsForPerson(p)
			require.NoError(t, err)
			require.Contains(t, groups, g, "person %d lists group %d", p, g)
		}
	}
	for p := ir.PersonID(0); int(p) < people; p++ {
		groups, err := m.GroupsForPerson(p)
		if err != nil {
			continue
		}
		for _, g := range groups {
			members, err := m.PeopleForGroup(g)
			require.NoError(t, err)
			require.Contains(t, members, p, "group %d lists person %d", g, p)
		}
	}
}

// countingBus records whether events were published without a subscriber.
type countingBus struct {
	subscribed map[event.Type]bool
	published  []event.Event
}

func (b *countingBus) HasSubscribers(t event.Type) bool { return b.subscribed[t] }
func (b *countingBus) Publish(e event.Event)            { b.published = append(b.published, e) }
