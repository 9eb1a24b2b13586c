package group

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cohort/internal/ir"
)

// Snapshot is the exported state of a store. Slices are in deterministic
// order: types by registration, properties by definition, groups by id and
// memberships by group then join order. Only explicit property values are
// included.
type Snapshot struct {
	Version     string          `json:"version" yaml:"version"`
	NextGroupID ir.GroupID      `json:"next_group_id" yaml:"next_group_id"`
	GroupTypes  []TypeSnapshot  `json:"group_types" yaml:"group_types"`
	Groups      []GroupSnapshot `json:"groups" yaml:"groups"`
	Memberships []Membership    `json:"memberships" yaml:"memberships"`
}

// TypeSnapshot is one group type and its property schema.
type TypeSnapshot struct {
	ID         ir.GroupTypeID     `json:"id" yaml:"id"`
	Properties []PropertySnapshot `json:"properties" yaml:"properties"`
}

// PropertySnapshot is one property definition.
type PropertySnapshot struct {
	ID         ir.PropertyID   `json:"id" yaml:"id"`
	Kind       string          `json:"kind" yaml:"kind"`
	IntWidth   int             `json:"int_width,omitempty" yaml:"int_width,omitempty"`
	FloatWidth int             `json:"float_width,omitempty" yaml:"float_width,omitempty"`
	Symbols    []string        `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Default    *ir.TaggedValue `json:"default,omitempty" yaml:"default,omitempty"`
	Mutable    bool            `json:"mutable" yaml:"mutable"`
	TrackTimes bool            `json:"track_times" yaml:"track_times"`
}

// GroupSnapshot is one group with its explicit property values.
type GroupSnapshot struct {
	ID     ir.GroupID      `json:"id" yaml:"id"`
	Type   ir.GroupTypeID  `json:"type" yaml:"type"`
	Values []ValueSnapshot `json:"values" yaml:"values"`
}

// ValueSnapshot is one explicit property value.
type ValueSnapshot struct {
	Property ir.PropertyID  `json:"property" yaml:"property"`
	Value    ir.TaggedValue `json:"value" yaml:"value"`
}

// Membership links a person to a group.
type Membership struct {
	Group  ir.GroupID  `json:"group" yaml:"group"`
	Person ir.PersonID `json:"person" yaml:"person"`
}

// Definition converts the snapshot back into a property definition.
func (p PropertySnapshot) Definition() (ir.PropertyDefinition, error) {
	kind, err := ir.ParseValueKind(p.Kind)
	if err != nil {
		return ir.PropertyDefinition{}, ir.NewError(ir.ErrMalformedDef, "property %q: %v", p.ID, err)
	}
	def := ir.PropertyDefinition{
		Kind:       kind,
		IntWidth:   p.IntWidth,
		FloatWidth: p.FloatWidth,
		Symbols:    p.Symbols,
		Mutable:    p.Mutable,
		TrackTimes: p.TrackTimes,
	}
	if p.Default != nil {
		v, err := p.Default.Untag()
		if err != nil {
			return ir.PropertyDefinition{}, ir.NewError(ir.ErrIncompatibleValue, "property %q default: %v", p.ID, err)
		}
		def.Default = v
	}
	return def, nil
}

func snapshotProperty(id ir.PropertyID, def ir.PropertyDefinition) PropertySnapshot {
	p := PropertySnapshot{
		ID:         id,
		Kind:       def.Kind.String(),
		IntWidth:   def.IntWidth,
		FloatWidth: def.FloatWidth,
		Symbols:    def.Symbols,
		Mutable:    def.Mutable,
		TrackTimes: def.TrackTimes,
	}
	if def.Default != nil {
		tv := ir.Tag(def.Default)
		p.Default = &tv
	}
	return p
}

// SchemaSnapshot converts compiled group types to their serialized form.
func SchemaSnapshot(specs []ir.GroupTypeSpec) []TypeSnapshot {
	out := make([]TypeSnapshot, 0, len(specs))
	for _, spec := range specs {
		ts := TypeSnapshot{ID: spec.ID, Properties: make([]PropertySnapshot, 0, len(spec.Properties))}
		for _, p := range spec.Properties {
			ts.Properties = append(ts.Properties, snapshotProperty(p.ID, p.Definition))
		}
		out = append(out, ts)
	}
	return out
}

// Export captures the current state. Groups queued for removal are left
// out, as they are about to be purged.
func (m *Manager) Export() Snapshot {
	snap := Snapshot{
		Version:     ir.SnapshotVersion,
		NextGroupID: m.nextGroupID,
		GroupTypes:  []TypeSnapshot{},
		Groups:      []GroupSnapshot{},
		Memberships: []Membership{},
	}
	for ti, typeID := range m.types.IDs() {
		cat := m.catalogs[ti]
		ts := TypeSnapshot{ID: typeID, Properties: []PropertySnapshot{}}
		for _, p := range cat.PropertyIDs() {
			def, _ := cat.Definition(p)
			ts.Properties = append(ts.Properties, snapshotProperty(p, def))
		}
		snap.GroupTypes = append(snap.GroupTypes, ts)
	}
	for _, g := range m.GroupIDs() {
		if m.pendingSet.Get(int(g)) {
			continue
		}
		cat := m.catalogs[m.groupTypes.Get(int(g))]
		gs := GroupSnapshot{ID: g, Type: m.typeOf(g), Values: []ValueSnapshot{}}
		for _, p := range cat.PropertyIDs() {
			if v, ok := cat.Manager(p).Explicit(int(g)); ok {
				gs.Values = append(gs.Values, ValueSnapshot{Property: p, Value: ir.Tag(v)})
			}
		}
		snap.Groups = append(snap.Groups, gs)

		members, _ := m.membersOf.Get(int(g))
		for _, person := range members {
			snap.Memberships = append(snap.Memberships, Membership{Group: g, Person: person})
		}
	}
	return snap
}

// Import rebuilds a store from a snapshot. The snapshot is replayed through
// the normal mutation checks, so every invariant holds for the result, and
// the first violation is returned. Every member must exist in deps.People.
// No events are published during the import.
func Import(snap Snapshot, deps Dependencies, opts ...Option) (*Manager, error) {
	bus := deps.Bus
	deps.Bus = nil
	m := New(deps, opts...)

	for _, ts := range snap.GroupTypes {
		if err := m.AddGroupType(ts.ID); err != nil {
			return nil, err
		}
	}

	// Properties are defined before any group exists, so definitions
	// without a default need no values here. Group creation then enforces
	// that every mandatory value is present.
	for _, ts := range snap.GroupTypes {
		for _, ps := range ts.Properties {
			def, err := ps.Definition()
			if err != nil {
				return nil, err
			}
			err = m.DefineGroupProperty(PropertyDefinitionRequest{Type: ts.ID, Property: ps.ID, Definition: def})
			if err != nil {
				return nil, err
			}
		}
	}

	for _, gs := range snap.Groups {
		if gs.ID < m.nextGroupID || gs.ID >= snap.NextGroupID {
			return nil, ir.NewError(ir.ErrUnknownGroupID,
				"group %d is out of order or beyond next group id %d", gs.ID, snap.NextGroupID).With("group", gs.ID)
		}
		values := make(map[ir.PropertyID]ir.Value, len(gs.Values))
		for _, vs := range gs.Values {
			v, err := vs.Value.Untag()
			if err != nil {
				return nil, ir.NewError(ir.ErrIncompatibleValue, "group %d property %q: %v", gs.ID, vs.Property, err)
			}
			values[vs.Property] = v
		}
		m.nextGroupID = gs.ID
		if _, err := m.AddGroup(GroupRequest{Type: gs.Type, Values: values}); err != nil {
			return nil, err
		}
	}
	m.nextGroupID = snap.NextGroupID

	for _, ms := range snap.Memberships {
		if err := m.AddPersonToGroup(ms.Person, ms.Group); err != nil {
			return nil, err
		}
	}

	if bus != nil {
		m.bus = bus
	}
	return m, nil
}

// EncodeSnapshot returns the canonical JSON encoding of snap. Equal stores
// encode to identical bytes.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	types := make([]any, 0, len(snap.GroupTypes))
	for _, ts := range snap.GroupTypes {
		props := make([]any, 0, len(ts.Properties))
		for _, p := range ts.Properties {
			props = append(props, propertyTree(p))
		}
		types = append(types, map[string]any{"id": ts.ID, "properties": props})
	}
	groups := make([]any, 0, len(snap.Groups))
	for _, gs := range snap.Groups {
		values := make([]any, 0, len(gs.Values))
		for _, vs := range gs.Values {
			values = append(values, map[string]any{"property": vs.Property, "value": vs.Value})
		}
		groups = append(groups, map[string]any{"id": gs.ID, "type": gs.Type, "values": values})
	}
	members := make([]any, 0, len(snap.Memberships))
	for _, ms := range snap.Memberships {
		members = append(members, map[string]any{"group": ms.Group, "person": ms.Person})
	}
	return ir.MarshalCanonical(map[string]any{
		"version":       snap.Version,
		"next_group_id": snap.NextGroupID,
		"group_types":   types,
		"groups":        groups,
		"memberships":   members,
	})
}

func propertyTree(p PropertySnapshot) map[string]any {
	t := map[string]any{
		"id":          p.ID,
		"kind":        p.Kind,
		"mutable":     p.Mutable,
		"track_times": p.TrackTimes,
	}
	if p.IntWidth != 0 {
		t["int_width"] = p.IntWidth
	}
	if p.FloatWidth != 0 {
		t["float_width"] = p.FloatWidth
	}
	if len(p.Symbols) > 0 {
		t["symbols"] = p.Symbols
	}
	if p.Default != nil {
		t["default"] = *p.Default
	}
	return t
}

// DecodeSnapshot parses the JSON produced by EncodeSnapshot. Numbers are
// kept exact until each value is converted to its declared kind.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// EncodeSnapshotYAML returns snap as YAML.
func EncodeSnapshotYAML(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode snapshot yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshotYAML parses YAML produced by EncodeSnapshotYAML.
func DecodeSnapshotYAML(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot yaml: %w", err)
	}
	return snap, nil
}
