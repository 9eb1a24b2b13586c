package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/ir"
)

// execute runs one step against the store.
func (h *Harness) execute(s Step) error {
	m := h.manager
	switch s.Op {
	case OpAddGroupType:
		return m.AddGroupType(ir.GroupTypeID(s.GroupType))

	case OpDefineProperty:
		return h.defineProperty(s)

	case OpAddGroup:
		typeID := ir.GroupTypeID(s.GroupType)
		values := make(map[ir.PropertyID]ir.Value, len(s.Values))
		for _, name := range sortedKeys(s.Values) {
			values[ir.PropertyID(name)] = h.valueFor(typeID, ir.PropertyID(name), s.Values[name])
		}
		g, err := m.AddGroup(group.GroupRequest{Type: typeID, Values: values})
		if err != nil {
			return err
		}
		if s.ExpectGroup != nil && g != ir.GroupID(*s.ExpectGroup) {
			return fmt.Errorf("expected group %d, got %d", *s.ExpectGroup, g)
		}
		return nil

	case OpAddMember:
		return m.AddPersonToGroup(ir.PersonID(*s.Person), ir.GroupID(*s.Group))

	case OpRemoveMember:
		return m.RemovePersonFromGroup(ir.PersonID(*s.Person), ir.GroupID(*s.Group))

	case OpSetProperty:
		g := ir.GroupID(*s.Group)
		typeID, _ := m.GroupType(g)
		return m.SetGroupPropertyValue(g, ir.PropertyID(s.Property), h.valueFor(typeID, ir.PropertyID(s.Property), s.Value))

	case OpRemoveGroup:
		return m.RemoveGroup(ir.GroupID(*s.Group))

	case OpRemovePerson:
		return h.people.RemovePerson(ir.PersonID(*s.Person))

	case OpSample:
		return h.sample(s)

	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}

func (h *Harness) defineProperty(s Step) error {
	kind, err := ir.ParseValueKind(s.Kind)
	if err != nil {
		return ir.NewError(ir.ErrMalformedDef, "%v", err)
	}
	def := ir.PropertyDefinition{
		Kind:       kind,
		Symbols:    s.Symbols,
		Mutable:    s.Mutable == nil || *s.Mutable,
		TrackTimes: s.TrackTimes,
	}
	switch kind {
	case ir.KindInt:
		def.IntWidth = s.Width
	case ir.KindFloat:
		def.FloatWidth = s.Width
	}
	if s.Default != nil {
		def.Default = coerce(kind, s.Default)
	}

	req := group.PropertyDefinitionRequest{
		Type:       ir.GroupTypeID(s.GroupType),
		Property:   ir.PropertyID(s.Property),
		Definition: def,
	}
	groups := make([]int, 0, len(s.GroupValues))
	for g := range s.GroupValues {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	for _, g := range groups {
		req.Values = append(req.Values, group.GroupValue{Group: ir.GroupID(g), Value: coerce(kind, s.GroupValues[g])})
	}
	return h.manager.DefineGroupProperty(req)
}

func (h *Harness) sample(s Step) error {
	req := group.SampleRequest{Group: ir.GroupID(*s.Group), Stream: s.Stream}
	if s.Exclude != nil {
		req.Exclude = ir.PersonID(*s.Exclude)
		req.Excluding = true
	}
	if len(s.Weights) > 0 {
		weights := s.Weights
		req.Weights = func(p ir.PersonID, _ ir.GroupID) float64 {
			return weights[int(p)]
		}
	}

	person, ok, err := h.manager.Sample(req)
	if err != nil {
		return err
	}
	detail := fmt.Sprintf("Sample group=%v person=none", req.Group)
	if ok {
		detail = fmt.Sprintf("Sample group=%v person=%v", req.Group, person)
	}
	h.result.AddTrace(h.engine.Now(), "Sample", detail)

	switch {
	case s.ExpectEmpty && ok:
		return fmt.Errorf("expected no person, drew %d", person)
	case s.ExpectPerson != nil && !ok:
		return fmt.Errorf("expected person %d, drew none", *s.ExpectPerson)
	case s.ExpectPerson != nil && person != ir.PersonID(*s.ExpectPerson):
		return fmt.Errorf("expected person %d, drew %d", *s.ExpectPerson, person)
	}
	return nil
}

// check records a step outcome against its expect_error.
func (h *Harness) check(index int, s Step, err error) {
	where := fmt.Sprintf("steps[%d] (%s at %v)", index, s.Op, s.At)
	switch {
	case s.ExpectError == "" && err != nil:
		h.result.AddError(fmt.Sprintf("%s: %v", where, err))
	case s.ExpectError != "" && err == nil:
		h.result.AddError(fmt.Sprintf("%s: expected error %s, got success", where, s.ExpectError))
	case s.ExpectError != "" && string(ir.CodeOf(err)) != s.ExpectError:
		h.result.AddError(fmt.Sprintf("%s: expected error %s, got %v", where, s.ExpectError, err))
	}
}

// valueFor converts a YAML value using the property's declared kind. When
// the property is unknown or the value does not fit, the kind is guessed
// from the YAML type so the store reports the violation itself.
func (h *Harness) valueFor(typeID ir.GroupTypeID, prop ir.PropertyID, raw any) ir.Value {
	def, err := h.manager.GroupPropertyDefinition(typeID, prop)
	if err != nil {
		return guess(raw)
	}
	return coerce(def.Kind, raw)
}

// coerce converts raw to kind, falling back to guess.
func coerce(kind ir.ValueKind, raw any) ir.Value {
	v, err := ir.ValueOf(kind, raw)
	if err != nil {
		return guess(raw)
	}
	return v
}

// guess picks a value kind from the YAML type of raw. nil stays nil.
func guess(raw any) ir.Value {
	switch val := raw.(type) {
	case nil:
		return nil
	case bool:
		return ir.Bool(val)
	case int:
		return ir.Int(val)
	case float64:
		return ir.Float(val)
	case string:
		return ir.Enum(val)
	default:
		obj, err := ir.NewObject(val)
		if err != nil {
			return nil
		}
		return obj
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
