package property

import (
	"fmt"

	"github.com/roach88/cohort/internal/index"
	"github.com/roach88/cohort/internal/ir"
)

// Clock reports the current simulation time.
type Clock interface {
	Now() float64
}

// Manager stores the values of one property across all group ids.
//
// Exactly one storage arm is populated, selected by the definition's kind.
type Manager struct {
	def       ir.PropertyDefinition
	clock     Clock
	definedAt float64

	// bool arm
	bools    *index.Bits
	boolsSet *index.Bits

	// int arm
	ints *index.Values[int64]

	// float arm, one of the two by width
	floats64 *index.Values[float64]
	floats32 *index.Values[float32]

	// enum arm
	ordinals *index.Ints
	ordinal  map[ir.Enum]int

	// object arm
	objects *index.Values[any]

	// assignment times, only when the definition tracks them
	times *index.Values[float64]
}

// NewManager returns an empty manager for def. The definition must already
// be valid. The definition time is taken from clock.
func NewManager(def ir.PropertyDefinition, clock Clock) *Manager {
	m := &Manager{
		def:       def,
		clock:     clock,
		definedAt: clock.Now(),
	}
	switch def.Kind {
	case ir.KindBool:
		m.bools = index.NewBits(0)
		m.boolsSet = index.NewBits(0)
	case ir.KindInt:
		m.ints = index.NewValues[int64](0)
	case ir.KindFloat:
		if def.Width() == 32 {
			m.floats32 = index.NewValues[float32](0)
		} else {
			m.floats64 = index.NewValues[float64](0)
		}
	case ir.KindEnum:
		m.ordinals = index.NewInts(0)
		m.ordinal = make(map[ir.Enum]int, len(def.Symbols))
		for i, s := range def.Symbols {
			m.ordinal[ir.Enum(s)] = i
		}
	case ir.KindObject:
		m.objects = index.NewValues[any](0)
	default:
		panic(fmt.Sprintf("property: unsupported kind %s", def.Kind))
	}
	if def.TrackTimes {
		m.times = index.NewValues[float64](0)
	}
	return m
}

// Definition returns the definition this manager was built for.
func (m *Manager) Definition() ir.PropertyDefinition {
	return m.def
}

// DefinedAt returns the simulation time the manager was created.
func (m *Manager) DefinedAt() float64 {
	return m.definedAt
}

// Set stores v as the explicit value for id and stamps the assignment time
// when tracked.
func (m *Manager) Set(id int, v ir.Value) {
	switch m.def.Kind {
	case ir.KindBool:
		b := v.(ir.Bool)
		if b {
			m.bools.Set(id)
		} else {
			m.bools.Unset(id)
		}
		m.boolsSet.Set(id)
	case ir.KindInt:
		m.ints.Set(id, int64(v.(ir.Int)))
	case ir.KindFloat:
		f := v.(ir.Float)
		if m.floats32 != nil {
			m.floats32.Set(id, float32(f))
		} else {
			m.floats64.Set(id, float64(f))
		}
	case ir.KindEnum:
		ord, ok := m.ordinal[v.(ir.Enum)]
		if !ok {
			panic(fmt.Sprintf("property: undeclared enum symbol %q", v))
		}
		m.ordinals.Set(id, ord)
	case ir.KindObject:
		m.objects.Set(id, v.(ir.Object).Data)
	}
	if m.times != nil {
		m.times.Set(id, m.clock.Now())
	}
}

// Explicit returns the explicitly assigned value for id, if any.
func (m *Manager) Explicit(id int) (ir.Value, bool) {
	switch m.def.Kind {
	case ir.KindBool:
		if !m.boolsSet.Get(id) {
			return nil, false
		}
		return ir.Bool(m.bools.Get(id)), true
	case ir.KindInt:
		v, ok := m.ints.Get(id)
		if !ok {
			return nil, false
		}
		return ir.Int(v), true
	case ir.KindFloat:
		if m.floats32 != nil {
			v, ok := m.floats32.Get(id)
			if !ok {
				return nil, false
			}
			return ir.Float(v), true
		}
		v, ok := m.floats64.Get(id)
		if !ok {
			return nil, false
		}
		return ir.Float(v), true
	case ir.KindEnum:
		ord := m.ordinals.Get(id)
		if ord == index.Unset {
			return nil, false
		}
		return ir.Enum(m.def.Symbols[ord]), true
	case ir.KindObject:
		v, ok := m.objects.Get(id)
		if !ok {
			return nil, false
		}
		return ir.Object{Data: v}, true
	}
	return nil, false
}

// Get returns the value for id: the explicit value when assigned, otherwise
// the definition's default. Returns nil when neither exists.
func (m *Manager) Get(id int) ir.Value {
	if v, ok := m.Explicit(id); ok {
		return v
	}
	return m.def.Default
}

// Time returns the time the value for id was last assigned. A value that was
// never assigned reports the definition time.
func (m *Manager) Time(id int) (float64, error) {
	if m.times == nil {
		return 0, ir.NewError(ir.ErrTimeNotTracked, "property does not track assignment times")
	}
	if t, ok := m.times.Get(id); ok {
		return t, nil
	}
	return m.definedAt, nil
}

// RemoveID drops everything stored for id. Ids are never reissued, so the
// slot is left in place.
func (m *Manager) RemoveID(id int) {
	switch m.def.Kind {
	case ir.KindBool:
		m.bools.Unset(id)
		m.boolsSet.Unset(id)
	case ir.KindInt:
		m.ints.Clear(id)
	case ir.KindFloat:
		if m.floats32 != nil {
			m.floats32.Clear(id)
		} else {
			m.floats64.Clear(id)
		}
	case ir.KindEnum:
		m.ordinals.Clear(id)
	case ir.KindObject:
		m.objects.Clear(id)
	}
	if m.times != nil {
		m.times.Clear(id)
	}
}
