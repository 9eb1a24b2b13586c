package property

import (
	"github.com/roach88/cohort/internal/index"
	"github.com/roach88/cohort/internal/ir"
)

// Catalog holds the property schema and value storage of one group type.
//
// Properties defined without a default are mandatory. Each one is given a
// bit index so creation requests can be checked against a reusable bitset.
type Catalog struct {
	clock       Clock
	definitions map[ir.PropertyID]ir.PropertyDefinition
	managers    map[ir.PropertyID]*Manager
	order       []ir.PropertyID
	mandatory   map[ir.PropertyID]int
	coverage    index.Bits
}

// NewCatalog returns an empty catalog. Definition times are read from clock.
func NewCatalog(clock Clock) *Catalog {
	return &Catalog{
		clock:       clock,
		definitions: make(map[ir.PropertyID]ir.PropertyDefinition),
		managers:    make(map[ir.PropertyID]*Manager),
		mandatory:   make(map[ir.PropertyID]int),
	}
}

// ValidateDefinition checks that id can be defined with def.
func (c *Catalog) ValidateDefinition(id ir.PropertyID, def ir.PropertyDefinition) error {
	if id.IsNull() {
		return ir.NewError(ir.ErrNullPropertyID, "property id is empty")
	}
	if _, ok := c.definitions[id]; ok {
		return ir.NewError(ir.ErrDuplicateProperty, "property %q is already defined", id).With("property", id)
	}
	if def.Kind == 0 {
		return ir.NewError(ir.ErrNullDefinition, "property %q has no value kind", id).With("property", id)
	}
	return def.Validate()
}

// Define adds a property and creates its manager.
func (c *Catalog) Define(id ir.PropertyID, def ir.PropertyDefinition) (*Manager, error) {
	if err := c.ValidateDefinition(id, def); err != nil {
		return nil, err
	}
	def.Symbols = append([]string(nil), def.Symbols...)
	m := NewManager(def, c.clock)
	c.definitions[id] = def
	c.managers[id] = m
	c.order = append(c.order, id)
	if !def.HasDefault() {
		c.mandatory[id] = len(c.mandatory)
	}
	return m, nil
}

// Definition returns the definition of id.
func (c *Catalog) Definition(id ir.PropertyID) (ir.PropertyDefinition, bool) {
	def, ok := c.definitions[id]
	return def, ok
}

// Manager returns the value storage of id, or nil.
func (c *Catalog) Manager(id ir.PropertyID) *Manager {
	return c.managers[id]
}

// Has reports whether id is defined.
func (c *Catalog) Has(id ir.PropertyID) bool {
	_, ok := c.definitions[id]
	return ok
}

// PropertyIDs returns the defined property ids in definition order.
func (c *Catalog) PropertyIDs() []ir.PropertyID {
	out := make([]ir.PropertyID, len(c.order))
	copy(out, c.order)
	return out
}

// DefinitionTime returns the simulation time id was defined.
func (c *Catalog) DefinitionTime(id ir.PropertyID) (float64, bool) {
	m, ok := c.managers[id]
	if !ok {
		return 0, false
	}
	return m.DefinedAt(), true
}

// HasMandatory reports whether any property lacks a default.
func (c *Catalog) HasMandatory() bool {
	return len(c.mandatory) > 0
}

// IsMandatory reports whether id is defined without a default.
func (c *Catalog) IsMandatory(id ir.PropertyID) bool {
	_, ok := c.mandatory[id]
	return ok
}

// CheckCreationCoverage verifies that values assigns every mandatory
// property. Ids in values that are not mandatory are ignored here.
func (c *Catalog) CheckCreationCoverage(values map[ir.PropertyID]ir.Value) error {
	if len(c.mandatory) == 0 {
		return nil
	}
	c.coverage.Resize(len(c.mandatory))
	c.coverage.ClearAll()
	for id := range values {
		if bit, ok := c.mandatory[id]; ok {
			c.coverage.Set(bit)
		}
	}
	if c.coverage.Count() == len(c.mandatory) {
		return nil
	}
	for _, id := range c.order {
		if bit, ok := c.mandatory[id]; ok && !c.coverage.Get(bit) {
			return ir.NewError(ir.ErrInsufficientValue, "no value for property %q, which has no default", id).With("property", id)
		}
	}
	return ir.NewError(ir.ErrInsufficientValue, "mandatory property values missing")
}

// ValidateValue checks that v can be assigned to property id.
func (c *Catalog) ValidateValue(id ir.PropertyID, v ir.Value) error {
	if id.IsNull() {
		return ir.NewError(ir.ErrNullPropertyID, "property id is empty")
	}
	def, ok := c.definitions[id]
	if !ok {
		return ir.NewError(ir.ErrUnknownPropertyID, "property %q is not defined", id).With("property", id)
	}
	return ValidateAgainst(def, id, v)
}

// ValidateMutable checks that property id may be changed after creation.
func (c *Catalog) ValidateMutable(id ir.PropertyID) error {
	def, ok := c.definitions[id]
	if !ok {
		return ir.NewError(ir.ErrUnknownPropertyID, "property %q is not defined", id).With("property", id)
	}
	if !def.Mutable {
		return ir.NewError(ir.ErrImmutableValue, "property %q is immutable", id).With("property", id)
	}
	return nil
}

// ValidateAgainst checks v against def without a catalog lookup.
func ValidateAgainst(def ir.PropertyDefinition, id ir.PropertyID, v ir.Value) error {
	if v == nil {
		return ir.NewError(ir.ErrNullValue, "value for property %q is null", id).With("property", id)
	}
	if !def.Accepts(v) {
		return ir.NewError(ir.ErrIncompatibleValue, "value %v is not assignable to %s property %q", v, def.Kind, id).
			With("property", id)
	}
	return nil
}

// CoverageSet tracks which ids of a dense id space have been covered.
// It is reused across calls; Begin clears it.
type CoverageSet struct {
	bits index.Bits
}

// Begin clears the set and sizes it for ids below n.
func (s *CoverageSet) Begin(n int) {
	s.bits.Resize(n)
	s.bits.ClearAll()
}

// Mark records id as covered.
func (s *CoverageSet) Mark(id int) {
	s.bits.Set(id)
}

// Covered reports whether id was marked since the last Begin.
func (s *CoverageSet) Covered(id int) bool {
	return s.bits.Get(id)
}
