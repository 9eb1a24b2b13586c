package group

import (
	"fmt"

	"github.com/roach88/cohort/internal/ir"
)

// ApplySchema registers compiled group types and their properties in order.
// It stops at the first failure; types registered before it remain.
func (m *Manager) ApplySchema(specs []ir.GroupTypeSpec) error {
	for _, spec := range specs {
		if err := m.AddGroupType(spec.ID); err != nil {
			return fmt.Errorf("group type %q: %w", spec.ID, err)
		}
		for _, p := range spec.Properties {
			err := m.DefineGroupProperty(PropertyDefinitionRequest{
				Type:       spec.ID,
				Property:   p.ID,
				Definition: p.Definition,
			})
			if err != nil {
				return fmt.Errorf("group type %q property %q: %w", spec.ID, p.ID, err)
			}
		}
	}
	return nil
}
