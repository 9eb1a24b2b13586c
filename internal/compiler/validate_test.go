package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/ir"
)

func TestValidate_Valid(t *testing.T) {
	specs := []ir.GroupTypeSpec{
		{ID: "Household", Properties: []ir.PropertySpec{
			{ID: "income", Definition: ir.PropertyDefinition{Kind: ir.KindInt, Default: ir.Int(0)}},
		}},
		{ID: "School"},
	}
	assert.Empty(t, Validate(specs))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	specs := []ir.GroupTypeSpec{
		{ID: "Household", Properties: []ir.PropertySpec{
			{ID: "income", Definition: ir.PropertyDefinition{Kind: ir.KindInt}},
			{ID: "income", Definition: ir.PropertyDefinition{Kind: ir.KindInt}},
			{ID: "bad-id", Definition: ir.PropertyDefinition{Kind: ir.KindEnum}},
		}},
		{ID: "Household"},
	}

	errs := Validate(specs)
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{
		ErrDuplicateProperty,
		ErrInvalidIdentifier,
		ErrMalformedProperty,
		ErrDuplicateType,
	}, codes)
}

func TestValidationError_Error(t *testing.T) {
	errs := Validate([]ir.GroupTypeSpec{{ID: "1st"}})
	require.Len(t, errs, 1)
	assert.Equal(t, `[E101] group_type[0]: group type id "1st" is not an identifier`, errs[0].Error())
}
