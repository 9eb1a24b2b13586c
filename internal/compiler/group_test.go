package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cohort/internal/ir"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v
}

func TestCompileGroupTypeBasic(t *testing.T) {
	v := compileString(t, `
		group_type: Household: property: {
			income:  {kind: "int", default: 0}
			tenure:  {kind: "enum", symbols: ["own", "rent"], mutable: false}
			density: {kind: "float", width: 32, track_times: true}
		}
	`)

	spec, err := CompileGroupType(v.LookupPath(cue.ParsePath("group_type.Household")))
	require.NoError(t, err)

	assert.Equal(t, ir.GroupTypeID("Household"), spec.ID)
	require.Len(t, spec.Properties, 3)

	assert.Equal(t, ir.PropertySpec{
		ID:         "income",
		Definition: ir.PropertyDefinition{Kind: ir.KindInt, Default: ir.Int(0), Mutable: true},
	}, spec.Properties[0])
	assert.Equal(t, ir.PropertySpec{
		ID:         "tenure",
		Definition: ir.PropertyDefinition{Kind: ir.KindEnum, Symbols: []string{"own", "rent"}},
	}, spec.Properties[1])
	assert.Equal(t, ir.PropertySpec{
		ID:         "density",
		Definition: ir.PropertyDefinition{Kind: ir.KindFloat, FloatWidth: 32, Mutable: true, TrackTimes: true},
	}, spec.Properties[2])
}

func TestCompileGroupTypeDefaults(t *testing.T) {
	v := compileString(t, `
		group_type: School: property: {
			open:  {kind: "bool", default: true}
			ratio: {kind: "float", default: 1}
			small: {kind: "int", width: 8, default: -3}
			grade: {kind: "enum", symbols: ["a", "b"], default: "b"}
			meta:  {kind: "object", default: {name: "Elm", sizes: [1, 2]}}
		}
	`)

	spec, err := CompileGroupType(v.LookupPath(cue.ParsePath("group_type.School")))
	require.NoError(t, err)
	require.Len(t, spec.Properties, 5)

	assert.Equal(t, ir.Bool(true), spec.Properties[0].Definition.Default)
	assert.Equal(t, ir.Float(1), spec.Properties[1].Definition.Default)
	assert.Equal(t, ir.Int(-3), spec.Properties[2].Definition.Default)
	assert.Equal(t, 8, spec.Properties[2].Definition.IntWidth)
	assert.Equal(t, ir.Enum("b"), spec.Properties[3].Definition.Default)
	meta, err := ir.MarshalCanonical(spec.Properties[4].Definition.Default)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Elm","sizes":[1,2]}`, string(meta))
}

func TestCompileGroupTypeNoProperties(t *testing.T) {
	v := compileString(t, `group_type: Empty: {}`)

	spec, err := CompileGroupType(v.LookupPath(cue.ParsePath("group_type.Empty")))
	require.NoError(t, err)
	assert.Equal(t, ir.GroupTypeID("Empty"), spec.ID)
	assert.Empty(t, spec.Properties)
}

func TestCompileGroupTypeErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "missing kind",
			src:   `group_type: T: property: x: {default: 1}`,
			field: "property.x.kind",
		},
		{
			name:  "unknown kind",
			src:   `group_type: T: property: x: {kind: "date"}`,
			field: "property.x.kind",
		},
		{
			name:  "unknown field",
			src:   `group_type: T: property: x: {kind: "int", colour: "red"}`,
			field: "property.x.colour",
		},
		{
			name:  "width on enum",
			src:   `group_type: T: property: x: {kind: "enum", symbols: ["a"], width: 8}`,
			field: "property.x.width",
		},
		{
			name:  "bad int width",
			src:   `group_type: T: property: x: {kind: "int", width: 12}`,
			field: "property.x",
		},
		{
			name:  "default out of range",
			src:   `group_type: T: property: x: {kind: "int", width: 8, default: 300}`,
			field: "property.x",
		},
		{
			name:  "enum default not a symbol",
			src:   `group_type: T: property: x: {kind: "enum", symbols: ["a"], default: "z"}`,
			field: "property.x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compileString(t, tt.src)
			_, err := CompileGroupType(v.LookupPath(cue.ParsePath("group_type.T")))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileGroupTypeDefaultKindMismatch(t *testing.T) {
	v := compileString(t, `group_type: T: property: x: {kind: "bool", default: "yes"}`)

	_, err := CompileGroupType(v.LookupPath(cue.ParsePath("group_type.T")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
}

func TestCompileSchema(t *testing.T) {
	v := compileString(t, `
		group_type: Household: property: income: {kind: "int", default: 0}
		group_type: School: property: open: {kind: "bool", default: true}
		group_type: Work: {}
	`)

	specs, err := CompileSchema(v)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, ir.GroupTypeID("Household"), specs[0].ID)
	assert.Equal(t, ir.GroupTypeID("School"), specs[1].ID)
	assert.Equal(t, ir.GroupTypeID("Work"), specs[2].ID)
}

func TestCompileSchemaEmpty(t *testing.T) {
	specs, err := CompileSchema(compileString(t, `other: 1`))
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "property.x", Message: "bad"}
	assert.Equal(t, "property.x: bad", err.Error())
}
