package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/household_lifecycle.yaml")
	require.NoError(t, err)

	assert.Equal(t, "household_lifecycle", s.Name)
	assert.Equal(t, uint64(7), s.Seed)
	assert.Equal(t, 4, s.People)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "..", "schema"), s.SchemaDir())
	require.Len(t, s.Steps, 15)
	assert.Equal(t, OpAddGroup, s.Steps[0].Op)
	assert.Equal(t, map[string]any{"tenure": "own"}, s.Steps[0].Values)
	require.NotNil(t, s.Steps[0].ExpectGroup)
	assert.Equal(t, 0, *s.Steps[0].ExpectGroup)
	assert.Equal(t, "IMMUTABLE_VALUE", s.Steps[6].ExpectError)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
steps:
  - at: 0
    op: add_group_type
    group_type: A
assertion: []
`))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "steps: [{at: 0, op: add_group_type, group_type: A}]",
			want: "name is required",
		},
		{
			name: "no steps",
			yaml: "name: x",
			want: "steps list is required",
		},
		{
			name: "unknown op",
			yaml: "name: x\nsteps: [{at: 0, op: teleport}]",
			want: `unknown op "teleport"`,
		},
		{
			name: "negative time",
			yaml: "name: x\nsteps: [{at: -1, op: add_group_type, group_type: A}]",
			want: "finite non-negative time",
		},
		{
			name: "member without group",
			yaml: "name: x\nsteps: [{at: 0, op: add_member, person: 0}]",
			want: "group is required for add_member",
		},
		{
			name: "define without kind",
			yaml: "name: x\nsteps: [{at: 0, op: define_property, group_type: A, property: p}]",
			want: "kind is required",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\nsteps: [{at: 0, op: add_group_type, group_type: A}]\nassertions: [{type: vibes}]",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "count without count",
			yaml: "name: x\nsteps: [{at: 0, op: add_group_type, group_type: A}]\nassertions: [{type: group_count, group_type: A}]",
			want: "count is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaDir(t *testing.T) {
	s := &Scenario{Schema: "schema", BaseDir: "dir"}
	assert.Equal(t, filepath.Join("dir", "schema"), s.SchemaDir())

	abs := filepath.Join(os.TempDir(), "schema")
	s.Schema = abs
	assert.Equal(t, abs, s.SchemaDir())

	s.Schema = ""
	assert.Equal(t, "", s.SchemaDir())
}
