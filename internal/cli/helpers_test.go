package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const householdSchema = `
package schema

group_type: Household: property: {
	size:   {kind: "int", default: 1}
	tenure: {kind: "enum", symbols: ["own", "rent"], mutable: false}
}
`

const householdScenario = `
name: households
seed: 3
schema: schema
people: 3
steps:
  - {at: 0, op: add_group, group_type: Household, values: {tenure: own}}
  - {at: 1, op: add_member, person: 0, group: 0}
  - {at: 1, op: add_member, person: 2, group: 0}
  - {at: 2, op: set_property, group: 0, property: size, value: 2}
assertions:
  - {type: group_members, group: 0, people: [0, 2]}
  - {type: property_value, group: 0, property: size, value: 2}
`

const failingScenario = `
name: failing
people: 1
steps:
  - {at: 0, op: add_group_type, group_type: A}
  - {at: 0, op: add_member, person: 0, group: 0}
`

// writeFile writes content under dir, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// scenarioDir lays out a passing household scenario with its schema.
func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "schema/households.cue", householdSchema)
	writeFile(t, dir, "households.yaml", householdScenario)
	return dir
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// checkpointDB runs the household scenario into a fresh database under the
// given labels and returns the database path.
func checkpointDB(t *testing.T, labels ...string) string {
	t.Helper()
	dir := scenarioDir(t)
	db := filepath.Join(t.TempDir(), "cohort.db")
	for _, label := range labels {
		_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}),
			filepath.Join(dir, "households.yaml"), "--db", db, "--label", label)
		require.NoError(t, err)
	}
	return db
}
