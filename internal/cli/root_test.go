package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cohort", cmd.Use)
	assert.Contains(t, cmd.Long, "COHORT_DB")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "run", "test", "export", "inspect"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"compile", []string{"output"}},
		{"run", []string{"db", "label", "seed"}},
		{"test", []string{"update", "filter"}},
		{"export", []string{"db", "id", "label", "output"}},
		{"inspect", []string{"db"}},
	}

	root := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for _, name := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag --%s", name)
			}
		})
	}
}

func TestFormatValidation(t *testing.T) {
	root := NewRootCommand()
	compileCmd, _, err := root.Find([]string{"compile"})
	require.NoError(t, err)
	exportCmd, _, err := root.Find([]string{"export"})
	require.NoError(t, err)

	assert.True(t, isValidFormat(compileCmd, "text"))
	assert.True(t, isValidFormat(compileCmd, "json"))
	assert.False(t, isValidFormat(compileCmd, "yaml"))
	assert.False(t, isValidFormat(compileCmd, ""))
	assert.False(t, isValidFormat(compileCmd, "TEXT"))

	assert.True(t, isValidFormat(exportCmd, "yaml"))
	assert.True(t, isValidFormat(exportCmd, "json"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(NewRootCommand(), "--format", "invalid", "compile", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("COHORT_FORMAT", "json")
	dir := scenarioDir(t)

	out, _, err := execute(NewRootCommand(), "compile", dir+"/schema")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestFormatFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("COHORT_FORMAT", "json")
	dir := scenarioDir(t)

	out, _, err := execute(NewRootCommand(), "--format", "text", "compile", dir+"/schema")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 group type(s)")
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("COHORT_LOG_LEVEL", "loud")

	_, _, err := execute(NewRootCommand(), "compile", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
