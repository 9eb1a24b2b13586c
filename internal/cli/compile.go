package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled group types.
type CompilationResult struct {
	GroupTypes []group.TypeSnapshot `json:"group_types"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema-dir>",
		Short: "Compile CUE group schemas",
		Long: `Compile CUE group type schemas to canonical JSON.

Every group_type in the directory is compiled and validated; all errors
are reported with their CUE positions.

Example:
  cohort compile ./schema
  cohort compile ./schema -o schema.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadSchema(schemaDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		return formatter.FailWith(loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, schemaDir)
	for _, spec := range loadResult.Types {
		formatter.VerboseLog("Compiled group type: %s", spec.ID)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{GroupTypes: group.SchemaSnapshot(loadResult.Types)}

	if opts.Output != "" {
		if err := writeSchemaToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d group type(s)\n\n", len(result.GroupTypes))
	for _, ts := range result.GroupTypes {
		fmt.Fprintf(w, "  %s: %d propert%s\n", ts.ID, len(ts.Properties), plural(len(ts.Properties), "y", "ies"))
		for _, p := range ts.Properties {
			fmt.Fprintf(w, "    %s %s%s\n", p.ID, p.Kind, propertyFlags(p))
		}
	}
	fmt.Fprintln(w)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical schema to %s\n", outputFile)
	}
	return nil
}

func propertyFlags(p group.PropertySnapshot) string {
	var s string
	if p.Default == nil {
		s += " mandatory"
	}
	if !p.Mutable {
		s += " immutable"
	}
	if p.TrackTimes {
		s += " timed"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// outputCompileErrors outputs every compilation error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			_, cliErrors[i] = Classify(err)
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		_, cliErr := Classify(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErr.Code, cliErr.Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeSchemaToFile writes the compiled schema as canonical JSON.
func writeSchemaToFile(result *CompilationResult, filename string) error {
	snap := group.Snapshot{
		Version:     ir.SnapshotVersion,
		GroupTypes:  result.GroupTypes,
		Groups:      []group.GroupSnapshot{},
		Memberships: []group.Membership{},
	}
	data, err := group.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
