package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cohort/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config holds environment defaults. Flags override it.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// formatsAnnotation lets a command accept formats beyond ValidFormats.
const formatsAnnotation = "cohort/formats"

// NewRootCommand creates the root command for the cohort CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cohort",
		Short: "cohort - group membership store for agent simulations",
		Long: `Compile group schemas, run group scenarios against the store and manage
SQLite checkpoints of the resulting state.

Defaults are read from COHORT_SEED, COHORT_DB, COHORT_LOG_LEVEL and
COHORT_FORMAT; flags override them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			opts.Config = cfg
			if !cmd.Flags().Changed("format") {
				opts.Format = cfg.Format
			}

			if !isValidFormat(cmd, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, formatsFor(cmd)))
			}
			configureLogging(opts)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

// configureLogging installs a stderr text handler at the configured
// level, or debug when --verbose is set.
func configureLogging(opts *RootOptions) {
	level := opts.Config.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// formatsFor returns the formats a command accepts.
func formatsFor(cmd *cobra.Command) []string {
	if extra, ok := cmd.Annotations[formatsAnnotation]; ok {
		return strings.Split(extra, ",")
	}
	return ValidFormats
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(cmd *cobra.Command, format string) bool {
	return slices.Contains(formatsFor(cmd), format)
}

// database resolves the --db flag against COHORT_DB.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	return o.Config.DBPath
}
