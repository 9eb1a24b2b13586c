package cli

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cohort/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored checkpoints",
		Long: `List every checkpoint in a database, oldest first.

Example:
  cohort inspect --db ./cohort.db
  cohort inspect --db ./cohort.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $COHORT_DB)")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openExisting(opts.database(opts.Database))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	checkpoints, err := st.ListCheckpoints(cmd.Context())
	if err != nil {
		return formatter.FailWith(err)
	}

	if opts.Format == "json" {
		return formatter.Success(checkpoints)
	}
	return outputCheckpointTable(formatter, checkpoints)
}

func outputCheckpointTable(formatter *OutputFormatter, checkpoints []store.CheckpointInfo) error {
	if len(checkpoints) == 0 {
		fmt.Fprintln(formatter.Writer, "No checkpoints.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tSIM TIME\tNEXT GROUP\tDIGEST")
	for _, c := range checkpoints {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n", c.ID, c.Label, c.SimTime, c.NextGroupID, shortDigest(c.Digest))
	}
	return tw.Flush()
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
