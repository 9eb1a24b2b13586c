package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	ID       string // checkpoint id (default latest)
	Label    string // latest checkpoint with this label
	Output   string // output file path (default stdout)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a checkpoint as JSON or YAML",
		Long: `Export one stored checkpoint.

The checkpoint is read back, its digest verified, and it is printed as
canonical JSON (--format json or text) or YAML (--format yaml). Without
--id or --label the most recent checkpoint is exported.

Example:
  cohort export --db ./cohort.db
  cohort export --db ./cohort.db --label nightly --format yaml -o state.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{formatsAnnotation: "text,json,yaml"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $COHORT_DB)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "checkpoint id")
	cmd.Flags().StringVar(&opts.Label, "label", "", "export the latest checkpoint with this label")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.MarkFlagsMutuallyExclusive("id", "label")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	// Export writes raw documents; errors are always reported as text.
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    cmd.ErrOrStderr(),
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

	ctx := cmd.Context()
	id := opts.ID
	if id == "" {
		var info store.CheckpointInfo
		if opts.Label != "" {
			info, err = st.LatestLabeled(ctx, opts.Label)
		} else {
			info, err = st.LatestCheckpoint(ctx)
		}
		if err != nil {
			return formatter.FailWith(err)
		}
		id = info.ID
	}

	snap, info, err := st.ReadCheckpoint(ctx, id)
	if err != nil {
		return formatter.FailWith(err)
	}
	formatter.VerboseLog("Exporting checkpoint %s (%s, t=%v)", info.ID, info.Label, info.SimTime)

	var data []byte
	if opts.Format == "yaml" {
		data, err = group.EncodeSnapshotYAML(snap)
	} else {
		data, err = group.EncodeSnapshot(snap)
		data = append(data, '\n')
	}
	if err != nil {
		return formatter.FailWith(err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// openExisting opens a checkpoint database that must already exist.
func openExisting(path string) (*store.Store, error) {
	if path == "" {
		return nil, errors.New("--db is required (or set COHORT_DB)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}
