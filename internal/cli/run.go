package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cohort/internal/harness"
	"github.com/roach88/cohort/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Label    string
	Seed     uint64
}

// RunSummary describes one scenario run.
type RunSummary struct {
	Scenario    string   `json:"scenario"`
	Pass        bool     `json:"pass"`
	SimTime     float64  `json:"sim_time"`
	Steps       int      `json:"steps"`
	Events      int      `json:"events"`
	GroupTypes  int      `json:"group_types"`
	Groups      int      `json:"groups"`
	Memberships int      `json:"memberships"`
	Errors      []string `json:"errors,omitempty"`
	Checkpoint  string   `json:"checkpoint,omitempty"`
	Digest      string   `json:"digest,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against the group store",
		Long: `Run one scenario file: apply its schema, schedule its steps on the
tick engine, then evaluate its assertions.

With --db the final state is written to the SQLite database as a
checkpoint (labelled with the scenario name unless --label is given).
The database is created if it does not exist.

Exit codes:
  0 - Scenario passed
  1 - A step or assertion failed
  2 - Command error (invalid scenario, database error, etc.)

Example:
  cohort run ./scenarios/households.yaml
  cohort run ./scenarios/households.yaml --db ./cohort.db --label nightly`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $COHORT_DB)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "checkpoint label (default scenario name)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for scenarios that declare none (default $COHORT_SEED)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err.Error(), nil)
	}
	if scenario.Seed == 0 {
		scenario.Seed = opts.seed()
	}

	// Cancel the run on interrupt; the engine stops at the next step.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("running scenario", "scenario", scenario.Name, "steps", len(scenario.Steps), "seed", scenario.Seed)
	result, err := harness.RunContext(ctx, scenario, harness.WithLogger(slog.Default()))
	if err != nil {
		return formatter.FailWith(err)
	}
	slog.Info("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "sim_time", result.SimTime)

	summary := summarize(scenario, result)

	if db := opts.database(opts.Database); db != "" {
		label := opts.Label
		if label == "" {
			label = scenario.Name
		}
		info, err := writeCheckpoint(ctx, db, label, result)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		summary.Checkpoint = info.ID
		summary.Digest = info.Digest
		formatter.VerboseLog("Wrote checkpoint %s (%s) to %s", info.ID, label, db)
	}

	if err := outputRunSummary(formatter, summary); err != nil {
		return err
	}
	if !summary.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed with %d error(s)", summary.Scenario, len(summary.Errors)))
	}
	return nil
}

// seed resolves --seed against COHORT_SEED.
func (o *RunOptions) seed() uint64 {
	if o.Seed != 0 {
		return o.Seed
	}
	return o.Config.Seed
}

func summarize(scenario *harness.Scenario, result *harness.Result) RunSummary {
	return RunSummary{
		Scenario:    scenario.Name,
		Pass:        result.Pass,
		SimTime:     result.SimTime,
		Steps:       len(scenario.Steps),
		Events:      len(result.Trace),
		GroupTypes:  len(result.Snapshot.GroupTypes),
		Groups:      len(result.Snapshot.Groups),
		Memberships: len(result.Snapshot.Memberships),
		Errors:      result.Errors,
	}
}

func writeCheckpoint(ctx context.Context, path, label string, result *harness.Result) (store.CheckpointInfo, error) {
	st, err := store.Open(path)
	if err != nil {
		return store.CheckpointInfo{}, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	info, err := st.WriteCheckpoint(ctx, label, result.SimTime, result.Snapshot)
	if err != nil {
		return store.CheckpointInfo{}, err
	}
	slog.Info("checkpoint written", "id", info.ID, "label", label, "digest", info.Digest)
	return info, nil
}

func outputRunSummary(formatter *OutputFormatter, s RunSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	w := formatter.Writer
	mark := "✓"
	if !s.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s (t=%v)\n", mark, s.Scenario, s.SimTime)
	fmt.Fprintf(w, "  %d step(s), %d event(s)\n", s.Steps, s.Events)
	fmt.Fprintf(w, "  %d group type(s), %d group(s), %d membership(s)\n", s.GroupTypes, s.Groups, s.Memberships)
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if s.Checkpoint != "" {
		fmt.Fprintf(w, "Checkpoint %s\n", s.Checkpoint)
	}
	return nil
}
