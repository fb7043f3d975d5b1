package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/txtpgen/internal/store"
)

// RunReport is one run with its outputs and diagnostics.
type RunReport struct {
	Run         store.Run          `json:"run"`
	Outputs     []store.Output     `json:"outputs"`
	Diagnostics []store.Diagnostic `json:"diagnostics"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "report [run-id|latest]",
		Short: "Show recorded generation runs",
		Long: `Show runs recorded with generate --db.

Without arguments, every run is listed, oldest first. With a run id, or
"latest", the outputs and diagnostics of that run are shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReport(rootOpts, database, runID, cmd)
		},
	}
	cmd.Flags().StringVar(&database, "db", "", "path to the run database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *RootOptions, database, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := store.Open(database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		return printRuns(formatter, runs)
	}

	rep, err := loadReport(ctx, st, runID)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}
	return printReport(formatter, rep)
}

func loadReport(ctx context.Context, st *store.Store, runID string) (RunReport, error) {
	var rep RunReport
	var err error
	if runID == "latest" {
		rep.Run, err = st.LatestRun(ctx)
	} else {
		rep.Run, err = st.ReadRun(ctx, runID)
	}
	if err != nil {
		return rep, err
	}
	if rep.Outputs, err = st.ReadOutputs(ctx, rep.Run.ID, false); err != nil {
		return rep, err
	}
	if rep.Diagnostics, err = st.ReadDiagnostics(ctx, rep.Run.ID); err != nil {
		return rep, err
	}
	return rep, nil
}

func printRuns(f *OutputFormatter, runs []store.Run) error {
	if f.JSON() {
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "%d  %s  created=%d duplicates=%d errors=%d  v%s\n",
			r.Seq, r.ID, r.Stats.Created, r.Stats.Duplicates, r.Stats.Errors, r.GeneratorVersion)
	}
	return nil
}

func printReport(f *OutputFormatter, rep RunReport) error {
	if f.JSON() {
		return f.respond(CLIResponse{Status: "ok", Data: rep, RunID: rep.Run.ID})
	}

	w := f.Writer
	r := rep.Run
	fmt.Fprintf(w, "Run %s (generator %s)\n", r.ID, r.GeneratorVersion)
	fmt.Fprintf(w, "  options: %s\n", r.OptionsHash)
	fmt.Fprintf(w, "  created=%d duplicates=%d unused=%d streams=%d internals=%d errors=%d\n",
		r.Stats.Created, r.Stats.Duplicates, r.Stats.Unused, r.Stats.Streams, r.Stats.Internals, r.Stats.Errors)

	fmt.Fprintf(w, "\nOutputs (%d):\n", len(rep.Outputs))
	for _, o := range rep.Outputs {
		fmt.Fprintf(w, "  %s  %s\n", o.ContentHash[:12], o.Name)
	}
	if len(rep.Diagnostics) > 0 {
		fmt.Fprintf(w, "\nDiagnostics (%d):\n", len(rep.Diagnostics))
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(w, "  %s  bank=%d id=%d  %s\n", d.Code, d.Bank, d.ObjectID, d.Detail)
		}
	}
	return nil
}
