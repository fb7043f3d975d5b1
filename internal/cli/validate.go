package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/txtpgen/internal/generator"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/rebuild"
)

// BankInfo describes one loaded bank.
type BankInfo struct {
	File    string `json:"file"`
	ID      uint32 `json:"id"`
	Version int    `json:"version"`
	Objects int    `json:"objects"`
	Entries int    `json:"entries"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool       `json:"valid"`
	Banks     []BankInfo `json:"banks"`
	Outputs   int        `json:"outputs"`
	Errors    []string   `json:"errors,omitempty"`
	Missing   []string   `json:"missing,omitempty"`
	Ambiguous []uint32   `json:"ambiguous,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var params string

	cmd := &cobra.Command{
		Use:   "validate <dump>...",
		Short: "Check bank dumps without writing outputs",
		Long: `Load bank dumps and walk every entry point in memory.

Reports per-bank object counts, objects that failed to build and
references to objects no loaded bank holds. Nothing is written.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, params, args, cmd)
		},
	}
	cmd.Flags().StringVarP(&params, "params", "p", "", "fixed gamesync values")

	return cmd
}

func runValidate(opts *RootOptions, params string, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	banks, err := loadBanks(formatter, paths)
	if err != nil {
		return err
	}

	genOpts := generator.DefaultOptions()
	genOpts.Params = params
	genOpts.GenerateUnused = true
	gen, err := generator.New(banks, genOpts, generator.WithSink(generator.NewMemorySink()))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidOption, "invalid options", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := gen.Run(ctx)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "validation stopped", err)
	}

	result := ValidationResult{
		Valid:     len(res.Errors) == 0,
		Banks:     make([]BankInfo, 0, len(banks)),
		Outputs:   res.Stats.Created,
		Ambiguous: res.Diagnostics.Ambiguous,
	}
	for _, b := range banks {
		result.Banks = append(result.Banks, bankInfo(b))
	}
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, e.Error())
	}
	for _, re := range res.Diagnostics.Errors() {
		if re.Code == rebuild.ErrCodeMissingReference {
			result.Missing = append(result.Missing, re.Error())
		}
	}

	if err := printValidation(formatter, result); err != nil {
		return err
	}
	if !result.Valid {
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeEntryFailed, Message: fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))}
	}
	return nil
}

func bankInfo(b graph.Bank) BankInfo {
	info := BankInfo{File: b.Filename(), ID: b.ID(), Version: b.Version()}
	items := b.Find1(graph.ByName("listLoadedItem"))
	if items == nil {
		return info
	}
	for _, n := range items.Children() {
		info.Objects++
		if rebuild.KindOf(n.Name()).IsEntry() {
			info.Entries++
		}
	}
	return info
}

func printValidation(f *OutputFormatter, r ValidationResult) error {
	if f.JSON() {
		if r.Valid {
			return f.Success(r)
		}
		return f.respond(CLIResponse{
			Status: "error",
			Data:   r,
			Error: &CLIError{
				Code:    ErrCodeEntryFailed,
				Message: r.Errors[0],
			},
		})
	}

	w := f.Writer
	for _, b := range r.Banks {
		fmt.Fprintf(w, "%s: %d object(s), %d entry point(s)\n", b.File, b.Objects, b.Entries)
	}
	for _, m := range r.Missing {
		fmt.Fprintf(w, "  missing: %s\n", m)
	}
	for _, id := range r.Ambiguous {
		fmt.Fprintf(w, "  repeated in several banks: %d\n", id)
	}
	if r.Valid {
		fmt.Fprintf(w, "✓ All banks valid (%d output(s))\n", r.Outputs)
		return nil
	}

	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  %s: %s\n", ErrCodeEntryFailed, msg)
	}
	return nil
}
