package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/txtpgen/internal/config"
	"github.com/roach88/txtpgen/internal/generator"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/store"
)

// DefaultOutputDir is created next to the first input when no output
// directory is configured.
const DefaultOutputDir = "txtp"

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions

	Output     string
	ConfigPath string
	Database   string
	Externals  string
	DryRun     bool

	// Options receives the session flags; only the ones set on the
	// command line override the project file.
	Options generator.Options

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs generator.RunIDGenerator
}

// GenerateSummary is the payload printed after a run.
type GenerateSummary struct {
	RunID       string          `json:"run_id"`
	OutputDir   string          `json:"output_dir,omitempty"`
	Stats       generator.Stats `json:"stats"`
	Outputs     []string        `json:"outputs"`
	Errors      []string        `json:"errors,omitempty"`
	Missing     int             `json:"missing_references"`
	MissingBank []string        `json:"missing_banks,omitempty"`
	Banks       []string        `json:"banks,omitempty"`
	Stored      bool            `json:"stored,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts, Options: generator.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "generate <dump>...",
		Short: "Generate TXTP files from bank dumps",
		Long: `Generate one TXTP playlist per playable entry point of the given banks.

Inputs are bank dumps (.yaml, .cue or .cbor) or directories holding them.
Settings come from built-in defaults, then the nearest txtpgen.toml or
txtpgen.yaml above the first input, then command line flags.

Example:
  txtpgen generate ./banks
  txtpgen generate bgm.yaml sfx.yaml -o out --params "(music=calm)"
  txtpgen generate ./banks --unused --db runs.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	f := cmd.Flags()
	o := &opts.Options
	f.StringVarP(&opts.Output, "output", "o", "", "output directory (default: txtp next to the first input)")
	f.StringVar(&opts.ConfigPath, "config", "", "project file (default: nearest txtpgen.toml or txtpgen.yaml)")
	f.StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	f.StringVar(&opts.Externals, "externals", "", "externals list (default: externals.txt next to the first bank)")
	f.BoolVar(&opts.DryRun, "dry-run", false, "generate without writing files")

	f.StringVar(&o.WemDir, "wem-dir", o.WemDir, "prefix of source paths")
	f.StringVarP(&o.Params, "params", "p", "", `fixed gamesync values, like "(state=value)[switch=value]"`)
	f.StringVar(&o.MasterVolume, "volume", "", `master volume: "-3dB", "0.5", "50%" or "auto"`)
	f.BoolVar(&o.GenerateUnused, "unused", false, "also generate objects no event reaches")
	f.BoolVar(&o.BankOrder, "bank-order", false, "generate entries in bank order instead of named first")
	f.BoolVar(&o.Dupes, "dupes", false, "write duplicated outputs too")
	f.BoolVar(&o.DupesExact, "dupes-exact", false, "compare whole texts, including names, for duplicates")
	f.BoolVar(&o.BankMarks, "bank-marks", false, "mark outputs using in-bank media")
	f.BoolVar(&o.BankSkip, "bank-skip", false, "do not list in-bank media banks")
	f.BoolVar(&o.Lang, "lang", false, "mark localized outputs")
	f.BoolVar(&o.AltExts, "alt-exts", false, "use alternate extensions (.logg, .lwav)")
	f.BoolVar(&o.RandomAll, "random-all", false, "make every random group selectable")
	f.BoolVar(&o.RandomMulti, "random-multi", false, "keep nested random groups selectable")
	f.BoolVar(&o.RandomForce, "random-force", false, "select the first item of random groups")
	f.BoolVar(&o.WriteDelays, "write-delays", false, "keep initial delays")
	f.BoolVar(&o.SilencePaths, "silence-paths", false, "write one output per silencing combination")
	f.BoolVar(&o.SilenceAll, "silence-all", false, "silence every volume-controlled layer")
	f.BoolVar(&o.PruneZeroDuration, "prune-zero-duration", o.PruneZeroDuration, "drop segments that never play")
	f.BoolVar(&o.PruneZeroExitInPlaylist, "prune-zero-exit", o.PruneZeroExitInPlaylist, "drop playlist segments with no exit time")
	f.IntVar(&o.MaxCombos, "max-combos", o.MaxCombos, "gamesync combinations per entry point (0: no limit)")

	return cmd
}

// flagOptions lists the session flags and how each overrides options.
var flagOptions = map[string]func(dst *generator.Options, src generator.Options){
	"wem-dir":             func(d *generator.Options, s generator.Options) { d.WemDir = s.WemDir },
	"params":              func(d *generator.Options, s generator.Options) { d.Params = s.Params },
	"volume":              func(d *generator.Options, s generator.Options) { d.MasterVolume = s.MasterVolume },
	"unused":              func(d *generator.Options, s generator.Options) { d.GenerateUnused = s.GenerateUnused },
	"bank-order":          func(d *generator.Options, s generator.Options) { d.BankOrder = s.BankOrder },
	"dupes":               func(d *generator.Options, s generator.Options) { d.Dupes = s.Dupes },
	"dupes-exact":         func(d *generator.Options, s generator.Options) { d.DupesExact = s.DupesExact },
	"bank-marks":          func(d *generator.Options, s generator.Options) { d.BankMarks = s.BankMarks },
	"bank-skip":           func(d *generator.Options, s generator.Options) { d.BankSkip = s.BankSkip },
	"lang":                func(d *generator.Options, s generator.Options) { d.Lang = s.Lang },
	"alt-exts":            func(d *generator.Options, s generator.Options) { d.AltExts = s.AltExts },
	"random-all":          func(d *generator.Options, s generator.Options) { d.RandomAll = s.RandomAll },
	"random-multi":        func(d *generator.Options, s generator.Options) { d.RandomMulti = s.RandomMulti },
	"random-force":        func(d *generator.Options, s generator.Options) { d.RandomForce = s.RandomForce },
	"write-delays":        func(d *generator.Options, s generator.Options) { d.WriteDelays = s.WriteDelays },
	"silence-paths":       func(d *generator.Options, s generator.Options) { d.SilencePaths = s.SilencePaths },
	"silence-all":         func(d *generator.Options, s generator.Options) { d.SilenceAll = s.SilenceAll },
	"prune-zero-duration": func(d *generator.Options, s generator.Options) { d.PruneZeroDuration = s.PruneZeroDuration },
	"prune-zero-exit":     func(d *generator.Options, s generator.Options) { d.PruneZeroExitInPlaylist = s.PruneZeroExitInPlaylist },
	"max-combos":          func(d *generator.Options, s generator.Options) { d.MaxCombos = s.MaxCombos },
}

func runGenerate(opts *GenerateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	banks, err := loadBanks(formatter, paths)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.ConfigPath, baseDir(paths))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidOption, "failed to load config", err)
	}
	if cfg != nil {
		formatter.Progress("Using config %s", cfg.Path)
	}

	genOpts := generator.DefaultOptions()
	if cfg != nil {
		cfg.Apply(&genOpts)
	}
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		if apply, ok := flagOptions[fl.Name]; ok {
			apply(&genOpts, opts.Options)
		}
	})

	extPath := externalsPath(opts.Externals, cfg, banks)
	if extPath != "" {
		if genOpts.Externals, err = generator.LoadExternals(extPath); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDecode, "failed to read externals", err)
		}
	}

	outDir := outputDir(opts.Output, cfg, paths)
	var sink generator.Sink = generator.NewDirSink(outDir)
	if opts.DryRun {
		sink = generator.NewMemorySink()
		outDir = ""
	}

	fopts := []generator.Option{generator.WithSink(sink)}
	if opts.RunIDs != nil {
		fopts = append(fopts, generator.WithRunIDGenerator(opts.RunIDs))
	}
	gen, err := generator.New(banks, genOpts, fopts...)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidOption, "invalid options", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := gen.Run(ctx)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "generation stopped", err)
	}
	res.Log(genOpts)

	summary := summarize(res, outDir)

	dbPath := opts.Database
	if dbPath == "" && cfg != nil {
		dbPath = cfg.StorePath()
	}
	if dbPath != "" {
		if err := saveRun(ctx, dbPath, res, genOpts, banks); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to record run", err)
		}
		summary.Stored = true
		formatter.Progress("Recorded run %s in %s", res.RunID, dbPath)
	}

	if err := printSummary(formatter, summary); err != nil {
		return err
	}

	if res.Stats.Errors > 0 {
		return &ExitError{Code: ExitFailure, ErrCode: ErrCodeEntryFailed, Message: fmt.Sprintf("%d entry point(s) failed", res.Stats.Errors)}
	}
	return nil
}

func loadConfig(path, startDir string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(startDir)
}

func externalsPath(flag string, cfg *config.Config, banks []graph.Bank) string {
	switch {
	case flag != "":
		return flag
	case cfg != nil && cfg.Output.Externals != "":
		return cfg.ExternalsPath()
	case len(banks) > 0:
		return filepath.Join(banks[0].Dir(), generator.ExternalsFile)
	}
	return ""
}

func outputDir(flag string, cfg *config.Config, paths []string) string {
	switch {
	case flag != "":
		return flag
	case cfg != nil && cfg.Output.Dir != "":
		return cfg.OutputDir()
	}
	return filepath.Join(baseDir(paths), DefaultOutputDir)
}

func saveRun(ctx context.Context, path string, res *generator.Result, opts generator.Options, banks []graph.Bank) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := store.FromResult(res, opts, bankFiles(banks))
	if err != nil {
		return err
	}
	_, err = st.WriteRecord(ctx, rec)
	return err
}

func summarize(res *generator.Result, outDir string) GenerateSummary {
	d := res.Diagnostics
	s := GenerateSummary{
		RunID:       res.RunID,
		OutputDir:   outDir,
		Stats:       res.Stats,
		Outputs:     make([]string, 0, len(res.Outputs)),
		Missing:     len(d.MissingLoaded) + len(d.MissingOthers) + len(d.MissingUnknown),
		MissingBank: d.MissingBanks,
		Banks:       res.Banks,
	}
	for _, w := range res.Outputs {
		s.Outputs = append(s.Outputs, w.Name)
	}
	for _, err := range res.Errors {
		s.Errors = append(s.Errors, err.Error())
	}
	return s
}

func printSummary(f *OutputFormatter, s GenerateSummary) error {
	if f.JSON() {
		return f.respond(CLIResponse{Status: "ok", Data: s, RunID: s.RunID})
	}

	w := f.Writer
	where := ""
	if s.OutputDir != "" {
		where = " in " + s.OutputDir
	}
	fmt.Fprintf(w, "Created %d file(s)%s (run %s)\n", s.Stats.Created, where, s.RunID)
	if s.Stats.Duplicates > 0 {
		fmt.Fprintf(w, "  duplicates skipped: %d\n", s.Stats.Duplicates)
	}
	if s.Stats.Unused > 0 {
		fmt.Fprintf(w, "  unused: %d\n", s.Stats.Unused)
	}
	if s.Stats.CombosSkipped > 0 {
		fmt.Fprintf(w, "  combinations over limit: %d\n", s.Stats.CombosSkipped)
	}
	if s.Missing > 0 {
		fmt.Fprintf(w, "  missing references: %d\n", s.Missing)
	}
	if len(s.MissingBank) > 0 {
		fmt.Fprintf(w, "  banks to load: %s\n", strings.Join(s.MissingBank, ", "))
	}
	if len(s.Banks) > 0 {
		fmt.Fprintf(w, "  outputs use banks: %s\n", strings.Join(s.Banks, ", "))
	}
	for _, msg := range s.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", msg)
	}
	if f.Verbose {
		for _, name := range s.Outputs {
			fmt.Fprintf(f.Diag(), "  %s\n", name)
		}
	}
	return nil
}
