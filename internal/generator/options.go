package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/simplify"
	"github.com/roach88/txtpgen/internal/txtp"
)

// DefaultMaxCombos caps the variable combinations of one entry point.
const DefaultMaxCombos = 1000

// Options configure what a session writes.
type Options struct {
	// WemDir prefixes source paths in outputs.
	WemDir string
	// Params fixes variable values, like "(music=calm)[step=01]". Empty
	// means every combination found is generated.
	Params string
	// MasterVolume is "-3dB", a linear "0.5", a percent "50%" or "auto".
	MasterVolume string

	GenerateUnused bool
	// BankOrder generates entries in bank order instead of named first.
	BankOrder bool

	Dupes      bool
	DupesExact bool
	BankMarks  bool
	BankSkip   bool
	Lang       bool
	AltExts    bool

	RandomAll   bool
	RandomMulti bool
	RandomForce bool
	WriteDelays bool

	// SilencePaths writes one output per combination of silencing states.
	SilencePaths bool
	SilenceAll   bool

	PruneZeroDuration       bool
	PruneZeroExitInPlaylist bool

	MaxCombos int

	// Externals maps external source ids to file paths.
	Externals map[uint32][]string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		WemDir:                  printer.DefaultWemDir,
		PruneZeroDuration:       true,
		PruneZeroExitInPlaylist: true,
		MaxCombos:               DefaultMaxCombos,
	}
}

// Option adjusts a Generator.
type Option func(*Generator)

// WithMaxCombos caps the variable combinations generated per entry point.
// Values below 1 disable the cap.
func WithMaxCombos(n int) Option {
	return func(g *Generator) {
		g.opts.MaxCombos = n
	}
}

// WithRunIDGenerator sets how runs are named.
func WithRunIDGenerator(ids RunIDGenerator) Option {
	return func(g *Generator) {
		g.ids = ids
	}
}

// WithSink sets where outputs go. The default keeps them in memory.
func WithSink(s Sink) Option {
	return func(g *Generator) {
		g.sink = s
	}
}

// Map returns the options as plain values, for canonical hashing and
// storage. Externals are reduced to their count.
func (o Options) Map() map[string]any {
	return map[string]any{
		"wem_dir":                     o.WemDir,
		"params":                      o.Params,
		"master_volume":               o.MasterVolume,
		"generate_unused":             o.GenerateUnused,
		"bank_order":                  o.BankOrder,
		"dupes":                       o.Dupes,
		"dupes_exact":                 o.DupesExact,
		"bank_marks":                  o.BankMarks,
		"bank_skip":                   o.BankSkip,
		"lang":                        o.Lang,
		"alt_exts":                    o.AltExts,
		"random_all":                  o.RandomAll,
		"random_multi":                o.RandomMulti,
		"random_force":                o.RandomForce,
		"write_delays":                o.WriteDelays,
		"silence_paths":               o.SilencePaths,
		"silence_all":                 o.SilenceAll,
		"prune_zero_duration":         o.PruneZeroDuration,
		"prune_zero_exit_in_playlist": o.PruneZeroExitInPlaylist,
		"max_combos":                  o.MaxCombos,
		"externals":                   len(o.Externals),
	}
}

// volume percents with exact dB values
var volumePercents = map[float64]float64{
	4.0:  12.0,
	2.0:  6.0,
	1.0:  0.0,
	0.5:  -6.0,
	0.25: -12.0,
}

// ParseVolume reads a master volume. auto selects automatic leveling.
func ParseVolume(s string) (db float64, auto bool, err error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return 0, false, nil
	case s == "*" || lower == "auto":
		return 0, true, nil
	case strings.HasSuffix(lower, "db"):
		db, err = strconv.ParseFloat(strings.TrimSpace(s[:len(s)-2]), 64)
		if err != nil {
			return 0, false, &OptionError{Option: "master volume", Value: s, Err: err}
		}
		return db, false, nil
	}

	var v float64
	if strings.HasSuffix(s, "%") {
		v, err = strconv.ParseFloat(s[:len(s)-1], 64)
		v /= 100
	} else {
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return 0, false, &OptionError{Option: "master volume", Value: s, Err: err}
	}
	if v <= 0 {
		return 0, false, &OptionError{Option: "master volume", Value: s, Err: fmt.Errorf("must be positive")}
	}
	if db, ok := volumePercents[v]; ok {
		return db, false, nil
	}
	return math.Log10(v) * 20, false, nil
}

// renderOptions maps session options to the per-output ones.
func (o Options) renderOptions() (txtp.RenderOptions, error) {
	db, auto, err := ParseVolume(o.MasterVolume)
	if err != nil {
		return txtp.RenderOptions{}, err
	}

	sopts := simplify.Options{
		MasterVolume: db,
		AutoVolume:   auto,
		WriteDelays:  o.WriteDelays,
		RandomAll:    o.RandomAll,
		RandomMulti:  o.RandomMulti,
		RandomForce:  o.RandomForce,
	}
	if o.PruneZeroDuration {
		sopts.Prune |= simplify.PruneZeroDuration
	}
	if o.PruneZeroExitInPlaylist {
		sopts.Prune |= simplify.PruneZeroExitInPlaylist
	}

	volume := ""
	if db != 0 {
		volume = printer.Repr(db) + "dB"
	}
	return txtp.RenderOptions{
		Simplify: sopts,
		Print: printer.Options{
			WemDir:     o.WemDir,
			Lang:       o.Lang,
			AltExts:    o.AltExts,
			BankSkip:   o.BankSkip,
			SilenceAll: o.SilenceAll,
		},
		DupesExact:   o.DupesExact,
		BankMarks:    o.BankMarks,
		Externals:    o.Externals,
		MasterVolume: volume,
	}, nil
}

// params returns the user params, or nil to discover combinations.
func (o Options) params() (*gamesync.Params, error) {
	if strings.TrimSpace(o.Params) == "" {
		return nil, nil
	}
	p, err := gamesync.Parse(o.Params)
	if err != nil {
		return nil, &OptionError{Option: "params", Value: o.Params, Err: err}
	}
	return p, nil
}
