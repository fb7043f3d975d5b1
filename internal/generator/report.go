package generator

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/rebuild"
)

// Stats counts what a session wrote.
type Stats struct {
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Unused     int `json:"unused"`
	Streams    int `json:"streams"`
	Internals  int `json:"internals"`
	Errors     int `json:"errors"`
	// Entries counts walked entry points.
	Entries int `json:"entries"`
	// CombosSkipped counts combinations over the limit.
	CombosSkipped int `json:"combos_skipped"`
}

// Written is one output handed to the sink.
type Written struct {
	Name     string
	LongName string
	Key      string
	// TextID hashes the written playlist, footer excluded.
	TextID   string
	Contents string
	Flags    printer.Flags

	SID        uint32
	Bank       string
	Dupe       bool
	Unused     bool
	Transition bool
	Stinger    bool
}

// Result is what a session produced.
type Result struct {
	RunID   string
	Stats   Stats
	Outputs []Written
	// Errors are the entry points that failed; the session went on.
	Errors      []error
	Diagnostics rebuild.Report
	// Banks lists the banks holding in-bank media used by outputs.
	Banks []string
	// HasUnused is set when unreached music was found but not generated.
	HasUnused bool
}

func sortedBanks(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for b := range m {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Log writes the end of session summary.
func (r *Result) Log(opts Options) {
	d := r.Diagnostics
	if r.HasUnused && !opts.GenerateUnused {
		slog.Info("generator: possibly unused audio, enable unused generation to include it")
	}
	if n := len(d.MissingMedia); n > 0 {
		slog.Warn("generator: missing memory audio", "count", n)
	}
	if n := len(d.MissingLoaded); n > 0 {
		slog.Warn("generator: missing objects in loaded banks", "count", n)
	}
	if n := len(d.MissingOthers); n > 0 {
		slog.Warn("generator: missing objects in other banks", "count", n, "banks", d.MissingBanks)
	}
	if n := len(d.MissingUnknown); n > 0 {
		slog.Warn("generator: missing objects in unknown banks", "count", n)
	}
	if n := len(d.Ambiguous); n > 0 {
		slog.Warn("generator: objects repeated in multiple banks", "count", n)
	}
	if r.Stats.Created == 0 {
		slog.Warn("generator: no outputs created")
	}
	if d.TransitionObjects > 0 {
		slog.Info("generator: transition objects in playlists", "count", d.TransitionObjects)
	}
	if len(d.UnknownProps) > 0 {
		slog.Info("generator: unknown properties", "props", d.UnknownProps)
	}
	if r.Stats.Internals > 0 && !opts.BankSkip {
		slog.Info("generator: outputs use banks", "count", r.Stats.Internals, "banks", r.Banks)
	}

	line := fmt.Sprintf("created %d", r.Stats.Created)
	if r.Stats.Duplicates > 0 {
		line += fmt.Sprintf(", %d duplicates", r.Stats.Duplicates)
	}
	if opts.GenerateUnused {
		line += fmt.Sprintf(", unused %d", r.Stats.Unused)
	}
	slog.Info("generator: done", "summary", line, "errors", r.Stats.Errors)
}
