package harness

import (
	"github.com/roach88/txtpgen/internal/generator"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is set when every assertion held.
	Pass bool `json:"pass"`

	// Outputs are the written names, in write order.
	Outputs []string `json:"outputs"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// Run is the full session result.
	Run *generator.Result `json:"-"`

	texts map[string]string
}

// NewResult creates a passing result for a finished session.
func NewResult(run *generator.Result) *Result {
	r := &Result{
		Pass:    true,
		Outputs: []string{},
		Errors:  []string{},
		Run:     run,
		texts:   make(map[string]string),
	}
	for _, w := range run.Outputs {
		r.Outputs = append(r.Outputs, w.Name)
		r.texts[w.Name] = w.Contents
	}
	return r
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Text returns the contents of a written output.
func (r *Result) Text(name string) (string, bool) {
	t, ok := r.texts[name]
	return t, ok
}

// statFields maps counter JSON names to their values.
var statFields = map[string]func(generator.Stats) int{
	"created":        func(s generator.Stats) int { return s.Created },
	"duplicates":     func(s generator.Stats) int { return s.Duplicates },
	"unused":         func(s generator.Stats) int { return s.Unused },
	"streams":        func(s generator.Stats) int { return s.Streams },
	"internals":      func(s generator.Stats) int { return s.Internals },
	"errors":         func(s generator.Stats) int { return s.Errors },
	"entries":        func(s generator.Stats) int { return s.Entries },
	"combos_skipped": func(s generator.Stats) int { return s.CombosSkipped },
}
