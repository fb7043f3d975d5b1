package store

import (
	"errors"
	"fmt"

	"github.com/roach88/txtpgen/internal/generator"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/rebuild"
)

// Diagnostic codes besides the rebuild reference codes.
const (
	CodeMissingMedia    = "MISSING_MEDIA"
	CodeUnknownProperty = "UNKNOWN_PROPERTY"
	CodeProcessError    = "PROCESS_ERROR"
)

// Run is one stored generation run.
type Run struct {
	ID               string `json:"id"`
	Seq              int64  `json:"seq"`
	GeneratorVersion string `json:"generator_version"`
	OptionsHash      string `json:"options_hash"`
	// Options is the canonical JSON of the options used.
	Options string          `json:"options"`
	Banks   []string        `json:"banks"`
	Stats   generator.Stats `json:"stats"`
}

// Output is one stored output file.
type Output struct {
	RunID       string        `json:"run_id"`
	Seq         int64         `json:"seq"`
	Name        string        `json:"name"`
	LongName    string        `json:"long_name"`
	ContentHash string        `json:"content_hash"`
	SID         uint32        `json:"sid"`
	Bank        string        `json:"bank"`
	Flags       printer.Flags `json:"flags"`
	Dupe        bool          `json:"dupe,omitempty"`
	Unused      bool          `json:"unused,omitempty"`
	Transition  bool          `json:"transition,omitempty"`
	Stinger     bool          `json:"stinger,omitempty"`
	Text        string        `json:"text,omitempty"`
}

// Diagnostic is one problem recorded during a run.
type Diagnostic struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Code     string `json:"code"`
	Bank     uint32 `json:"bank"`
	ObjectID uint32 `json:"object_id"`
	Detail   string `json:"detail"`
}

// Record is everything stored for one run.
type Record struct {
	Run         Run
	Outputs     []Output
	Diagnostics []Diagnostic
}

// FromResult converts a finished generation into a record. banks lists the
// input bank files.
func FromResult(res *generator.Result, opts generator.Options, banks []string) (Record, error) {
	canonical, err := ir.MarshalCanonical(opts.Map())
	if err != nil {
		return Record{}, fmt.Errorf("marshal options: %w", err)
	}
	hash, err := ir.OptionsHash(opts.Map())
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Run: Run{
			ID:               res.RunID,
			GeneratorVersion: ir.GeneratorVersion,
			OptionsHash:      hash,
			Options:          string(canonical),
			Banks:            banks,
			Stats:            res.Stats,
		},
	}

	for i, w := range res.Outputs {
		rec.Outputs = append(rec.Outputs, Output{
			RunID:       res.RunID,
			Seq:         int64(i + 1),
			Name:        w.Name,
			LongName:    w.LongName,
			ContentHash: w.TextID,
			SID:         w.SID,
			Bank:        w.Bank,
			Flags:       w.Flags,
			Dupe:        w.Dupe,
			Unused:      w.Unused,
			Transition:  w.Transition,
			Stinger:     w.Stinger,
			Text:        w.Contents,
		})
	}

	add := func(d Diagnostic) {
		d.RunID = res.RunID
		d.Seq = int64(len(rec.Diagnostics) + 1)
		rec.Diagnostics = append(rec.Diagnostics, d)
	}
	for _, re := range res.Diagnostics.Errors() {
		add(Diagnostic{Code: re.Code, Bank: re.Bank, ObjectID: re.ID, Detail: re.BankName})
	}
	for _, id := range res.Diagnostics.MissingMedia {
		add(Diagnostic{Code: CodeMissingMedia, ObjectID: id})
	}
	for _, prop := range res.Diagnostics.UnknownProps {
		add(Diagnostic{Code: CodeUnknownProperty, Detail: prop})
	}
	for _, err := range res.Errors {
		d := Diagnostic{Code: CodeProcessError, Detail: err.Error()}
		var pe *rebuild.ProcessError
		if errors.As(err, &pe) {
			d.ObjectID = pe.SID
		}
		add(d)
	}
	return rec, nil
}
