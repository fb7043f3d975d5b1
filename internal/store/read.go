package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

const runColumns = `seq, id, generator_version, options_hash, options, banks,
	created, duplicates, unused, streams, internals, errors, entries, combos_skipped`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var banks string
	st := &r.Stats
	err := row.Scan(
		&r.Seq, &r.ID, &r.GeneratorVersion, &r.OptionsHash, &r.Options, &banks,
		&st.Created, &st.Duplicates, &st.Unused, &st.Streams, &st.Internals, &st.Errors, &st.Entries, &st.CombosSkipped,
	)
	if err != nil {
		return Run{}, err
	}
	if r.Banks, err = unmarshalBanks(banks); err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns every run, oldest first.
//
// Returns an empty slice (not nil) when the store has no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// LatestRun returns the last stored run, or ErrNotFound.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT 1`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read latest run: %w", err)
	}
	return r, nil
}

// ReadOutputs returns the outputs of a run in write order. Texts are
// only loaded when withText is set.
func (s *Store) ReadOutputs(ctx context.Context, runID string, withText bool) ([]Output, error) {
	text := "''"
	if withText {
		text = "text"
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, name, long_name, content_hash, sid, bank, flags,
			dupe, unused, transition, stinger, `+text+`
		FROM outputs
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()
	return scanOutputs(rows)
}

// FindOutputs returns the outputs of any run with the given content hash,
// oldest run first.
func (s *Store) FindOutputs(ctx context.Context, contentHash string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.run_id, o.seq, o.name, o.long_name, o.content_hash, o.sid, o.bank, o.flags,
			o.dupe, o.unused, o.transition, o.stinger, o.text
		FROM outputs o
		JOIN runs r ON r.id = o.run_id
		WHERE o.content_hash = ?
		ORDER BY r.seq ASC, o.seq ASC
	`, contentHash)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()
	return scanOutputs(rows)
}

func scanOutputs(rows *sql.Rows) ([]Output, error) {
	outputs := []Output{}
	for rows.Next() {
		var o Output
		var flags string
		var dupe, unused, transition, stinger int
		err := rows.Scan(
			&o.RunID, &o.Seq, &o.Name, &o.LongName, &o.ContentHash, &o.SID, &o.Bank, &flags,
			&dupe, &unused, &transition, &stinger, &o.Text,
		)
		if err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		if o.Flags, err = unmarshalFlags(flags); err != nil {
			return nil, err
		}
		o.Dupe = dupe != 0
		o.Unused = unused != 0
		o.Transition = transition != 0
		o.Stinger = stinger != 0
		outputs = append(outputs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}
	return outputs, nil
}

// ReadDiagnostics returns the diagnostics of a run in record order.
func (s *Store) ReadDiagnostics(ctx context.Context, runID string) ([]Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, code, bank, object_id, detail
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []Diagnostic{}
	for rows.Next() {
		var d Diagnostic
		if err := rows.Scan(&d.RunID, &d.Seq, &d.Code, &d.Bank, &d.ObjectID, &d.Detail); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}
