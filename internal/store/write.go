package store

import (
	"context"
	"fmt"
)

// WriteRecord stores a run with its outputs and diagnostics in one
// transaction. Writing the same run id again is a no-op and returns
// inserted=false.
func (s *Store) WriteRecord(ctx context.Context, rec Record) (inserted bool, err error) {
	run := rec.Run
	banks, err := marshalBanks(run.Banks)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	st := run.Stats
	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, generator_version, options_hash, options, banks,
		 created, duplicates, unused, streams, internals, errors, entries, combos_skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID, run.GeneratorVersion, run.OptionsHash, run.Options, banks,
		st.Created, st.Duplicates, st.Unused, st.Streams, st.Internals, st.Errors, st.Entries, st.CombosSkipped,
	)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write run: rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	for _, out := range rec.Outputs {
		flags, err := marshalFlags(out.Flags)
		if err != nil {
			return false, fmt.Errorf("write output %s: %w", out.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outputs
			(run_id, seq, name, long_name, content_hash, sid, bank, flags, dupe, unused, transition, stinger, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, out.Seq, out.Name, out.LongName, out.ContentHash, out.SID, out.Bank, flags,
			boolInt(out.Dupe), boolInt(out.Unused), boolInt(out.Transition), boolInt(out.Stinger), out.Text,
		)
		if err != nil {
			return false, fmt.Errorf("write output %s: %w", out.Name, err)
		}
	}

	for _, d := range rec.Diagnostics {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics (run_id, seq, code, bank, object_id, detail)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, d.Seq, d.Code, d.Bank, d.ObjectID, d.Detail)
		if err != nil {
			return false, fmt.Errorf("write diagnostic %d: %w", d.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run: commit: %w", err)
	}
	return true, nil
}
