// Package store records generation runs in SQLite.
//
// Each run stores:
//   - Runs: run id, generator version, canonical options and counters
//   - Outputs: file name, content hash, flags and full text of each output
//   - Diagnostics: missing references, missing media, unknown properties
//     and per-object failures
//
// Rows are append-only. Listings order by seq, a logical counter, never by
// wall time. Writing a run id twice is a no-op, so a retried save cannot
// double a run.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Output content hashes are ir.OutputID of the playlist text without its
// footer, so a written file can be looked up across runs.
package store
