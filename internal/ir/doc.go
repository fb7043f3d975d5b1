// Package ir provides the value types shared by every stage of the
// generation pipeline.
//
// This package contains type definitions and small helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps ir the
// foundational layer with no circular dependencies.
//
// Conventions:
//   - Optional numeric properties are pointers: nil means "unset", which is
//     distinct from an explicit zero (a zero loop means "loop forever").
//   - Times are milliseconds, as stored in banks. Only the printer converts
//     them to seconds.
//   - Volumes are dB deltas.
//   - Content identity is computed over NFC-normalised text (see hash.go).
package ir
