// Package graph is the read-only object graph consumed by the generator.
//
// A decoded bank is a tree of elements. Objects (CAkEvent, CAkSound...) and
// fields (ulID, Loop, fDuration...) share one shape: a name, an optional type
// tag, an optional scalar value and ordered children. Searches are
// "outer-first": every element of a level is examined before descending into
// any of their children.
//
// The binary deserializer that produces banks lives outside this module. Banks
// reach the generator as dumps in one of three encodings:
//
//   - YAML (.yaml, .yml), the format used by test fixtures
//   - CUE (.cue), decoded through cuecontext
//   - CBOR snapshots (.cbor), written by WriteSnapshot for fast reloads
//
// All three decode into the same Dump structure and then into an element tree.
package graph
