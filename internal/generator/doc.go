// Package generator runs a generation session: it registers the objects of
// every loaded bank, walks each entry point once per variable combination
// and writes the resulting playlists.
//
// A session owns all mutable state of a run (the object registry, seen
// texts and names, counters), so two sessions never share anything.
//
// Passes, in order:
//   - main: events and dialogue events of each bank, named ones first
//   - per entry point: combinations, stingers, then transition segments
//   - unused: objects never reached, when enabled
package generator
