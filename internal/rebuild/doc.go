// Package rebuild turns bank objects into behavior objects and walks them
// into playlist trees.
//
// Objects are registered per bank as (bank id, short id) references, built
// lazily on first use and cached for the lifetime of the Registry. Each
// object kind has one build function, which reads the graph, and one walk
// function, which calls the playlist builder of a txtp.Txtp. Both are
// dispatched through a single switch on Kind.
//
// Walks without variable values record the branches they could take in the
// Txtp paths; the caller then walks again once per combination.
//
// Problems that only skip an edge (missing or ambiguous references, unknown
// properties) are recorded in Diagnostics. Problems that make an object
// unusable are returned as *BuildError and abort the current entry point.
package rebuild
