// Package playlist holds the intermediate tree built while walking behavior
// objects, before it is simplified and printed.
//
// Nodes live in an arena owned by a Tree and link to each other through IDs,
// so rewrite passes can move, drop and clone subtrees without aliasing
// problems. A node is either a sound leaf or a group; the root is a group
// that is never printed on its own.
//
// Times are milliseconds. Volumes are dB.
package playlist
