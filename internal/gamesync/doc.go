// Package gamesync models the runtime variables (switches, states and game
// parameters) that select which branches of an object tree play.
//
// Paths records the branch points visited while walking a tree with no
// variables set, and flattens them into one Params per leaf. SilencePaths
// records the states that mute parts of a tree and expands them as a
// cartesian product, since those states are independent of each other.
package gamesync
