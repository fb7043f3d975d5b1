// Package curve evaluates the curves attached to objects: RTPC graphs that
// map a game parameter onto a property, and clip automations that become
// printed volume envelopes.
//
// Both are pure functions of their inputs. Interpolation formulas and
// scaling constants reproduce the engine's fixed-point approximations
// exactly, so results match what the runtime computes rather than the
// textbook curves.
package curve
