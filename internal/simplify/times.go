package simplify

import (
	"log/slog"
	"math"

	"github.com/roach88/txtpgen/internal/curve"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
)

// fakeBody is the minimum body kept when a transition consumes the whole
// body: 5 samples at 48kHz, in ms.
const fakeBody = 5.0 / 48000.0 * 1000.0

// times converts clip offsets, segment durations and transition windows
// into pad/trim/body values.
func (s *simplifier) times(root *playlist.Node) error {
	s.segments = s.countSegments(root, nil, nil)
	return s.setTimes(root)
}

func (s *simplifier) setTimes(n *playlist.Node) error {
	if n.IsSound() {
		if !n.Sound.Silent {
			s.res.Sounds++
		}
		if n.IsClip() {
			if err := applyClip(n); err != nil {
				return err
			}
		} else {
			applySfx(n)
		}
		if err := applyAutomations(n); err != nil {
			return err
		}
	}

	for _, c := range s.children(n) {
		if err := s.setTimes(c); err != nil {
			return err
		}
	}

	if ir.IsSet(n.Config.Duration) {
		s.setDuration(n, n)
	}
	if n.Transition != nil {
		if err := s.setTransition(n, n, nil); err != nil {
			return err
		}
	}
	return nil
}

// countSegments counts the segments setTransition will visit.
func (s *simplifier) countSegments(n, tnode, snode *playlist.Node) int {
	if tnode == nil {
		if n.Transition == nil {
			count := 0
			for _, c := range s.children(n) {
				count += s.countSegments(c, nil, nil)
			}
			return count
		}
		tnode = n
	} else if n.Transition != nil {
		return s.countSegments(n, nil, nil)
	}

	count := 0
	if n.Config.Duration != nil {
		if snode != nil {
			return 0
		}
		snode = n
		count++
	}
	for _, c := range s.children(n) {
		count += s.countSegments(c, tnode, snode)
	}
	return count
}

func (s *simplifier) setDuration(n, segment *playlist.Node) {
	if n != segment && ir.IsSet(n.Config.Duration) {
		slog.Info("simplify: found duration inside duration")
		return
	}
	if n.IsClip() {
		applyDuration(n, segment.Config)
	}
	for _, c := range s.children(n) {
		s.setDuration(c, segment)
	}
}

func (s *simplifier) setTransition(n, tnode, segment *playlist.Node) error {
	// nested transitions (switch > ranseq) are handled on their own
	if n != tnode && n.Transition != nil {
		return nil
	}

	if n.Config.Duration != nil {
		if segment != nil {
			slog.Info("simplify: double segment")
			return nil
		}
		segment = n
		s.res.Transitions++
	}

	if n.IsClip() && segment != nil {
		if err := s.applyTransition(n, tnode, segment); err != nil {
			return err
		}
	}

	for _, c := range s.children(n) {
		if err := s.setTransition(c, tnode, segment); err != nil {
			return err
		}
	}
	return nil
}

// applyClip converts clip offsets (ms) into pad/trim/body values:
//   - fpa (play at) moves the clip: >0 pads the start
//   - fbt (begin trim) >0 trims the start, <0 repeats the source before it
//   - fet (end trim) <0 trims the end, >0 repeats the source after it
//   - fsd is the source duration
//
// For fsd=30, fpa=40, fbt=-40, fet=0 the clip starts with 40ms of repeats,
// which is one full source plus 10ms: body 90, trim begin 20, pad 0.
func applyClip(n *playlist.Node) error {
	snd := n.Sound
	if ir.IsSet(n.Delay) || ir.IsSet(n.IDelay) {
		return newTimingError(ErrCodeClipDelay, snd.NodeID, "delay in clip (%v, %v)",
			ir.FloatVal(n.Delay), ir.FloatVal(n.IDelay))
	}

	// repeats shorter than a sample would become big trims eating a loop
	if snd.FBT < 0 && snd.FBT > -sampleTime {
		snd.FBT = 0
		if snd.FET > 0 && snd.FET < sampleTime {
			snd.FET = 0
		}
	}

	var padBegin, trimBegin, trimEnd float64
	body := snd.FSD
	padBegin += snd.FPA

	if snd.FBT >= 0 {
		trimBegin += snd.FBT
		padBegin += snd.FBT
	} else {
		repeat := math.Abs(snd.FBT)
		trim := math.Abs(floorMod(snd.FBT, snd.FSD))
		body += repeat + trim
		trimBegin += trim
		padBegin -= repeat
	}

	if snd.FET <= 0 {
		trimEnd += math.Abs(snd.FET)
	} else {
		body += snd.FET
	}

	// rounding leftovers, ex. fpa=-321.158447971784 + fbt=321.158447971783
	if padBegin < 0 && padBegin > -sampleTime {
		padBegin = 0
	}
	if trimBegin < 0 && trimBegin > -sampleTime {
		trimBegin = 0
	}

	if body < 0 || padBegin < 0 || trimBegin < 0 || trimEnd < 0 {
		return newTimingError(ErrCodeNegativeTime, snd.NodeID, "negative clip values: b=%v, p=%v, r=%v, R=%v",
			body, padBegin, trimBegin, trimEnd)
	}
	if body-trimBegin-trimEnd < 0 {
		return newTimingError(ErrCodeNegativeTime, snd.NodeID, "clip trims exceed body: b=%v, r=%v, R=%v",
			body, trimBegin, trimEnd)
	}

	n.PadBegin = padBegin
	n.TrimBegin = trimBegin
	n.BodyTime = body
	n.TrimEnd = trimEnd
	n.PadEnd = 0
	return nil
}

// floorMod is a modulo taking the sign of the divisor.
func floorMod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func applySfx(n *playlist.Node) {
	n.PadBegin += ir.FloatVal(n.IDelay) + ir.FloatVal(n.Delay)
}

func applyAutomations(n *playlist.Node) error {
	if len(n.Sound.Automations) == 0 {
		return nil
	}
	envs, err := curve.Envelopes(n.Sound)
	if err != nil {
		return err
	}
	// automations are relative to the clip start, after padding
	curve.Pad(envs, n.PadBegin/1000.0)
	n.Envelopes = append(n.Envelopes, envs...)
	return nil
}

// applyDuration pads a clip up to its segment duration.
func applyDuration(n *playlist.Node, cfg *ir.Config) {
	if !ir.IsSet(cfg.Duration) {
		return
	}
	duration := *cfg.Duration
	full := n.PadBegin + n.BodyTime - n.TrimBegin - n.TrimEnd
	if ir.IsSet(cfg.Exit) && duration < *cfg.Exit {
		slog.Info("simplify: segment duration smaller than exit", "duration", duration, "exit", *cfg.Exit)
	}
	if duration > full {
		n.PadEnd = duration - full
	}

	// silences
	if n.BodyTime == 0 && n.PadEnd != 0 {
		n.BodyTime = n.PadEnd
		n.PadEnd = 0
	}
}

// applyTransition clamps a clip to the window its segment plays inside a
// playlist: from the entry marker (or the start, for the first segment) to
// the exit marker (or the end, for the last segment of a tree that never
// loops).
func (s *simplifier) applyTransition(n, tnode, segment *playlist.Node) error {
	cfg := segment.Config

	// fold the end trim, so only the body gets cut below
	if n.TrimEnd != 0 && n.TrimEnd <= n.BodyTime {
		n.BodyTime -= n.TrimEnd
		n.TrimEnd = 0
	}

	entry := ir.FloatVal(cfg.Entry)
	exit := ir.FloatVal(cfg.Exit)
	playBefore := s.res.Transitions == 1
	playAfter := s.res.Transitions == s.segments && s.res.NoLoops() && !tnode.SelfLoop

	if playBefore && tnode.SelfLoop {
		exit = entry
		entry = 0
		s.res.SelfLoops = true
	} else if playAfter && ir.IsSet(cfg.Duration) {
		exit = math.Max(exit, *cfg.Duration)
	}

	if len(n.Envelopes) > 0 {
		return s.wrapTransition(n, entry, exit, playBefore)
	}

	body := n.PadBegin + n.BodyTime - n.TrimBegin - n.TrimEnd + n.PadEnd

	if !playBefore {
		remove := math.Min(entry, n.PadBegin)
		n.PadBegin -= remove
		n.TrimBegin += entry - remove
	}

	if body < exit {
		n.PadEnd += exit - body
		return nil
	}

	left := body - exit
	removed := math.Min(left, n.PadEnd)
	n.PadEnd -= removed
	left -= removed

	removed = math.Min(left, n.BodyTime)
	n.BodyTime -= removed
	left -= removed
	// entry may fall in the padding; keep a tiny body to play
	if n.BodyTime == 0 {
		n.BodyTime = fakeBody
	}

	removed = math.Min(left, n.PadBegin)
	n.PadBegin -= removed
	left -= removed

	if left != 0 {
		return newTimingError(ErrCodeUntrimmed, n.Sound.NodeID, "non-trimmed transition %v", left)
	}
	return nil
}

// wrapTransition moves the window of a clip with envelopes to a new single
// group around it. Trimming the clip itself would shift its envelopes.
func (s *simplifier) wrapTransition(n *playlist.Node, entry, exit float64, playBefore bool) error {
	start := entry
	if playBefore {
		start = 0
	}
	if exit < start {
		return newTimingError(ErrCodeNegativeTime, n.Sound.NodeID, "transition window %v..%v", start, exit)
	}

	wrapper := s.tree.Wrap(n)
	wrapper.TrimBegin = start
	wrapper.BodyTime = exit - start
	return nil
}
