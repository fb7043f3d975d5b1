package simplify

import (
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
)

// sampleTime is one sample at 48kHz, in the unit of the value it is
// compared with.
const sampleTime = 1.0 / 48000.0

// clean drops nodes bottom-up: helper plugins, empty groups and segments
// that never play. It also collects external sources.
func (s *simplifier) clean(n *playlist.Node) {
	for _, c := range s.children(n) {
		s.clean(c)
	}

	if n.IsSound() {
		src := n.Sound.Source
		if src != nil && src.Ignorable {
			s.tree.Remove(n)
			return
		}
		if src != nil && src.External && !containsID(s.res.Externals, src.TID) {
			s.res.Externals = append(s.res.Externals, src.TID)
		}
		return
	}

	if !n.IsGroup() || n.Parent == playlist.NoID {
		return
	}
	if len(n.Children) == 0 || s.silentSegment(n) {
		s.tree.Remove(n)
	}
}

func (s *simplifier) silentSegment(n *playlist.Node) bool {
	cfg := n.Config
	if s.opts.Prune&PruneZeroDuration != 0 && cfg.Duration != nil && *cfg.Duration == 0 {
		return true
	}
	if s.opts.Prune&PruneZeroExitInPlaylist != 0 && cfg.Exit != nil && *cfg.Exit == 0 {
		return s.insidePlaylist(n)
	}
	return false
}

// insidePlaylist reports whether a sequence or random group, or a
// playlist item, encloses n.
func (s *simplifier) insidePlaylist(n *playlist.Node) bool {
	for p := s.tree.Parent(n); p != nil; p = s.tree.Parent(p) {
		if p.Transition != nil || p.IsSteps() || p.IsContinuous() {
			return true
		}
	}
	return false
}

func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// selfLoops finds playlists looping over a single segment item with an
// entry marker, like: ranseq (loop) > item (transition) > segment.
// Playing it needs an intro from the start to the entry marker plus a
// loop body from entry to exit, so the item is cloned: the clone plays
// the intro once and the original keeps the loop.
func (s *simplifier) selfLoops(n *playlist.Node) {
	s.makeSelfLoop(n)
	for _, c := range s.children(n) {
		s.selfLoops(c)
	}
}

func (s *simplifier) makeSelfLoop(n *playlist.Node) bool {
	if n.NoLoop() || len(n.Children) != 1 {
		return false
	}
	item := s.tree.Child(n, 0)
	if item.Transition == nil || len(item.Children) != 1 {
		return false
	}
	segment := s.tree.Child(item, 0)
	cfg := segment.Config
	if !ir.IsSet(cfg.Duration) || !ir.IsSet(cfg.Entry) {
		return false
	}
	if *cfg.Entry <= sampleTime {
		return false
	}

	n.Kind = playlist.KindSequenceContinuous
	intro := s.tree.Copy(n, item)
	s.tree.MoveFirst(intro)

	intro.SelfLoop = true
	intro.FakeEntry = true
	intro.Loop = nil
	item.Loop = n.Loop
	n.Loop = nil
	return true
}
