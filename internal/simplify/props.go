package simplify

import (
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
)

// props moves props from single groups down to their child, then applies
// group delays and counts infinite loops. The move runs twice: a prop
// blocked by the same prop right below may move once that one moved on.
func (s *simplifier) props(n *playlist.Node) {
	s.moveProps(n)
	s.moveProps(n)
	s.groupConfig(n)
}

func (s *simplifier) moveProps(n *playlist.Node) {
	if n.IsGroup() && len(n.Children) == 1 {
		s.moveGroupProps(n)
	}
	for _, c := range s.children(n) {
		s.moveProps(c)
	}
}

func (s *simplifier) moveGroupProps(n *playlist.Node) {
	n.Kind = playlist.KindSingle
	sub := s.tree.Child(n, 0)

	// clips repeat over their own timeline, so their loop never comes from above
	if sub.IsGroup() || (sub.IsSound() && !sub.IsClip()) {
		if sub.NoLoop() || (n.LoopsForever() && sub.LoopsForever()) {
			sub.Loop = n.Loop
			n.Loop = nil
		}
	}

	// clips use padding for their own timing
	if n.NoLoop() && !sub.IsClip() {
		if !ir.IsSet(sub.Delay) {
			sub.Delay, n.Delay = n.Delay, nil
		}
		if !ir.IsSet(sub.IDelay) {
			sub.IDelay, n.IDelay = n.IDelay, nil
		}
	}

	switch {
	case !ir.IsSet(sub.Volume):
		sub.Volume, n.Volume = n.Volume, nil
	case ir.IsSet(n.Volume) && sub.IsSingle():
		sub.Volume = ir.Float(*sub.Volume + *n.Volume)
		n.Volume = nil
	}

	if !sub.Crossfaded {
		sub.Crossfaded, n.Crossfaded = n.Crossfaded, false
	}
	if !sub.Silenced {
		sub.Silenced, n.Silenced = n.Silenced, false
	}
	if !ir.IsSet(sub.MakeupGain) {
		sub.MakeupGain, n.MakeupGain = n.MakeupGain, nil
	}
	if !ir.IsSet(sub.Pitch) {
		sub.Pitch, n.Pitch = n.Pitch, nil
	}
}

func (s *simplifier) groupConfig(n *playlist.Node) {
	for _, c := range s.children(n) {
		s.groupConfig(c)
	}

	if n.IsGroup() {
		n.PadBegin += ir.FloatVal(n.IDelay) + ir.FloatVal(n.Delay)
	}

	if n.LoopsForever() {
		switch {
		case n.IsGroup():
			s.res.LoopGroups++
		case n.IsSound() && !n.IsClip():
			s.res.LoopSounds++
		}
	}
}
