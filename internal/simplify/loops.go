package simplify

import (
	"sort"

	"github.com/roach88/txtpgen/internal/playlist"
)

// reorder sorts layer children by media id so regenerated output does not
// depend on the order tracks were authored in. Layers with a branching or
// sourceless child keep their order.
func (s *simplifier) reorder(n *playlist.Node) {
	for _, c := range s.children(n) {
		s.reorder(c)
	}
	if !n.IsLayer() {
		return
	}

	type keyed struct {
		id    uint32
		child playlist.ID
	}
	keys := make([]keyed, 0, len(n.Children))
	for _, c := range s.children(n) {
		id := s.tree.LeafID(c)
		if id == 0 {
			return
		}
		keys = append(keys, keyed{id: id, child: c.ID})
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].id < keys[j].id })
	for i, k := range keys {
		n.Children[i] = k.child
	}
}

// loops handles infinite loop precedence. The engine loops the innermost
// looping object, so loops above it never repeat and items after a looping
// item in a sequence are never reached.
func (s *simplifier) loops(n *playlist.Node) {
	for _, c := range s.children(n) {
		s.loops(c)
	}

	// layers whose children loop independently can't stay in sync
	if n.IsLayer() && !s.res.MultiLoops {
		for _, c := range s.children(n) {
			if s.tree.HasInfiniteLoop(c) {
				s.res.MultiLoops = true
				break
			}
		}
	}

	// a looping step group gets trapped repeating at this level
	if n.LoopsForever() {
		switch n.Kind {
		case playlist.KindRandomStep:
			n.Kind = playlist.KindRandomContinuous
		case playlist.KindSequenceStep:
			n.Kind = playlist.KindSequenceContinuous
		}
	}

	// continuous randoms of looping children are shuffled songs
	if n.Kind == playlist.KindRandomContinuous && s.allLoop(n) {
		n.Kind = playlist.KindRandomStep
		n.Loop = nil
	}

	// the layer never restarts while every child repeats on its own
	if n.IsLayer() && n.LoopsForever() && s.allLoop(n) {
		n.Loop = nil
	}

	if n.IsContinuous() {
		s.trapLoops(n)
	}
}

// allLoop reports whether every child of n contains an infinite loop.
func (s *simplifier) allLoop(n *playlist.Node) bool {
	if len(n.Children) == 0 {
		return false
	}
	for _, c := range s.children(n) {
		if !s.tree.HasInfiniteLoop(c) {
			return false
		}
	}
	return true
}

func (s *simplifier) trapLoops(n *playlist.Node) {
	loopEnds := 0
	kids := s.children(n)
	for i, c := range kids {
		child := s.tree.FirstChild(c)
		if child == nil {
			continue
		}

		// S2 > sound1, N1 (l=0) > sound2  ==  S2 > sound1, sound2 (l=0)
		if child.LoopsForever() && child.IsSingle() && child.Ignorable(true, false) {
			sub := s.tree.FirstChild(s.tree.Child(child, 0))
			if sub != nil && sub.Loop == nil {
				sub.Loop = child.Loop
				if sub.IsSound() {
					sub.LoopAnchor = true
				}
				child.Loop = nil
				child = sub
			}
		}

		if !child.LoopsForever() {
			continue
		}
		// the last item only traps when an earlier one already did
		if i < len(kids)-1 || loopEnds > 0 {
			loopEnds++
			child.LoopEnd = true
			child.LoopKilled = true
			n.Loop = nil
		}
	}
}

// extra adjusts the first printed node.
func (s *simplifier) extra(root *playlist.Node) {
	base := s.tree.FirstChild(root)
	if base == nil {
		return
	}
	s.initialDelay(base)
	s.selectable(base)
}

// initialDelay drops the delay before the first node, which only matters
// in game.
func (s *simplifier) initialDelay(n *playlist.Node) {
	if s.opts.WriteDelays || n.IsClip() {
		return
	}
	n.PadBegin = 0
	n.IDelay = nil
	n.Delay = nil
}

func (s *simplifier) selectable(n *playlist.Node) {
	if !n.IsGroup() || len(n.Children) <= 1 {
		return
	}

	random := s.opts.RandomAll && n.IsSteps()
	multi := s.opts.RandomMulti && s.res.MultiLoops
	force := s.opts.RandomForce && !n.IsSteps()

	switch {
	case random:
		s.res.Selection = SelectRandom
	case multi:
		s.res.Selection = SelectMulti
	case force:
		s.res.Selection = SelectForce
	default:
		return
	}
	s.res.SelectableCount = len(n.Children)
	n.ForceSelectable = true
}
