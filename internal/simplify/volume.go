package simplify

import (
	"math"

	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
)

// volume applies the master volume. Negative offsets go to every sound,
// which keeps the mix from clipping. Positive offsets go to the first node
// with a volume, or to the sounds right below it, or else stay in the
// result to be written as a command.
func (s *simplifier) volume(root *playlist.Node) {
	if s.opts.AutoVolume {
		s.autoVolume(root)
		return
	}

	master := s.opts.MasterVolume
	switch {
	case master < 0:
		s.tree.Walk(root, func(n *playlist.Node) bool {
			if n.IsSound() {
				n.AddVolume(master)
			}
			return true
		})
	case master > 0:
		s.res.MasterVolume = s.positiveVolume(root, master)
	}
}

func (s *simplifier) positiveVolume(root *playlist.Node, master float64) float64 {
	base := s.tree.FirstChild(root)
	if base == nil {
		return master
	}
	if ir.IsSet(base.Volume) {
		base.AddVolume(master)
		return 0
	}

	var sounds []*playlist.Node
	for _, c := range s.children(base) {
		sub := s.tree.FirstChild(c)
		if sub == nil {
			continue
		}
		if !sub.IsSound() {
			return master
		}
		sounds = append(sounds, sub)
	}
	if len(sounds) == 0 {
		return master
	}
	for _, n := range sounds {
		n.AddVolume(master)
	}
	return 0
}

// autoVolume finds the loudest output level of the tree (own volume plus
// the loudest child, bottom-up) and moves it to 0dB. The offset is pushed
// top-down: a node with its own volume absorbs what it can and passes the
// rest, a node without one passes everything to each child, and a leaf
// takes whatever is left.
func (s *simplifier) autoVolume(root *playlist.Node) {
	peak := s.outputVolume(root)
	offset := -peak
	if offset == 0 {
		offset = 0 // drops the sign of -0
	}
	s.res.AutoVolume = ir.Float(offset)
	s.distribute(root, offset)
}

func (s *simplifier) outputVolume(n *playlist.Node) float64 {
	out := ir.FloatVal(n.Volume)
	if len(n.Children) == 0 {
		return out
	}
	loudest := math.Inf(-1)
	for _, c := range s.children(n) {
		loudest = math.Max(loudest, s.outputVolume(c))
	}
	return out + loudest
}

func (s *simplifier) distribute(n *playlist.Node, offset float64) {
	if offset == 0 {
		return
	}
	if len(n.Children) == 0 {
		n.AddVolume(offset)
		return
	}
	if own := ir.FloatVal(n.Volume); own != 0 {
		absorbed := math.Copysign(math.Min(math.Abs(offset), math.Abs(own)), offset)
		n.AddVolume(absorbed)
		offset -= absorbed
	}
	for _, c := range s.children(n) {
		s.distribute(c, offset)
	}
}
