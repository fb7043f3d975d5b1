package simplify

import (
	"github.com/roach88/txtpgen/internal/playlist"
)

// PrunePolicy selects which non-playing segments clean removes.
type PrunePolicy uint8

const (
	// PruneZeroDuration drops segments with an explicit zero duration.
	PruneZeroDuration PrunePolicy = 1 << iota
	// PruneZeroExitInPlaylist drops segments with an explicit zero exit
	// marker, but only inside sequence or random playlists.
	PruneZeroExitInPlaylist
)

// DefaultPrune enables every pruning rule.
const DefaultPrune = PruneZeroDuration | PruneZeroExitInPlaylist

// Selection names the flag that made a group selectable.
type Selection int

const (
	SelectNone Selection = iota
	SelectRandom
	SelectMulti
	SelectForce
)

// Options drive the passes.
type Options struct {
	// MasterVolume is a dB offset: negative values go to every sound,
	// positive values to the first node with a volume.
	MasterVolume float64
	// AutoVolume ignores MasterVolume and moves the loudest output to 0dB.
	AutoVolume bool
	// WriteDelays keeps the initial delay of the first node.
	WriteDelays bool

	RandomAll   bool
	RandomMulti bool
	RandomForce bool

	Prune PrunePolicy
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Prune: DefaultPrune}
}

// Result describes the simplified tree.
type Result struct {
	// Sounds counts audible sound leaves.
	Sounds      int
	Transitions int
	LoopGroups  int
	LoopSounds  int

	Externals  []uint32
	MultiLoops bool
	SelfLoops  bool

	// SelectableCount is the number of children of the selectable group,
	// or 0 when there is none.
	SelectableCount int
	Selection       Selection

	// MasterVolume is the positive dB offset that could not be moved into
	// the tree and must be written as a command.
	MasterVolume float64
	// AutoVolume is the offset computed in automatic mode.
	AutoVolume *float64
}

// HasSounds reports whether anything audible is left.
func (r *Result) HasSounds() bool { return r.Sounds > 0 }

// NoLoops reports a tree without infinite loops.
func (r *Result) NoLoops() bool { return r.LoopGroups == 0 && r.LoopSounds == 0 }

type simplifier struct {
	tree *playlist.Tree
	opts Options
	res  *Result

	// segments is the number of transition segments, for the last-segment window
	segments int
}

// Run applies every pass to tree in order.
func Run(tree *playlist.Tree, opts Options) (*Result, error) {
	s := &simplifier{tree: tree, opts: opts, res: &Result{}}
	root := tree.Root()

	s.clean(root)
	s.selfLoops(root)
	s.props(root)
	if err := s.times(root); err != nil {
		return nil, err
	}
	s.reorder(root)
	if !s.res.NoLoops() {
		s.loops(root)
	}
	s.extra(root)
	s.volume(root)
	return s.res, nil
}

func (s *simplifier) children(n *playlist.Node) []*playlist.Node {
	return s.tree.Children(n)
}
