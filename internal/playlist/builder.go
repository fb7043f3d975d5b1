package playlist

import (
	"fmt"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/ir"
)

// Builder appends nodes under a cursor. Every Group call that returns true
// must be paired with one GroupDone (or GroupDoneHint with the same count).
//
// Group calls with an empty children count do nothing and return false;
// the matching GroupDoneHint with a zero count does nothing either, which
// keeps the cursor balanced when a container turns out to be empty.
type Builder struct {
	tree    *Tree
	current *Node
	params  *gamesync.Params

	// Gamevars collects the game parameters that changed node volumes.
	Gamevars []gamesync.Gamevar
}

// NewBuilder starts a tree whose root carries cfg. Nodes get their volume
// RTPCs evaluated against the game parameters in params, if any.
func NewBuilder(cfg *ir.Config, params *gamesync.Params) *Builder {
	t := NewTree(cfg)
	return &Builder{tree: t, current: t.Root(), params: params}
}

// Tree returns the tree being built.
func (b *Builder) Tree() *Tree { return b.tree }

// Depth returns how many groups are open.
func (b *Builder) Depth() int {
	depth := 0
	for n := b.current; n.Parent != NoID; n = b.tree.Parent(n) {
		depth++
	}
	return depth
}

// GroupSingle opens a single group. A non-nil transition marks the group as
// a playlist item clamped to its segment markers.
func (b *Builder) GroupSingle(cfg *ir.Config, tr *ir.Transition) error {
	n, err := b.open(cfg)
	if err != nil {
		return err
	}
	n.Kind = KindSingle
	if tr != nil {
		n.Transition = tr
	}
	return nil
}

// GroupSequenceContinuous opens a group playing every child in order.
func (b *Builder) GroupSequenceContinuous(count int, cfg *ir.Config) (bool, error) {
	return b.group(count, cfg, KindSequenceContinuous)
}

// GroupSequenceStep opens a group playing one child per call, in order.
func (b *Builder) GroupSequenceStep(count int, cfg *ir.Config) (bool, error) {
	return b.group(count, cfg, KindSequenceStep)
}

// GroupRandomContinuous opens a group playing every child in random order.
func (b *Builder) GroupRandomContinuous(count int, cfg *ir.Config) (bool, error) {
	return b.group(count, cfg, KindRandomContinuous)
}

// GroupRandomStep opens a group playing one random child per call.
func (b *Builder) GroupRandomStep(count int, cfg *ir.Config) (bool, error) {
	return b.group(count, cfg, KindRandomStep)
}

// GroupLayer opens a group playing every child at once.
func (b *Builder) GroupLayer(count int, cfg *ir.Config) (bool, error) {
	return b.group(count, cfg, KindLayer)
}

func (b *Builder) group(count int, cfg *ir.Config, kind Kind) (bool, error) {
	if count == 0 {
		return false, nil
	}
	n, err := b.open(cfg)
	if err != nil {
		return false, err
	}
	n.Kind = kind
	return true, nil
}

func (b *Builder) open(cfg *ir.Config) (*Node, error) {
	if b.current.IsSound() {
		return nil, fmt.Errorf("playlist: group under sound %d", b.current.ID)
	}
	n := b.tree.NewGroup(b.current, cfg)
	if err := b.applyGamevars(n); err != nil {
		return nil, err
	}
	b.current = n
	return n, nil
}

// GroupDone closes the current group.
func (b *Builder) GroupDone() {
	if p := b.tree.Parent(b.current); p != nil {
		b.current = p
	}
}

// GroupDoneHint closes a group opened with the given children count.
func (b *Builder) GroupDoneHint(count int) {
	if count == 0 {
		return
	}
	b.GroupDone()
}

// SourceSound appends a sound leaf under the cursor.
func (b *Builder) SourceSound(sound *ir.Sound, cfg *ir.Config) error {
	if sound == nil {
		return fmt.Errorf("playlist: nil sound under %d", b.current.ID)
	}
	if b.current.IsSound() {
		return fmt.Errorf("playlist: sound under sound %d", b.current.ID)
	}
	n := b.tree.NewSound(b.current, sound, cfg)
	return b.applyGamevars(n)
}

func (b *Builder) applyGamevars(n *Node) error {
	used, err := n.ApplyGamevars(b.params)
	if err != nil {
		return err
	}
	b.Gamevars = append(b.Gamevars, used...)
	return nil
}
