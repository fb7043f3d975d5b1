package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/ir"
)

func sound(tid uint32) *ir.Sound {
	return &ir.Sound{Source: &ir.Source{TID: tid, Extension: "wem"}}
}

func TestBuilderNesting(t *testing.T) {
	b := NewBuilder(nil, nil)

	ok, err := b.GroupSequenceContinuous(2, &ir.Config{Loop: ir.Int(0)})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, b.GroupSingle(nil, &ir.Transition{}))
	require.NoError(t, b.SourceSound(sound(10), nil))
	b.GroupDone()
	require.NoError(t, b.SourceSound(sound(20), nil))
	b.GroupDoneHint(2)

	assert.Equal(t, 0, b.Depth())

	tree := b.Tree()
	root := tree.Root()
	require.Len(t, root.Children, 1)
	seq := tree.Child(root, 0)
	assert.Equal(t, KindSequenceContinuous, seq.Kind)
	assert.True(t, seq.LoopsForever())

	kids := tree.Children(seq)
	require.Len(t, kids, 2)
	assert.Equal(t, KindSingle, kids[0].Kind)
	assert.NotNil(t, kids[0].Transition)
	assert.Equal(t, KindSound, kids[1].Kind)
	assert.Equal(t, 2, tree.Sounds())
}

func TestBuilderEmptyGroupStaysBalanced(t *testing.T) {
	b := NewBuilder(nil, nil)
	require.NoError(t, b.GroupSingle(nil, nil))

	ok, err := b.GroupLayer(0, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	b.GroupDoneHint(0)

	assert.Equal(t, 1, b.Depth())
	b.GroupDone()
	assert.Equal(t, 0, b.Depth())
}

func TestSoundNeverHasChildren(t *testing.T) {
	b := NewBuilder(nil, nil)
	ok, err := b.GroupLayer(3, nil)
	require.NoError(t, err)
	require.True(t, ok)
	for _, tid := range []uint32{3, 1, 2} {
		require.NoError(t, b.SourceSound(sound(tid), nil))
	}
	b.GroupDoneHint(3)

	tree := b.Tree()
	tree.Walk(tree.Root(), func(n *Node) bool {
		if n.IsSound() {
			assert.Empty(t, n.Children)
		}
		return true
	})
}

func TestNodeVolumeAdjust(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ir.Config
		volume   *float64
		silenced bool
	}{
		{"plain", ir.Config{Volume: ir.Float(-3)}, ir.Float(-3), false},
		{"muted", ir.Config{Volume: ir.Float(-96)}, nil, true},
		{"makeup added", ir.Config{Volume: ir.Float(-3), MakeupGain: ir.Float(2)}, ir.Float(-1), false},
		{"makeup muted", ir.Config{MakeupGain: ir.Float(-100)}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNode(&tt.cfg, nil)
			assert.Equal(t, tt.volume, n.Volume)
			assert.Equal(t, tt.silenced, n.Silenced)
		})
	}
}

func TestClipDropsLoop(t *testing.T) {
	n := newNode(&ir.Config{Loop: ir.Int(0)}, &ir.Sound{Clip: true})
	assert.Nil(t, n.Loop)
}

func TestClampVolume(t *testing.T) {
	n := newNode(&ir.Config{}, nil)
	n.AddVolume(500)
	assert.Equal(t, VolumeMax, *n.Volume)
	n.AddVolume(-1000)
	assert.Equal(t, -VolumeMax, *n.Volume)
}

func TestIgnorable(t *testing.T) {
	tree := NewTree(nil)
	group := tree.NewGroup(tree.Root(), nil)
	group.Kind = KindSingle
	leaf := tree.NewSound(group, sound(1), nil)

	assert.True(t, group.Ignorable(false, false))
	assert.False(t, leaf.Ignorable(false, false))

	group.Loop = ir.Int(0)
	assert.False(t, group.Ignorable(false, false))
	assert.True(t, group.Ignorable(true, false))

	group.Loop = ir.Int(3)
	assert.False(t, group.Ignorable(true, false))

	group.Loop = nil
	group.Volume = ir.Float(-2)
	assert.False(t, group.Ignorable(false, false))
	assert.True(t, group.Ignorable(false, true))

	assert.Same(t, leaf, tree.FirstChild(tree.Root()))
}

func TestCopySubtree(t *testing.T) {
	tree := NewTree(nil)
	group := tree.NewGroup(tree.Root(), &ir.Config{Entry: ir.Float(100), Duration: ir.Float(500)})
	group.Kind = KindSingle
	group.Transition = &ir.Transition{}
	tree.NewSound(group, sound(7), nil)

	clone := tree.Copy(tree.Root(), group)
	require.Len(t, tree.Root().Children, 2)
	assert.Equal(t, KindSingle, clone.Kind)
	assert.NotSame(t, group.Config, clone.Config)
	assert.NotSame(t, group.Transition, clone.Transition)
	assert.Equal(t, uint32(7), tree.LeafID(clone))

	tree.MoveFirst(clone)
	assert.Equal(t, clone.ID, tree.Root().Children[0])

	tree.Remove(group)
	assert.Equal(t, []ID{clone.ID}, tree.Root().Children)
}

func TestApplyGamevars(t *testing.T) {
	params := gamesync.NewParams()
	params.SetGamevar(gamesync.Gamevar{ID: 55, Max: true})

	cfg := &ir.Config{
		Volume: ir.Float(-2),
		Rtpcs: []ir.Rtpc{{
			ID:      55,
			Param:   "Volume",
			Accum:   ir.AccumAdditive,
			Version: 120,
			Points: []ir.CurvePoint{
				{X: 0, Y: 0, Interp: 4},
				{X: 100, Y: -6, Interp: 4},
			},
		}},
	}

	b := NewBuilder(nil, params)
	require.NoError(t, b.SourceSound(sound(1), cfg))
	n := b.Tree().Child(b.Tree().Root(), 0)

	require.NotNil(t, n.Volume)
	assert.InDelta(t, -8.0, *n.Volume, 1e-9)
	require.Len(t, b.Gamevars, 1)
	assert.Equal(t, uint32(55), b.Gamevars[0].ID)
}
