package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
)

func TestLayerOfLoopingChildren(t *testing.T) {
	tests := []struct {
		name       string
		childLoops []bool
		layerLoops bool
	}{
		{"every child loops", []bool{true, true}, false},
		{"one child plays once", []bool{true, false}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := playlist.NewTree(nil)
			layer := group(t, tree, tree.Root(), playlist.KindLayer, &ir.Config{Loop: ir.Int(0)})
			var seqs []*playlist.Node
			for i, loops := range tt.childLoops {
				cfg := &ir.Config{}
				if loops {
					cfg.Loop = ir.Int(0)
				}
				seq := group(t, tree, layer, playlist.KindSequenceContinuous, cfg)
				tree.NewSound(seq, sfx(uint32(2*i+1)), nil)
				tree.NewSound(seq, sfx(uint32(2*i+2)), nil)
				seqs = append(seqs, seq)
			}

			res, err := Run(tree, DefaultOptions())
			require.NoError(t, err)

			assert.Equal(t, tt.layerLoops, layer.LoopsForever())
			assert.True(t, res.MultiLoops)
			for i, loops := range tt.childLoops {
				assert.Equal(t, loops, seqs[i].LoopsForever())
			}
		})
	}
}

func TestRandomOfLoopingChildren(t *testing.T) {
	tree := playlist.NewTree(nil)
	rnd := group(t, tree, tree.Root(), playlist.KindRandomContinuous, &ir.Config{Loop: ir.Int(0)})
	for i := 0; i < 2; i++ {
		seq := group(t, tree, rnd, playlist.KindSequenceContinuous, &ir.Config{Loop: ir.Int(0)})
		tree.NewSound(seq, sfx(uint32(2*i+1)), nil)
		tree.NewSound(seq, sfx(uint32(2*i+2)), nil)
	}

	_, err := Run(tree, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, playlist.KindRandomStep, rnd.Kind)
	assert.Nil(t, rnd.Loop)
}
