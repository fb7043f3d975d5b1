package printer

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/curve"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
	"github.com/roach88/txtpgen/internal/simplify"
)

func stream(tid uint32) *ir.Sound {
	return &ir.Sound{NodeID: tid, Source: &ir.Source{TID: tid, Extension: "wem", Version: 120}}
}

func group(tree *playlist.Tree, parent *playlist.Node, kind playlist.Kind, cfg *ir.Config) *playlist.Node {
	n := tree.NewGroup(parent, cfg)
	n.Kind = kind
	return n
}

func render(t *testing.T, tree *playlist.Tree, sopts simplify.Options, opts Options) (*Printer, string) {
	t.Helper()
	res, err := simplify.Run(tree, sopts)
	require.NoError(t, err)
	p := New(tree, res, opts)
	return p, p.Generate(false)
}

func assertGolden(t *testing.T, name, text string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(text))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, ""},
		{1.5, "1.5"},
		{2, "2.0"},
		{-3, "-3.0"},
		{123.456, "123.456"},
		{0.0001, "0.0001"},
		{0.00001, "0.0000100000"},
		{1e-12, ""},
		{1e16, "10000000000000000.0000000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in), "%v", tt.in)
	}

	assert.Equal(t, "1e-05", Repr(0.00001))
	assert.Equal(t, "2.0", Repr(2))
	assert.Equal(t, " #p 1.5", ms(" #p", 1500))
	assert.Equal(t, "", ms(" #p", 0))
	assert.Equal(t, "0.0", sec(0))
	assert.Equal(t, "0.25", sec(0.25))
}

func TestPrintLayer(t *testing.T) {
	tree := playlist.NewTree(nil)
	layer := group(tree, tree.Root(), playlist.KindLayer, nil)
	tree.NewSound(layer, stream(200), nil)
	tree.NewSound(layer, stream(100), &ir.Config{Volume: ir.Float(-3)})

	p, text := render(t, tree, simplify.DefaultOptions(), Options{})
	assertGolden(t, "layer", text)
	assert.True(t, p.Flags().Streams)
	assert.False(t, p.Flags().Internals)
}

func TestPrintSegmentPlaylist(t *testing.T) {
	tree := playlist.NewTree(nil)
	seq := group(tree, tree.Root(), playlist.KindSequenceContinuous, &ir.Config{Loop: ir.Int(0)})
	for _, tid := range []uint32{1, 2} {
		item := tree.NewGroup(seq, nil)
		item.Kind = playlist.KindSingle
		item.Transition = &ir.Transition{}
		segment := group(tree, item, playlist.KindSingle, &ir.Config{
			Duration: ir.Float(1000), Entry: ir.Float(100), Exit: ir.Float(900),
		})
		snd := stream(tid)
		snd.Clip = true
		snd.FSD = 1000
		tree.NewSound(segment, snd, nil)
	}

	_, text := render(t, tree, simplify.DefaultOptions(), Options{})
	assertGolden(t, "segments", text)
}

func TestPrintSourceKinds(t *testing.T) {
	build := func() *playlist.Tree {
		tree := playlist.NewTree(nil)
		rnd := group(tree, tree.Root(), playlist.KindRandomStep, nil)
		tree.NewSound(rnd, &ir.Sound{NodeID: 10, Source: &ir.Source{
			TID: 10, Internal: true, BankName: "bgm.bnk", MediaIndex: 2, Extension: "wem",
		}}, nil)
		tree.NewSound(rnd, &ir.Sound{NodeID: 20, Source: &ir.Source{
			TID: 20, SourceID: 5, External: true, Extension: "wem",
		}}, nil)
		tree.NewSound(rnd, &ir.Sound{NodeID: 30, Source: &ir.Source{
			TID: 30, Plugin: true, PluginID: ir.PluginSilence, PluginName: "silence", PluginDuration: ir.Float(1.5),
		}}, nil)
		return tree
	}

	sopts := simplify.DefaultOptions()
	sopts.MasterVolume = 2

	p, text := render(t, build(), sopts, Options{Selected: 2})
	assertGolden(t, "sources", text)

	flags := p.Flags()
	assert.True(t, flags.Internals)
	assert.True(t, flags.Externals)
	assert.True(t, flags.RandomSteps)
	assert.False(t, flags.Unsupported)
	assert.Equal(t, []string{"bgm.bnk"}, flags.Banks)

	simpler := p.Generate(true)
	assert.Equal(t, " banks/10.wem #i\n"+
		" ?(?).wem #i  ##external 20 [obj 5]\n"+
		" ?.plugin-silence #B 1.5 #i\n"+
		"group = -R3>2\n\n", simpler)
}

func TestPrintMasterVolumeCommand(t *testing.T) {
	tree := playlist.NewTree(nil)
	seq := group(tree, tree.Root(), playlist.KindSequenceContinuous, nil)
	for _, ids := range [][]uint32{{1, 2}, {3, 4}} {
		layer := group(tree, seq, playlist.KindLayer, nil)
		for _, id := range ids {
			tree.NewSound(layer, stream(id), nil)
		}
	}

	sopts := simplify.DefaultOptions()
	sopts.MasterVolume = 2
	p, text := render(t, tree, sopts, Options{})
	assertGolden(t, "commands", text)
	assert.NotContains(t, p.Generate(true), "commands")
}

func TestPrintLoopedClip(t *testing.T) {
	tree := playlist.NewTree(nil)
	snd := stream(1)
	snd.Clip = true
	snd.FPA, snd.FBT, snd.FSD = 40, -40, 30
	tree.NewSound(tree.Root(), snd, nil)

	_, text := render(t, tree, simplify.DefaultOptions(), Options{})
	assert.Equal(t, "wem/1.wem #E #B 0.09 #r 0.02\n\n", text)
}

func TestPrintInfoMarks(t *testing.T) {
	tree := playlist.NewTree(nil)
	seq := group(tree, tree.Root(), playlist.KindSequenceContinuous, nil)
	a := tree.NewSound(seq, stream(1), &ir.Config{Loop: ir.Int(0)})
	a.LoopKilled = true
	a.LoopEnd = true
	b := tree.NewSound(seq, stream(2), nil)
	b.Silenced = true
	b.Envelopes = []curve.Envelope{{Vol1: 0, Vol2: 1, Shape: 'T', Time1: 0, Time2: 2}}

	p := New(tree, &simplify.Result{Sounds: 2}, Options{})
	text := p.Generate(false)
	assert.Equal(t, " wem/1.wem #e  ##loop #loop-end\n"+
		" ?wem/2.wem #i #m0^0.0~1.0=T@-1~0.0+2.0~-1  ##fade\n"+
		"group = -S2\n\n", text)
	assert.True(t, p.Flags().Silences)
	assert.True(t, p.CrossfadingMultiple())

	// a lone muted sound stays audible
	p = New(tree, &simplify.Result{Sounds: 1}, Options{})
	assert.Contains(t, p.Generate(false), " wem/2.wem #i")
}

func TestPrintEnvelopeLimit(t *testing.T) {
	tree := playlist.NewTree(nil)
	n := tree.NewSound(tree.Root(), stream(1), nil)
	for i := 0; i < 100; i++ {
		n.Envelopes = append(n.Envelopes, curve.Envelope{Vol1: 1, Vol2: 0.5, Shape: 'E', Time1: float64(i), Time2: 0.5})
	}

	text := New(tree, &simplify.Result{Sounds: 1}, Options{}).Generate(false)
	assert.Contains(t, text, " ##more envelopes...")
	assert.Less(t, strings.Count(text, "#m0"), 100)

	assert.NotContains(t, New(tree, &simplify.Result{Sounds: 1}, Options{}).Generate(true), "#m0")
}

func TestPrintLanguageDir(t *testing.T) {
	tree := playlist.NewTree(nil)
	snd := stream(5)
	snd.Source.Lang = "English(US)"
	snd.Source.LangShort = "en"
	tree.NewSound(tree.Root(), snd, nil)

	p := New(tree, &simplify.Result{Sounds: 1}, Options{Lang: true, WemDir: "audio/"})
	assert.Equal(t, "audio/English(US)/5.wem #i\n\n", p.Generate(false))
	assert.Equal(t, "en", p.Flags().Lang)

	p = New(tree, &simplify.Result{Sounds: 1}, Options{})
	assert.Equal(t, "wem/5.wem #i\n\n", p.Generate(false))
}

func TestPrintUnsupported(t *testing.T) {
	tree := playlist.NewTree(nil)
	layer := group(tree, tree.Root(), playlist.KindLayer, nil)
	tree.NewSound(layer, &ir.Sound{NodeID: 1, Source: &ir.Source{TID: 1, Plugin: true, PluginID: 0x00640002, PluginName: "sine"}}, nil)
	tree.NewSound(layer, &ir.Sound{NodeID: 2}, nil)

	p := New(tree, &simplify.Result{Sounds: 2}, Options{})
	text := p.Generate(false)
	assert.Contains(t, text, " ?.plugin-sine #i\n")
	assert.Contains(t, text, " ?.missing #i\n")
	assert.True(t, p.Flags().Unsupported)
}
