package txtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/simplify"
)

func stream(tid uint32) *ir.Sound {
	return &ir.Sound{NodeID: tid, Source: &ir.Source{TID: tid, Extension: "wem", Version: 120}}
}

func newTxtp(t *testing.T, node graph.Node) *Txtp {
	t.Helper()
	tx := New(gamesync.NewParams(), nil, nil)
	tx.Begin(Entry{Node: node, ShortName: "event"}, &ir.Config{})
	return tx
}

func TestRenderSingle(t *testing.T) {
	ev := event(1, 100, "Play_BGM")
	graph.NewBank(1, "bgm.bnk", 120).Append(ev)

	tx := newTxtp(t, ev)
	tx.Info.Next(ev, nil, nil)
	require.NoError(t, tx.Builder().SourceSound(stream(10), nil))
	tx.Info.Done()

	outs, err := tx.Render(nil, RenderOptions{Simplify: simplify.DefaultOptions()})
	require.NoError(t, err)
	require.Len(t, outs, 1)

	out := outs[0]
	assert.Equal(t, "Play_BGM", out.Name)
	assert.Equal(t, "wem/10.wem #i\n\n", out.Text)
	assert.Equal(t, ir.OutputID(out.Text), out.Key)

	footer := out.Footer("Play_BGM.txtp", out.Name)
	assert.Contains(t, footer, "# "+ir.Banner+"\n")
	assert.Contains(t, footer, "# Play_BGM.txtp\n")
	assert.Contains(t, footer, "# - bgm.bnk\n")
	assert.Contains(t, footer, "CAkEvent[1] 100")
	assert.NotContains(t, footer, "full name")

	footer = out.Footer("Play_BGM#002.txtp", out.Name)
	assert.Contains(t, footer, "# * full name: Play_BGM.txtp\n")
}

func TestRenderNothingAudible(t *testing.T) {
	ev := event(1, 100, "Play_BGM")
	graph.NewBank(1, "bgm.bnk", 120).Append(ev)

	tx := newTxtp(t, ev)
	outs, err := tx.Render(nil, RenderOptions{Simplify: simplify.DefaultOptions()})
	require.NoError(t, err)
	assert.Empty(t, outs)

	outs, err = New(nil, nil, nil).Render(nil, RenderOptions{})
	require.NoError(t, err)
	assert.Nil(t, outs)
}

func TestRenderSilences(t *testing.T) {
	ev := event(1, 100, "Play_BGM")
	graph.NewBank(1, "bgm.bnk", 120).Append(ev)

	muted := &ir.Config{SilenceStates: []ir.StateRef{{Group: 1, Value: 2}}}
	build := func() *Txtp {
		tx := newTxtp(t, ev)
		b := tx.Builder()
		_, err := b.GroupLayer(2, nil)
		require.NoError(t, err)
		require.NoError(t, b.SourceSound(stream(10), nil))
		require.NoError(t, b.SourceSound(stream(20), muted))
		b.GroupDone()
		return tx
	}

	sp := gamesync.NewSilencePaths()
	sp.AddState(gamesync.SilenceState{Group: 1, Value: 2, GroupName: "music", ValueName: "off"})
	combo := sp.Combos()[0]

	outs, err := build().Render(combo, RenderOptions{Simplify: simplify.DefaultOptions()})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Contains(t, outs[0].Text, "?wem/20.wem")
	assert.Equal(t, "Play_BGM {s}=(music=off)", outs[0].Name)

	outs, err = build().Render(nil, RenderOptions{Simplify: simplify.DefaultOptions()})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.NotContains(t, outs[0].Text, "?wem")
	assert.Equal(t, "Play_BGM", outs[0].Name)
}

func TestRenderSelectable(t *testing.T) {
	ev := event(1, 100, "Play_BGM")
	graph.NewBank(1, "bgm.bnk", 120).Append(ev)

	tx := newTxtp(t, ev)
	b := tx.Builder()
	_, err := b.GroupRandomStep(3, nil)
	require.NoError(t, err)
	for _, tid := range []uint32{1, 2, 3} {
		require.NoError(t, b.SourceSound(stream(tid), nil))
	}
	b.GroupDone()

	opts := RenderOptions{Simplify: simplify.DefaultOptions()}
	opts.Simplify.RandomAll = true
	outs, err := tx.Render(nil, opts)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	for i, out := range outs {
		assert.Equal(t, i+1, out.Selected)
		assert.Contains(t, out.Footer(out.Name+Extension, out.Name), "# * selected group=")
	}
	assert.Contains(t, outs[1].Text, "group = -R3>2")
	assert.NotEqual(t, outs[0].Name, outs[1].Name)
}

func TestRenderExternals(t *testing.T) {
	ev := event(1, 100, "Play_Voice")
	graph.NewBank(1, "voice.bnk", 120).Append(ev)

	tx := newTxtp(t, ev)
	ext := &ir.Sound{NodeID: 5, Source: &ir.Source{TID: 77, SourceID: 5, External: true, Extension: "wem"}}
	require.NoError(t, tx.Builder().SourceSound(ext, nil))

	opts := RenderOptions{
		Simplify:  simplify.DefaultOptions(),
		Externals: map[uint32][]string{77: {"voice/line_a.wem", "voice/line_b.wem"}},
	}
	outs, err := tx.Render(nil, opts)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, "Play_Voice {e=line_a}", outs[0].Name)
	assert.Contains(t, outs[0].Text, "voice/line_a.wem")
	assert.Equal(t, "Play_Voice {e=line_b}", outs[1].Name)
}

func TestRenderDupeKeys(t *testing.T) {
	ev := event(1, 100, "Play_BGM")
	graph.NewBank(1, "bgm.bnk", 120).Append(ev)

	build := func(volume float64) *Txtp {
		tx := newTxtp(t, ev)
		require.NoError(t, tx.Builder().SourceSound(stream(10), &ir.Config{Volume: ir.Float(volume)}))
		return tx
	}
	render := func(volume float64, exact bool) *Output {
		outs, err := build(volume).Render(nil, RenderOptions{Simplify: simplify.DefaultOptions(), DupesExact: exact})
		require.NoError(t, err)
		require.Len(t, outs, 1)
		return outs[0]
	}

	// volumes are ignored unless comparing exact texts
	assert.Equal(t, render(-2, false).Key, render(-4, false).Key)
	assert.NotEqual(t, render(-2, true).Key, render(-4, true).Key)
}
