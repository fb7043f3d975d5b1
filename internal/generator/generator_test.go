package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/rebuild"
	"github.com/roach88/txtpgen/internal/testutil"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func run(t *testing.T, banks []graph.Bank, opts Options, fopts ...Option) (*Result, *MemorySink) {
	t.Helper()
	sink := NewMemorySink()
	fopts = append([]Option{WithSink(sink), WithRunIDGenerator(NewFixedGenerator("run-1"))}, fopts...)
	g, err := New(banks, opts, fopts...)
	require.NoError(t, err)
	res, err := g.Run(context.Background())
	require.NoError(t, err)
	return res, sink
}

func simpleBank() *testutil.Bank {
	return testutil.NewBank(1, "bgm.bnk").Add(
		testutil.Event(100, "Play_BGM", 200),
		testutil.ActionPlay(200, 300),
		testutil.Sound(300, 1000, true),
	)
}

func TestRunSingleEvent(t *testing.T) {
	res, sink := run(t, testutil.Banks(simpleBank()), DefaultOptions())

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, []string{"Play_BGM.txtp"}, sink.Names())
	assert.Equal(t, 1, res.Stats.Created)
	assert.Equal(t, 1, res.Stats.Streams)
	assert.Equal(t, 0, res.Stats.Errors)

	contents, ok := sink.Get("Play_BGM.txtp")
	require.True(t, ok)
	assert.Contains(t, contents, "wem/1000.wem")
	assert.Contains(t, contents, "# "+ir.Banner+"\n")
	assert.Contains(t, contents, "# Play_BGM.txtp\n")
	assert.Contains(t, contents, "CAkEvent[0] 100")
	assert.Contains(t, contents, "CAkSound[2] 300")

	require.Len(t, res.Outputs, 1)
	out := res.Outputs[0]
	assert.Equal(t, uint32(100), out.SID)
	assert.Equal(t, "bgm.bnk", out.Bank)
	assert.Equal(t, contents, out.Contents)
	assert.False(t, out.Dupe)
}

func TestRunDeterministic(t *testing.T) {
	_, first := run(t, testutil.Banks(simpleBank()), DefaultOptions())
	_, second := run(t, testutil.Banks(simpleBank()), DefaultOptions())

	a, _ := first.Get("Play_BGM.txtp")
	b, _ := second.Get("Play_BGM.txtp")
	assert.Equal(t, a, b)
}

func TestRunEntryOrder(t *testing.T) {
	bank := func() *testutil.Bank {
		return testutil.NewBank(1, "bgm.bnk").Add(
			testutil.Event(100, "", 200),
			testutil.Event(101, "Play_B", 201),
			testutil.Event(102, "Play_A", 202),
			testutil.ActionPlay(200, 300),
			testutil.ActionPlay(201, 301),
			testutil.ActionPlay(202, 302),
			testutil.Sound(300, 1000, true),
			testutil.Sound(301, 1001, true),
			testutil.Sound(302, 1002, true),
		)
	}

	tests := []struct {
		name      string
		bankOrder bool
		want      []string
	}{
		{"named first", false, []string{"Play_A.txtp", "Play_B.txtp", "bgm-0000-event.txtp"}},
		{"bank order", true, []string{"bgm-0000-event.txtp", "Play_B.txtp", "Play_A.txtp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.BankOrder = tt.bankOrder
			_, sink := run(t, testutil.Banks(bank()), opts)
			assert.Equal(t, tt.want, sink.Names())
		})
	}
}

func switchBank() *testutil.Bank {
	return testutil.NewBank(1, "music.bnk").Add(
		testutil.Event(100, "Play_Music", 200),
		testutil.ActionPlay(200, 300),
		testutil.Switch(300, gamesync.Switch, 50, "area",
			testutil.Case{Value: 1, Name: "forest", Targets: []uint32{400}},
			testutil.Case{Value: 2, Name: "cave", Targets: []uint32{401}},
		),
		testutil.Sound(400, 1000, true),
		testutil.Sound(401, 1001, true),
	)
}

func TestRunCombos(t *testing.T) {
	res, sink := run(t, testutil.Banks(switchBank()), DefaultOptions())

	assert.Equal(t, []string{
		"Play_Music [area=forest].txtp",
		"Play_Music [area=cave].txtp",
	}, sink.Names())
	assert.Equal(t, 2, res.Stats.Created)

	forest, _ := sink.Get("Play_Music [area=forest].txtp")
	assert.Contains(t, forest, "wem/1000.wem")
	assert.Contains(t, forest, "# * gamesyncs: [area=forest]\n")
	cave, _ := sink.Get("Play_Music [area=cave].txtp")
	assert.Contains(t, cave, "wem/1001.wem")
}

func TestRunCombosLimit(t *testing.T) {
	res, sink := run(t, testutil.Banks(switchBank()), DefaultOptions(), WithMaxCombos(1))

	assert.Equal(t, []string{"Play_Music [area=forest].txtp"}, sink.Names())
	assert.Equal(t, 1, res.Stats.CombosSkipped)
	assert.Equal(t, 0, res.Stats.Errors)
}

func TestRunManualParams(t *testing.T) {
	opts := DefaultOptions()
	opts.Params = "[50=2]"
	res, sink := run(t, testutil.Banks(switchBank()), opts)

	assert.Equal(t, []string{"Play_Music [area=cave].txtp"}, sink.Names())
	assert.Equal(t, 1, res.Stats.Created)
}

func dupeBank() *testutil.Bank {
	return testutil.NewBank(1, "sfx.bnk").Add(
		testutil.Event(100, "Play_A", 200),
		testutil.Event(101, "Play_B", 201),
		testutil.ActionPlay(200, 300),
		testutil.ActionPlay(201, 300),
		testutil.Sound(300, 1000, true),
	)
}

func TestRunDuplicates(t *testing.T) {
	t.Run("skipped", func(t *testing.T) {
		res, sink := run(t, testutil.Banks(dupeBank()), DefaultOptions())
		assert.Equal(t, []string{"Play_A.txtp"}, sink.Names())
		assert.Equal(t, 1, res.Stats.Created)
		assert.Equal(t, 1, res.Stats.Duplicates)
	})

	t.Run("written", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Dupes = true
		res, sink := run(t, testutil.Banks(dupeBank()), opts)
		assert.Equal(t, []string{"Play_A.txtp", "Play_B {d}.txtp"}, sink.Names())
		assert.Equal(t, 2, res.Stats.Created)
		assert.Equal(t, 0, res.Stats.Duplicates)
		require.Len(t, res.Outputs, 2)
		assert.True(t, res.Outputs[1].Dupe)
	})
}

func unusedBank() *testutil.Bank {
	return simpleBank().Add(testutil.Sound(301, 1001, true))
}

func TestRunUnused(t *testing.T) {
	t.Run("off", func(t *testing.T) {
		res, sink := run(t, testutil.Banks(unusedBank()), DefaultOptions())
		assert.Equal(t, []string{"Play_BGM.txtp"}, sink.Names())
		assert.Equal(t, 0, res.Stats.Unused)
	})

	t.Run("on", func(t *testing.T) {
		opts := DefaultOptions()
		opts.GenerateUnused = true
		res, sink := run(t, testutil.Banks(unusedBank()), opts)
		assert.Equal(t, []string{"Play_BGM.txtp", "bgm-0003~unused-sound.txtp"}, sink.Names())
		assert.Equal(t, 2, res.Stats.Created)
		assert.Equal(t, 1, res.Stats.Unused)
		require.Len(t, res.Outputs, 2)
		assert.True(t, res.Outputs[1].Unused)
	})
}

func TestRunErrorsContinue(t *testing.T) {
	broken := graph.NewElement("CAkSound", "", nil).Append(
		graph.NewElement("ulID", "sid", int64(301)),
	)
	bank := simpleBank().Add(
		testutil.Event(101, "Play_Broken", 201),
		testutil.ActionPlay(201, 301),
		broken,
	)

	res, sink := run(t, testutil.Banks(bank), DefaultOptions())

	assert.Equal(t, []string{"Play_BGM.txtp"}, sink.Names())
	assert.Equal(t, 1, res.Stats.Errors)
	require.Len(t, res.Errors, 1)

	var perr *rebuild.ProcessError
	require.True(t, errors.As(res.Errors[0], &perr))
	assert.Equal(t, uint32(101), perr.SID)
	assert.Equal(t, "bgm.bnk", perr.Bank)
	assert.True(t, rebuild.IsUnsupported(res.Errors[0]))
}

func TestRunSelfContainingObject(t *testing.T) {
	bank := testutil.NewBank(1, "bgm.bnk").Add(
		testutil.Event(100, "Play_Loop", 200),
		testutil.ActionPlay(200, 300),
		testutil.Layer(300, 300),
	)

	res, sink := run(t, testutil.Banks(bank), DefaultOptions())

	assert.Empty(t, sink.Names())
	assert.Equal(t, 1, res.Stats.Errors)
	require.Len(t, res.Errors, 1)
	assert.True(t, rebuild.IsInvariant(res.Errors[0]))
}

func TestRunMissingReference(t *testing.T) {
	bank := testutil.NewBank(1, "bgm.bnk").Add(
		testutil.Event(100, "Play_Missing", 200),
		testutil.ActionPlay(200, 999),
	)

	res, sink := run(t, testutil.Banks(bank), DefaultOptions())

	assert.Empty(t, sink.Names())
	assert.Equal(t, 0, res.Stats.Errors)
	assert.Equal(t, []rebuild.Ref{{Bank: 1, ID: 999}}, res.Diagnostics.MissingUnknown)
}

func TestRunCanceled(t *testing.T) {
	g, err := New(testutil.Banks(simpleBank()), DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunOnce(t *testing.T) {
	g, err := New(testutil.Banks(simpleBank()), DefaultOptions())
	require.NoError(t, err)

	_, err = g.Run(context.Background())
	require.NoError(t, err)
	_, err = g.Run(context.Background())
	assert.Error(t, err)
}

type failingSink struct{}

func (failingSink) Write(string, string) error {
	return errors.New("disk full")
}

func TestRunSinkError(t *testing.T) {
	g, err := New(testutil.Banks(simpleBank()), DefaultOptions(), WithSink(failingSink{}))
	require.NoError(t, err)

	_, err = g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestNewInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.MasterVolume = "loud"
	_, err := New(nil, opts)
	require.Error(t, err)
	assert.True(t, IsOptionError(err))
}

func TestRunMasterVolume(t *testing.T) {
	opts := DefaultOptions()
	opts.MasterVolume = "-3dB"
	_, sink := run(t, testutil.Banks(simpleBank()), opts)

	contents, _ := sink.Get("Play_BGM.txtp")
	assert.Contains(t, contents, "# * master volume: -3.0dB\n")
}

func TestSilenceCombos(t *testing.T) {
	paths := func() *gamesync.SilencePaths {
		s := gamesync.NewSilencePaths()
		s.AddState(gamesync.SilenceState{Group: 1, Value: 11, GroupName: "bgm", ValueName: "a"})
		s.AddState(gamesync.SilenceState{Group: 1, Value: 12, GroupName: "bgm", ValueName: "b"})
		return s
	}

	tests := []struct {
		name   string
		silent *gamesync.SilencePaths
		params string
		combos int
		base   bool
	}{
		{"no silences", gamesync.NewSilencePaths(), "", 0, true},
		{"free state", paths(), "", 2, true},
		{"other group fixed", paths(), "(2=5)", 2, true},
		{"state fixed to a silencing value", paths(), "(1=11)", 1, false},
		{"state fixed to another value", paths(), "(1=13)", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := gamesync.NewParams()
			if tt.params != "" {
				var err error
				params, err = gamesync.Parse(tt.params)
				require.NoError(t, err)
			}

			combos, base := silenceCombos(tt.silent, params)
			assert.Len(t, combos, tt.combos)
			assert.Equal(t, tt.base, base)
		})
	}
}
