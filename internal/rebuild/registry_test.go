package rebuild

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/testutil"
	"github.com/roach88/txtpgen/internal/txtp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func registry(t *testing.T, banks ...*testutil.Bank) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, b := range testutil.Banks(banks...) {
		r.AddBank(b)
	}
	return r
}

func TestRegistryAddBank(t *testing.T) {
	bank := testutil.NewBank(1, "bgm.bnk").Add(
		testutil.Event(100, "Play_BGM", 200),
		testutil.ActionPlay(200, 300),
		testutil.Sound(300, 1000, true),
		// repeated ids keep the first object
		testutil.Sound(300, 2000, true),
	)
	r := NewRegistry()
	assert.Equal(t, 3, r.AddBank(bank.Build()))

	node := r.Lookup(1, 300)
	require.NotNil(t, node)
	assert.Equal(t, "CAkSound", node.Name())
	assert.Equal(t, int64(2), node.Attr("index"))

	assert.Nil(t, r.Lookup(1, 999))
	assert.Len(t, r.Objects(KindSound), 1)

	name, ok := r.BankName(1)
	assert.True(t, ok)
	assert.Equal(t, "bgm.bnk", name)
}

func TestRegistryLookupOtherBank(t *testing.T) {
	r := registry(t,
		testutil.NewBank(1, "a.bnk").Add(testutil.Sound(300, 1000, true)),
		testutil.NewBank(2, "b.bnk").Add(testutil.Sound(300, 2000, true)),
	)

	// exact bank wins
	node := r.Lookup(2, 300)
	require.NotNil(t, node)
	assert.Equal(t, "b.bnk", node.Root().Filename())
	assert.Empty(t, r.Diagnostics().Ambiguous)

	// any other bank falls back to the first one registered
	node = r.Lookup(3, 300)
	require.NotNil(t, node)
	assert.Equal(t, "a.bnk", node.Root().Filename())
	assert.Equal(t, []uint32{300}, r.Diagnostics().Ambiguous)
}

func TestRegistryObjectCached(t *testing.T) {
	r := registry(t, testutil.NewBank(1, "bgm.bnk").Add(testutil.Sound(300, 1000, true)))
	node := r.Lookup(1, 300)

	assert.False(t, r.Used(node))
	first, err := r.Object(node)
	require.NoError(t, err)
	second, err := r.Object(node)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, KindSound, first.Kind)
	assert.Equal(t, uint32(300), first.SID)
	assert.True(t, r.Used(node))
	assert.Empty(t, r.Unused(KindSound))
}

func TestRegistryBuildErrorCached(t *testing.T) {
	broken := graph.NewElement("CAkSound", "", nil).Append(
		graph.NewElement("ulID", "sid", int64(300)),
	)
	r := registry(t, testutil.NewBank(1, "bgm.bnk").Add(broken))
	node := r.Lookup(1, 300)

	_, err := r.Object(node)
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, KindSound, be.Kind)
	assert.Equal(t, uint32(300), be.SID)

	_, again := r.Object(node)
	assert.Equal(t, err, again)
}

func TestRegistryResolveMissing(t *testing.T) {
	bank := testutil.NewBank(1, "bgm.bnk").Add(
		testutil.Event(100, "Play_BGM", 200, 201, 202),
		testutil.ActionPlay(200, 990),
		testutil.ActionPlayFrom(201, 991, 1),
		testutil.ActionPlayFrom(202, 992, 7),
	)
	r := registry(t, bank)

	ev := r.Lookup(1, 100)
	require.NoError(t, r.Render(txtp.New(gamesync.NewParams(), nil, nil), txtp.Entry{Node: ev}))

	report := r.Diagnostics()
	assert.Equal(t, []Ref{{Bank: 1, ID: 990}}, report.MissingUnknown)
	assert.Equal(t, []Ref{{Bank: 1, ID: 991}}, report.MissingLoaded)
	assert.Equal(t, []Ref{{Bank: 7, ID: 992}}, report.MissingOthers)
	assert.Len(t, report.Errors(), 3)
	for _, err := range report.Errors() {
		assert.True(t, IsRefError(err, ErrCodeMissingReference))
	}
}

func TestRegistryResolveZero(t *testing.T) {
	r := NewRegistry()
	obj, err := r.Resolve(0, 100, 1, nil)
	assert.NoError(t, err)
	assert.Nil(t, obj)

	obj, err = r.Resolve(1, 0, 1, nil)
	assert.NoError(t, err)
	assert.Nil(t, obj)
	assert.Empty(t, r.Diagnostics().Errors())
}

func TestRegistryMediaOnlyBank(t *testing.T) {
	r := NewRegistry()
	bank := testutil.NewBank(1, "media.bnk").AddChunk(testutil.MediaIndex(1000, 1001)).Build()
	assert.Equal(t, 0, r.AddBank(bank))

	name, idx, ok := r.Media().Get("other.bnk", 1001)
	assert.True(t, ok)
	assert.Equal(t, "media.bnk", name)
	assert.Equal(t, 1, idx)

	_, _, ok = r.Media().Get("media.bnk", 5)
	assert.False(t, ok)
	assert.Equal(t, []uint32{5}, r.Diagnostics().MissingMedia)
}

func TestKind(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		short string
		entry bool
	}{
		{"CAkEvent", KindEvent, "event", true},
		{"CAkDialogueEvent", KindDialogueEvent, "dialogueevent", true},
		{"CAkSound", KindSound, "sound", false},
		{"CAkMusicSegment", KindMusicSegment, "musicsegment", false},
		{"CAkBus", KindNone, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := KindOf(tt.name)
			assert.Equal(t, tt.kind, k)
			assert.Equal(t, tt.short, k.ShortName())
			assert.Equal(t, tt.entry, k.IsEntry())
		})
	}
	assert.Equal(t, "CAkNone", KindNone.String())
}

func TestRegistryBrokenTransitionIsLogged(t *testing.T) {
	r := registry(t, testutil.NewBank(1, "music.bnk").Add(
		graph.NewElement("CAkActionPlayAndContinue", "", nil).Append(
			graph.NewElement("ulID", "sid", int64(600)),
		),
		testutil.Sound(601, 1000, true),
	))

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name   string
		id     uint32
		logged bool
	}{
		{"broken segment", 600, true},
		{"valid segment", 601, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			node := r.Lookup(1, tt.id)
			require.NotNil(t, node)

			r.useTransition(node, 100)
			assert.True(t, r.used[node], "built segments count as used")
			if tt.logged {
				assert.Contains(t, buf.String(), "transition object failed")
				assert.Contains(t, buf.String(), "caller=100")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
