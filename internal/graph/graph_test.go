package graph

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// soundBank holds a sound whose own id sits one level below a bank-level id.
func soundBank() *BankElement {
	sound := NewElement("CAkSound", "", nil).SetIndex(0).Append(
		NewElement("NodeBaseParams", "", nil).Append(
			NewElement("ulID", "sid", 5).SetAttr("hashname", "Step"),
			NewElement("fVolume", "f32", 0.5),
		),
	)
	return NewBank(2, "sfx.bnk", 135).Append(
		sound,
		NewElement("ulID", "sid", 7),
	)
}

func TestFindOuterFirst(t *testing.T) {
	b := soundBank()

	first := b.Find1(ByName("ulID"))
	require.NotNil(t, first)
	assert.Equal(t, int64(7), first.Value())

	all := b.Finds(ByName("ulID"))
	require.Len(t, all, 2)
	assert.Equal(t, []int64{7, 5}, []int64{Int(all[0]), Int(all[1])})

	_, err := b.Find(ByName("ulID"))
	assert.ErrorIs(t, err, ErrMultipleMatches)

	none, err := b.Find(ByName("CAkEvent"))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindQueries(t *testing.T) {
	b := soundBank()
	sound := b.Find1(ByName("CAkSound"))
	require.NotNil(t, sound)

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"by type", ByType("f32"), "fVolume"},
		{"by int value", ByValue(5), "ulID"},
		{"by float value", ByValue(0.5), "fVolume"},
		{"by uint32 value", ByValue(uint32(5)), "ulID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := sound.Find(tt.q)
			require.NoError(t, err)
			require.NotNil(t, n)
			assert.Equal(t, tt.want, n.Name())
		})
	}

	assert.Nil(t, sound.Find1(Query{}))
}

func TestElementAttrs(t *testing.T) {
	b := soundBank()
	id := b.Find1(ByType("sid"))
	require.NotNil(t, id)
	assert.Equal(t, int64(7), id.Value())

	inner := b.Find1(ByName("CAkSound")).Find1(ByType("sid"))
	require.NotNil(t, inner)
	assert.Equal(t, "Step", inner.Attr("hashname"))
	assert.Equal(t, "Step", Str(inner, "hashname"))
	assert.Equal(t, "5", Str(inner, "value"))
	assert.Nil(t, inner.Attr("guidname"))
	assert.Equal(t, "NodeBaseParams", inner.Parent().Name())

	root := inner.Root()
	require.NotNil(t, root)
	assert.Equal(t, uint32(2), root.ID())
	assert.Equal(t, "sfx", BankName(root))
	assert.Equal(t, int64(0), b.Find1(ByName("CAkSound")).Attr("index"))
}

func TestValueHelpers(t *testing.T) {
	assert.Equal(t, int64(0), Int(nil))
	assert.Equal(t, 0.0, Float(nil))
	assert.Equal(t, int64(1), Int(NewElement("b", "", true)))
	assert.Equal(t, int64(3), Int(NewElement("f", "", 3.7)))
	assert.Equal(t, 3.0, Float(NewElement("i", "", 3)))
	assert.Equal(t, uint32(0xFFFFFFFF), Uint(NewElement("u", "", uint32(0xFFFFFFFF))))
}

const sfxYAML = `filename: sfx.bnk
id: 2
version: 135
nodes:
  - name: CAkSound
    index: 0
    children:
      - name: ulID
        type: sid
        value: 700
        attrs: {hashname: Step}
      - name: fVolume
        type: f32
        value: -3.5
`

const sfxCUE = `
#sound: {
	name: "CAkSound"
	children: [...]
}

id:      2
version: 135
nodes: [#sound & {
	children: [{name: "ulID", type: "sid", value: 700}]
}]
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "sfx.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sfxYAML), 0o644))

		b, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "sfx.bnk", b.Filename())
		assert.Equal(t, uint32(2), b.ID())
		assert.Equal(t, 135, b.Version())
		assert.Equal(t, dir, b.Dir())

		id := b.Find1(ByType("sid"))
		require.NotNil(t, id)
		assert.Equal(t, int64(700), id.Value())
		assert.Equal(t, "Step", id.Attr("hashname"))
		assert.Equal(t, -3.5, Float(b.Find1(ByName("fVolume"))))
	})

	t.Run("cue", func(t *testing.T) {
		path := filepath.Join(dir, "music.cue")
		require.NoError(t, os.WriteFile(path, []byte(sfxCUE), 0o644))

		b, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "music.bnk", b.Filename(), "filename defaults to the dump name")
		assert.Equal(t, int64(700), Int(b.Find1(ByType("sid"))))
		assert.Equal(t, "CAkSound", b.Find1(ByName("CAkSound")).Name())
	})

	t.Run("cbor", func(t *testing.T) {
		orig := soundBank()
		var buf bytes.Buffer
		require.NoError(t, WriteSnapshot(&buf, orig))
		path := filepath.Join(dir, "sfx.cbor")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		b, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, ToDump(orig), ToDump(b))
	})
}

func TestSnapshotIsCanonical(t *testing.T) {
	first, err := EncodeSnapshot(soundBank())
	require.NoError(t, err)
	second, err := EncodeSnapshot(soundBank())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	b, err := ReadSnapshot(bytes.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, ToDump(soundBank()), ToDump(b))

	_, err = ReadSnapshot(bytes.NewReader([]byte{0xff, 0x00}))
	assert.Error(t, err)
}

func TestLoadPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("filename: b.bnk\nid: 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("filename: a.bnk\nid: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	banks, err := LoadPaths([]string{dir})
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "a.bnk", banks[0].Filename())
	assert.Equal(t, "b.bnk", banks[1].Filename())
}

func TestLoadPathsErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nodes: [unclosed"), 0o644))
	txt := filepath.Join(dir, "bank.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	tests := []struct {
		name  string
		paths []string
		code  string
	}{
		{"missing path", []string{filepath.Join(dir, "nope")}, ErrCodeNotFound},
		{"empty directory", []string{t.TempDir()}, ErrCodeNoFiles},
		{"unknown extension", []string{txt}, ErrCodeUnsupported},
		{"bad yaml", []string{bad}, ErrCodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPaths(tt.paths)
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.code, le.Code)
		})
	}
}

func TestIsDumpFile(t *testing.T) {
	assert.True(t, IsDumpFile("a.yaml"))
	assert.True(t, IsDumpFile("A.CUE"))
	assert.True(t, IsDumpFile("a.cbor"))
	assert.False(t, IsDumpFile("a.bnk"))
}
