package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/generator"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/rebuild"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(id string) *generator.Result {
	return &generator.Result{
		RunID: id,
		Stats: generator.Stats{Created: 2, Duplicates: 1, Streams: 2, Errors: 1, Entries: 3},
		Outputs: []generator.Written{
			{
				Name:     "Play_BGM.txtp",
				LongName: "Play_BGM",
				TextID:   ir.OutputID("wem/1000.wem\n"),
				Contents: "wem/1000.wem\n",
				Flags:    printer.Flags{Streams: true, Lang: "en"},
				SID:      100,
				Bank:     "bgm.bnk",
			},
			{
				Name:     "Play_BGM {d}.txtp",
				LongName: "Play_BGM {d}",
				TextID:   ir.OutputID("wem/1001.wem\n"),
				Contents: "wem/1001.wem\n",
				Flags:    printer.Flags{Internals: true, Banks: []string{"bgm.bnk"}},
				SID:      101,
				Bank:     "bgm.bnk",
				Dupe:     true,
			},
		},
		Errors: []error{
			&rebuild.ProcessError{SID: 300, Kind: rebuild.KindSound, Bank: "bgm.bnk", Err: errors.New("source not found")},
		},
		Diagnostics: rebuild.Report{
			MissingUnknown: []rebuild.Ref{{Bank: 1, ID: 999}},
			MissingMedia:   []uint32{1002},
			UnknownProps:   []string{"0x3A [LoopStart]"},
		},
	}
}

func saveTest(t *testing.T, s *Store, id string) Record {
	t.Helper()
	rec, err := FromResult(testResult(id), generator.DefaultOptions(), []string{"bgm.bnk"})
	require.NoError(t, err)
	inserted, err := s.WriteRecord(context.Background(), rec)
	require.NoError(t, err)
	require.True(t, inserted)
	return rec
}

func TestOpenPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			got, err := s.pragma(tt.pragma)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	saveTest(t, s1, "run-1")
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.Error(t, err)
}

func TestWriteRecordRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := saveTest(t, s, "run-1")

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, ir.GeneratorVersion, run.GeneratorVersion)
	assert.Equal(t, rec.Run.OptionsHash, run.OptionsHash)
	assert.Equal(t, []string{"bgm.bnk"}, run.Banks)
	assert.Equal(t, testResult("run-1").Stats, run.Stats)
	assert.Contains(t, run.Options, `"max_combos":1000`)

	outs, err := s.ReadOutputs(ctx, "run-1", true)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, rec.Outputs, outs)

	outs, err = s.ReadOutputs(ctx, "run-1", false)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Empty(t, outs[0].Text)
	assert.Equal(t, "Play_BGM.txtp", outs[0].Name)
	assert.True(t, outs[1].Dupe)
	assert.Equal(t, []string{"bgm.bnk"}, outs[1].Flags.Banks)
}

func TestWriteRecordIdempotent(t *testing.T) {
	s := createTestStore(t)
	rec := saveTest(t, s, "run-1")

	inserted, err := s.WriteRecord(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	outs, err := s.ReadOutputs(context.Background(), "run-1", false)
	require.NoError(t, err)
	assert.Len(t, outs, 2)
}

func TestReadDiagnostics(t *testing.T) {
	s := createTestStore(t)
	saveTest(t, s, "run-1")

	diags, err := s.ReadDiagnostics(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, diags, 4)

	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
		assert.Equal(t, int64(i+1), d.Seq)
	}
	assert.Equal(t, []string{
		rebuild.ErrCodeMissingReference,
		CodeMissingMedia,
		CodeUnknownProperty,
		CodeProcessError,
	}, codes)
	assert.Equal(t, uint32(999), diags[0].ObjectID)
	assert.Equal(t, uint32(1), diags[0].Bank)
	assert.Equal(t, uint32(300), diags[3].ObjectID)
	assert.Contains(t, diags[3].Detail, "processing node 300")
}

func TestListRunsOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	saveTest(t, s, "run-b")
	saveTest(t, s, "run-a")

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-a", latest.ID)
}

func TestReadRunNotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.ReadRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOutputs(t *testing.T) {
	s := createTestStore(t)
	saveTest(t, s, "run-1")
	saveTest(t, s, "run-2")

	outs, err := s.FindOutputs(context.Background(), ir.OutputID("wem/1000.wem\n"))
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, "run-1", outs[0].RunID)
	assert.Equal(t, "run-2", outs[1].RunID)
	assert.Equal(t, "wem/1000.wem\n", outs[0].Text)
}

func TestMarshalFlags(t *testing.T) {
	data, err := marshalFlags(printer.Flags{Lang: "<en>", Streams: true})
	require.NoError(t, err)
	assert.Equal(t, `{"lang":"<en>","streams":true}`, data)

	f, err := unmarshalFlags(data)
	require.NoError(t, err)
	assert.Equal(t, printer.Flags{Lang: "<en>", Streams: true}, f)

	f, err = unmarshalFlags("")
	require.NoError(t, err)
	assert.Equal(t, printer.Flags{}, f)
}
