package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/txtpgen/internal/graph"
)

// SnapshotExt is the extension of snapshot files.
const SnapshotExt = ".cbor"

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "snapshot <dump>...",
		Short: "Convert bank dumps to CBOR snapshots",
		Long: `Convert bank dumps to canonical CBOR snapshots.

Snapshots load faster than YAML or CUE dumps and are byte-identical for
identical banks. Each snapshot is written next to its dump unless -o is
given.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(rootOpts, outDir, args, cmd)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory")

	return cmd
}

func runSnapshot(opts *RootOptions, outDir string, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	banks, err := loadBanks(formatter, paths)
	if err != nil {
		return err
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to create output directory", err)
		}
	}

	written := make([]string, 0, len(banks))
	for _, b := range banks {
		dir := outDir
		if dir == "" {
			dir = b.Dir()
		}
		name := strings.TrimSuffix(b.Filename(), filepath.Ext(b.Filename())) + SnapshotExt
		path := filepath.Join(dir, name)

		var buf bytes.Buffer
		if err := graph.WriteSnapshot(&buf, b); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to encode snapshot", err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to write snapshot", err)
		}
		formatter.Progress("Wrote %s (%d bytes)", path, buf.Len())
		written = append(written, path)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"snapshots": written})
	}
	for _, p := range written {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", p)
	}
	return nil
}
