package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/store"
)

// HashEntry is the content hash of one TXTP file.
type HashEntry struct {
	File string `json:"file"`
	Hash string `json:"hash"`
	// Seen lists earlier outputs with the same playlist, as run/name.
	Seen []string `json:"seen,omitempty"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "hash <file.txtp>...",
		Short: "Print the content hash of TXTP files",
		Long: `Print the content hash used to detect duplicated outputs.

The info footer is ignored, so two files playing the same thing hash
equally whatever their names. With --db, earlier runs that wrote the
same playlist are listed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(rootOpts, database, args, cmd)
		},
	}
	cmd.Flags().StringVar(&database, "db", "", "look hashes up in this run database")

	return cmd
}

// PlaylistText strips the info footer from a written output.
func PlaylistText(contents string) string {
	text, _, _ := strings.Cut(contents, "\n\n# "+ir.Banner)
	return text
}

func runHash(opts *RootOptions, database string, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var st *store.Store
	if database != "" {
		var err error
		if st, err = store.Open(database); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer st.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries := make([]HashEntry, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, "failed to read file", err)
		}
		e := HashEntry{File: file, Hash: ir.OutputID(PlaylistText(string(data)))}
		if st != nil {
			if e.Seen, err = seenIn(ctx, st, e.Hash); err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStore, "failed to query database", err)
			}
		}
		entries = append(entries, e)
	}

	if formatter.JSON() {
		return formatter.Success(entries)
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %s\n", e.Hash, e.File)
		for _, s := range e.Seen {
			fmt.Fprintf(formatter.Writer, "    seen: %s\n", s)
		}
	}
	return nil
}

func seenIn(ctx context.Context, st *store.Store, hash string) ([]string, error) {
	outs, err := st.FindOutputs(ctx, hash)
	if err != nil {
		return nil, err
	}
	seen := make([]string, 0, len(outs))
	for _, o := range outs {
		seen = append(seen, o.RunID+"/"+o.Name)
	}
	return seen, nil
}
