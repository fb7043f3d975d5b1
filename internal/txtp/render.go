package txtp

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/simplify"
)

// RenderOptions configure how a walked tree becomes text.
type RenderOptions struct {
	Simplify simplify.Options
	Print    printer.Options

	// DupesExact compares full texts; otherwise volumes and delays are
	// ignored when looking for repeats.
	DupesExact bool
	BankMarks  bool

	// Externals maps external source ids to the paths they may take. Each
	// path makes its own output.
	Externals map[uint32][]string

	// MasterVolume is printed in the footer as given by the user.
	MasterVolume string
}

// Output is one rendered text, before deduplication and final naming.
type Output struct {
	Entry Entry
	// Name is the long name, without dupe mark or extension.
	Name string
	Text string
	// Key identifies the text for deduplication.
	Key string

	Flags    printer.Flags
	Result   *simplify.Result
	Selected int

	info        string
	gamesyncs   string
	banks       []string
	volume      string
	forceSelect bool
	multiSelect bool
}

// Render simplifies the walked tree and prints it. silences mutes the
// objects that declare any of its states; nil mutes nothing. The tree is
// rewritten in place, so each walk renders once.
func (t *Txtp) Render(silences *gamesync.SilenceParams, opts RenderOptions) ([]*Output, error) {
	if t.builder == nil {
		return nil, nil
	}
	tree := t.builder.Tree()
	markSilenced(tree, silences)

	res, err := simplify.Run(tree, opts.Simplify)
	if err != nil {
		return nil, err
	}
	// may have sources that are all silent
	if !res.HasSounds() {
		return nil, nil
	}

	var outs []*Output
	for _, ext := range externalPaths(res, opts.Externals) {
		count := 1
		if res.SelectableCount > 0 {
			count = res.SelectableCount
		}
		for i := 1; i <= count; i++ {
			selected := 0
			if res.SelectableCount > 0 {
				selected = i
			}
			outs = append(outs, t.print(tree, res, silences, opts, ext, selected))
		}
	}
	return outs, nil
}

func (t *Txtp) print(tree *playlist.Tree, res *simplify.Result, silences *gamesync.SilenceParams, opts RenderOptions, ext string, selected int) *Output {
	popts := opts.Print
	popts.ExternalPath = ext
	popts.Selected = selected

	p := printer.New(tree, res, popts)
	text := p.Generate(false)
	key := ir.OutputID(text)
	if !opts.DupesExact {
		key = ir.OutputID(p.Generate(true))
	}
	flags := p.Flags()

	external := ""
	if ext != "" {
		base := filepath.Base(ext)
		external = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name := Name(t.entry, NameParts{
		Gamesyncs:  t.Info.GamesyncNames(),
		Silences:   silences,
		Flags:      flags,
		Result:     res,
		Selected:   selected,
		External:   external,
		BankMarks:  opts.BankMarks,
		SilenceAll: popts.SilenceAll,
	})

	return &Output{
		Entry:       t.entry,
		Name:        name,
		Text:        text,
		Key:         key,
		Flags:       flags,
		Result:      res,
		Selected:    selected,
		info:        t.Info.Lines(),
		gamesyncs:   strings.TrimSpace(t.Info.GamesyncNames()),
		banks:       t.Info.Banks(),
		volume:      masterVolume(opts, res),
		forceSelect: opts.Simplify.RandomForce,
		multiSelect: opts.Simplify.RandomMulti,
	}
}

// markSilenced flags the nodes muted by the active silence states.
func markSilenced(tree *playlist.Tree, silences *gamesync.SilenceParams) {
	if silences == nil {
		return
	}
	tree.Walk(tree.Root(), func(n *playlist.Node) bool {
		if n.Config != nil && silences.IsSilent(n.Config.SilenceStates) {
			n.Silenced = true
		}
		return true
	})
}

// externalPaths lists the external paths to write, or a single "" to write
// the output as is.
func externalPaths(res *simplify.Result, externals map[uint32][]string) []string {
	if len(res.Externals) == 0 || len(externals) == 0 {
		return []string{""}
	}
	if len(res.Externals) > 1 {
		slog.Warn("txtp: ignoring multiple externals", "count", len(res.Externals))
		return []string{""}
	}
	paths := externals[res.Externals[0]]
	if len(paths) == 0 {
		return []string{""}
	}
	return paths
}

func masterVolume(opts RenderOptions, res *simplify.Result) string {
	if opts.Simplify.AutoVolume {
		db := 0.0
		if res.AutoVolume != nil && *res.AutoVolume != 0 {
			db = *res.AutoVolume
		}
		return fmt.Sprintf("auto (%sdB)", printer.Repr(db))
	}
	return opts.MasterVolume
}

// Footer returns the comment block written after the playlist. longName
// is printed when it differs from the file name.
func (o *Output) Footer(fileName, longName string) string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "# %s\n", ir.Banner)
	sb.WriteString("#\n")
	fmt.Fprintf(&sb, "# %s\n", fileName)

	if longName != "" && longName != strings.TrimSuffix(fileName, Extension) {
		fmt.Fprintf(&sb, "# * full name: %s%s\n", longName, Extension)
	}
	if o.gamesyncs != "" {
		fmt.Fprintf(&sb, "# * gamesyncs: %s\n", o.gamesyncs)
	}
	if o.volume != "" {
		fmt.Fprintf(&sb, "# * master volume: %s\n", o.volume)
	}
	if o.Selected > 0 {
		extra := ""
		switch {
		case o.forceSelect:
			extra = " (forced)"
		case o.multiSelect:
			extra = " (multi)"
		}
		fmt.Fprintf(&sb, "# * selected group=%d%s\n", o.Selected, extra)
	}
	for _, bank := range o.banks {
		fmt.Fprintf(&sb, "# - %s\n", bank)
	}
	if o.info != "" {
		sb.WriteString("#\n")
		sb.WriteString(o.info)
	}
	return sb.String()
}

// Contents returns the full file contents for fileName.
func (o *Output) Contents(fileName string) string {
	return o.Text + o.Footer(fileName, o.Name)
}
