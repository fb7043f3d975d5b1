package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/rebuild"
	"github.com/roach88/txtpgen/internal/txtp"
)

// Generator is one generation session over a set of loaded banks. It owns
// the object registry, the names and texts already written and the
// counters of the final report. A Generator runs once.
type Generator struct {
	opts  Options
	ids   RunIDGenerator
	sink  Sink
	banks []graph.Bank

	reg    *rebuild.Registry
	namer  *txtp.Namer
	hashes map[string]bool
	params *gamesync.Params
	ropts  txtp.RenderOptions

	result    *Result
	usedBanks map[string]bool
	ran       bool
}

// New prepares a session over banks. Options are validated here, so a
// returned Generator only fails on per-object errors.
func New(banks []graph.Bank, opts Options, fopts ...Option) (*Generator, error) {
	g := &Generator{
		opts:      opts,
		ids:       UUIDv7Generator{},
		banks:     banks,
		reg:       rebuild.NewRegistry(),
		namer:     txtp.NewNamer(),
		hashes:    make(map[string]bool),
		usedBanks: make(map[string]bool),
	}
	for _, opt := range fopts {
		opt(g)
	}
	if g.sink == nil {
		g.sink = NewMemorySink()
	}

	var err error
	if g.params, err = g.opts.params(); err != nil {
		return nil, err
	}
	if g.ropts, err = g.opts.renderOptions(); err != nil {
		return nil, err
	}
	return g, nil
}

// Registry returns the object registry of the session.
func (g *Generator) Registry() *rebuild.Registry {
	return g.reg
}

// Run generates every entry point of the loaded banks. Per-object errors
// are counted and collected in the result; the returned error is only set
// when the context ends or the sink fails.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if g.ran {
		return nil, errors.New("generator already ran")
	}
	g.ran = true
	g.result = &Result{RunID: g.ids.Generate()}

	slog.Info("generator: start", "run", g.result.RunID, "banks", len(g.banks))
	total := 0
	for _, b := range g.banks {
		total += g.reg.AddBank(b)
	}
	if total == 0 {
		slog.Warn("generator: no objects found")
	}

	slog.Info("generator: processing nodes")
	for _, entry := range g.entries() {
		if err := g.entryPoint(ctx, entry); err != nil {
			return g.result, err
		}
	}

	if g.opts.GenerateUnused {
		slog.Info("generator: processing unused")
		if err := g.unused(ctx); err != nil {
			return g.result, err
		}
	} else {
		g.result.HasUnused = g.reg.HasUnused()
	}

	g.result.Diagnostics = g.reg.Diagnostics()
	g.result.Banks = sortedBanks(g.usedBanks)
	return g.result, nil
}

// entries lists the entry points of each bank: named ones sorted by name,
// then unnamed ones in bank order.
func (g *Generator) entries() []txtp.Entry {
	var out []txtp.Entry
	for _, b := range g.banks {
		items := b.Find1(graph.ByName("listLoadedItem"))
		if items == nil {
			continue
		}
		var named, unnamed []txtp.Entry
		for _, node := range items.Children() {
			kind := rebuild.KindOf(node.Name())
			if !kind.IsEntry() {
				continue
			}
			nsid := node.Find1(graph.ByType("sid"))
			if nsid == nil || g.reg.Lookup(b.ID(), graph.Uint(nsid)) != node {
				continue
			}
			entry := txtp.Entry{Node: node, ShortName: kind.ShortName()}
			if !g.opts.BankOrder && graph.Str(nsid, "hashname") != "" {
				named = append(named, entry)
			} else {
				unnamed = append(unnamed, entry)
			}
		}
		sort.SliceStable(named, func(i, j int) bool {
			return graph.Str(named[i].SID(), "hashname") < graph.Str(named[j].SID(), "hashname")
		})
		out = append(out, named...)
		out = append(out, unnamed...)
	}
	return out
}

// unused generates objects no entry point reached. Callers come first, so
// objects they reach are marked used before their own turn.
func (g *Generator) unused(ctx context.Context) error {
	for _, kind := range rebuild.UnusedKinds {
		for _, node := range g.reg.Unused(kind) {
			if g.reg.Used(node) {
				continue
			}
			entry := txtp.Entry{Node: node, Unused: true, ShortName: kind.ShortName()}
			before := g.result.Stats.Created
			if err := g.entryPoint(ctx, entry); err != nil {
				return err
			}
			g.result.Stats.Unused += g.result.Stats.Created - before
		}
	}
	return nil
}

// entryPoint generates every output of one entry. Errors of the entry's
// objects are recorded and swallowed; only cancellation and sink errors
// are returned.
func (g *Generator) entryPoint(ctx context.Context, entry txtp.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.result.Stats.Entries++

	err := g.generate(entry)
	if err == nil {
		return nil
	}
	var se *sinkError
	if errors.As(err, &se) {
		return se.err
	}
	g.fail(entry, err)
	return nil
}

func (g *Generator) fail(entry txtp.Entry, err error) {
	kind := rebuild.KindOf(entry.Node.Name())
	sid := graph.Uint(entry.Node.Find1(graph.ByType("sid")))
	bank := ""
	if root := entry.Node.Root(); root != nil {
		bank = root.Filename()
	}
	perr := &rebuild.ProcessError{SID: sid, Kind: kind, Bank: bank, Err: err}
	slog.Error("generator: entry failed", "node", sid, "kind", kind, "bank", bank, "error", err)
	g.result.Stats.Errors++
	g.result.Errors = append(g.result.Errors, perr)
}

// generate walks entry once with the base params, then once per variable
// combination it found, then its stingers and transition segments.
func (g *Generator) generate(entry txtp.Entry) error {
	stingers := txtp.NewStingers()
	transitions := txtp.NewTransitions()

	params := g.baseParams()
	t, err := g.walk(entry, params, stingers, transitions)
	if err != nil {
		return err
	}

	if params.Manual() || t.Paths.Empty() {
		if err := g.render(t, entry, params, stingers, transitions); err != nil {
			return err
		}
	} else {
		combos := t.Paths.Combos()
		if limit := g.opts.MaxCombos; limit > 0 && len(combos) > limit {
			cerr := &CombosExceededError{
				SID:   graph.Uint(entry.SID()),
				Bank:  bankFile(entry.Node),
				Found: len(combos),
				Limit: limit,
			}
			slog.Warn("generator: too many combinations", "error", cerr)
			g.result.Stats.CombosSkipped += len(combos) - limit
			combos = combos[:limit]
		}
		for _, combo := range combos {
			ct, err := g.walk(entry, combo, stingers, transitions)
			if err != nil {
				return err
			}
			if err := g.render(ct, entry, combo, stingers, transitions); err != nil {
				return err
			}
		}
	}

	for _, st := range stingers.Items() {
		sentry := txtp.Entry{
			Node:    st.Node,
			Trigger: st.Trigger,
			Segment: st.Segment,
			Unused:  entry.Unused,
		}
		if err := g.single(sentry); err != nil {
			return err
		}
	}
	for _, node := range transitions.Nodes() {
		tentry := txtp.Entry{
			Node:       node,
			Transition: true,
			ShortName:  rebuild.KindMusicSegment.ShortName(),
		}
		if err := g.single(tentry); err != nil {
			return err
		}
	}
	return nil
}

// single generates a stinger or transition segment with the base params.
// They get their own stinger lists so they never start new ones.
func (g *Generator) single(entry txtp.Entry) error {
	params := g.baseParams()
	t, err := g.walk(entry, params, nil, nil)
	if err != nil {
		return err
	}
	return g.render(t, entry, params, nil, nil)
}

func (g *Generator) baseParams() *gamesync.Params {
	if g.params != nil {
		return g.params.Clone()
	}
	return gamesync.NewParams()
}

func (g *Generator) walk(entry txtp.Entry, params *gamesync.Params, stingers *txtp.Stingers, transitions *txtp.Transitions) (*txtp.Txtp, error) {
	// walking consumes the params, callers keep theirs for the next walk
	t := txtp.New(params.Clone(), stingers, transitions)
	if err := g.reg.Render(t, entry); err != nil {
		return nil, err
	}
	return t, nil
}

// render writes the outputs of a walked tree. With silence paths on, the
// tree is walked again for each combination of silencing states, since
// rendering rewrites it.
func (g *Generator) render(t *txtp.Txtp, entry txtp.Entry, params *gamesync.Params, stingers *txtp.Stingers, transitions *txtp.Transitions) error {
	if !g.opts.SilencePaths {
		return g.emitAll(t, nil)
	}
	combos, base := silenceCombos(t.Silences, params)
	if base {
		if err := g.emitAll(t, nil); err != nil {
			return err
		}
	}
	for _, combo := range combos {
		st, err := g.walk(entry, params, stingers, transitions)
		if err != nil {
			return err
		}
		if err := g.emitAll(st, combo); err != nil {
			return err
		}
	}
	return nil
}

// silenceCombos returns the silencing combinations reachable with params,
// and whether the unsilenced output is wanted too. It is not when params
// fix the only combination, since that state is then always active.
func silenceCombos(silences *gamesync.SilencePaths, params *gamesync.Params) ([]*gamesync.SilenceParams, bool) {
	if silences.Empty() {
		return nil, true
	}
	silences.Filter(params)
	combos := silences.Combos()
	if silences.Forced() && len(combos) == 1 {
		return combos, false
	}
	return combos, true
}

func (g *Generator) emitAll(t *txtp.Txtp, silences *gamesync.SilenceParams) error {
	outs, err := t.Render(silences, g.ropts)
	if err != nil {
		return err
	}
	if len(outs) == 0 {
		slog.Debug("generator: nothing audible", "node", graph.Uint(t.Entry().SID()))
	}
	for _, out := range outs {
		if err := g.emit(out); err != nil {
			return &sinkError{err: err}
		}
	}
	return nil
}

// emit names and writes one output unless its text was already written.
func (g *Generator) emit(out *txtp.Output) error {
	longName := out.Name
	fresh := g.namer.Register(out.Name, out.Entry.Node)
	dupe := false

	if g.hashes[out.Key] {
		if !fresh {
			// the same object walked again with the same result
			slog.Debug("generator: ignored repeat", "name", out.Name)
			return nil
		}
		if !g.opts.Dupes {
			slog.Debug("generator: ignored duplicate", "name", out.Name)
			g.result.Stats.Duplicates++
			return nil
		}
		longName = txtp.DupeName(out.Name)
		dupe = true
	}
	g.hashes[out.Key] = true

	fileName := g.namer.FileName(longName)
	contents := out.Text + out.Footer(fileName, longName)
	if err := g.sink.Write(fileName, contents); err != nil {
		return err
	}
	slog.Debug("generator: created", "name", fileName)

	stats := &g.result.Stats
	stats.Created++
	if out.Flags.Streams {
		stats.Streams++
	}
	if out.Flags.Internals {
		stats.Internals++
		for _, b := range out.Flags.Banks {
			g.usedBanks[b] = true
		}
	}

	g.result.Outputs = append(g.result.Outputs, Written{
		Name:       fileName,
		LongName:   longName,
		Key:        out.Key,
		TextID:     ir.OutputID(out.Text),
		Contents:   contents,
		Flags:      out.Flags,
		SID:        graph.Uint(out.Entry.SID()),
		Bank:       bankFile(out.Entry.Node),
		Dupe:       dupe,
		Unused:     out.Entry.Unused,
		Transition: out.Entry.Transition,
		Stinger:    out.Entry.Trigger != nil,
	})
	return nil
}

// sinkError carries a write failure through the per-entry error handling,
// which would otherwise record it and go on.
type sinkError struct {
	err error
}

func (e *sinkError) Error() string {
	return fmt.Sprintf("write output: %v", e.err)
}

func (e *sinkError) Unwrap() error {
	return e.err
}

func bankFile(node graph.Node) string {
	if node == nil || node.Root() == nil {
		return ""
	}
	return node.Root().Filename()
}
