package rebuild

import (
	"errors"
	"fmt"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/txtp"
)

// Render walks the object of entry into t, building its playlist tree.
// Walks with empty params only record the variables they could take.
func (r *Registry) Render(t *txtp.Txtp, entry txtp.Entry) error {
	obj, err := r.Object(entry.Node)
	if err != nil {
		return err
	}
	t.Begin(entry, &ir.Config{})
	if obj == nil {
		return nil
	}
	w := &walker{reg: r, t: t, active: make(map[graph.Node]bool)}
	return w.make(obj)
}

// walker holds the state of one Render call. active tracks the objects
// being walked, so a graph where an object contains itself fails instead
// of recursing forever.
type walker struct {
	reg    *Registry
	t      *txtp.Txtp
	active map[graph.Node]bool
}

func (w *walker) make(o *Object) error {
	switch o.Kind {
	case KindNone, KindState, KindFxCustom:
		return nil
	}

	if w.active[o.Node] {
		return &BuildError{
			Code:    ErrCodeInvariant,
			Kind:    o.Kind,
			SID:     o.SID,
			Bank:    o.bankName(),
			Message: "object contains itself",
		}
	}
	w.active[o.Node] = true
	defer delete(w.active, o.Node)

	w.t.Info.Next(o.Node, o.NSID, o.Fields)
	if err := w.process(o); err != nil {
		var be *BuildError
		if !errors.As(err, &be) {
			err = &BuildError{Code: ErrCodeInvariant, Kind: o.Kind, SID: o.SID, Bank: o.bankName(), Message: "walk failed", Err: err}
		}
		return err
	}
	w.t.Info.Done()
	return nil
}

func (w *walker) process(o *Object) error {
	switch o.Kind {
	case KindEvent:
		return w.children(o, w.t.Builder().GroupLayer, &ir.Config{}, o.ntids)
	case KindDialogueEvent:
		return w.dialogueEvent(o)
	case KindActionPlay, KindActionPlayEvent:
		return w.single(o, o.cfg(), firstOf(o.ntids), o.nbank)
	case KindActionTrigger:
		// triggers play stingers of the current music object, which are
		// generated from the music objects themselves
		return nil
	case KindSwitchCntr:
		return w.switchCntr(o)
	case KindRanSeqCntr:
		return w.ranSeqCntr(o)
	case KindLayerCntr:
		return w.children(o, w.t.Builder().GroupLayer, o.cfg(), o.ntids)
	case KindSound:
		w.t.Info.Source(o.sound.nsrc, o.sound.nplugin)
		return w.t.Builder().SourceSound(o.sound.sound.Clone(), o.cfg())
	case KindMusicSwitchCntr:
		return w.musicSwitchCntr(o)
	case KindMusicRanSeqCntr:
		return w.musicRanSeqCntr(o)
	case KindMusicSegment:
		return w.musicSegment(o)
	case KindMusicTrack:
		return w.musicTrack(o)
	case KindStinger:
		return w.next(o, firstOf(o.ntids), nil)
	}
	return nil
}

func firstOf(ntids []graph.Node) graph.Node {
	if len(ntids) == 0 {
		return nil
	}
	return ntids[0]
}

// next walks the object referenced by ntid. References go to the caller's
// bank unless nbank names another one.
func (w *walker) next(o *Object, ntid, nbank graph.Node) error {
	tid := graph.Uint(ntid)
	// common in switches that define every value
	if tid == 0 {
		return nil
	}

	bank := bankOf(ntid)
	var bankRef graph.Node
	if nbank != nil {
		v := graph.Int(nbank)
		if v <= 0 {
			return nil
		}
		bank = uint32(v)
		bankRef = nbank
	}

	next, err := w.reg.Resolve(bank, tid, o.SID, bankRef)
	if err != nil || next == nil {
		return err
	}
	return w.make(next)
}

type groupFunc func(count int, cfg *ir.Config) (bool, error)

// children opens a group over ntids and walks each one.
func (w *walker) children(o *Object, open groupFunc, cfg *ir.Config, ntids []graph.Node) error {
	if _, err := open(len(ntids), cfg); err != nil {
		return err
	}
	for _, ntid := range ntids {
		if err := w.next(o, ntid, nil); err != nil {
			return err
		}
	}
	w.t.Builder().GroupDoneHint(len(ntids))
	return nil
}

// single wraps one referenced object in a single group.
func (w *walker) single(o *Object, cfg *ir.Config, ntid, nbank graph.Node) error {
	b := w.t.Builder()
	if err := b.GroupSingle(cfg, nil); err != nil {
		return err
	}
	if err := w.next(o, ntid, nbank); err != nil {
		return err
	}
	b.GroupDone()
	return nil
}

func (w *walker) dialogueEvent(o *Object) error {
	if o.tree == nil {
		return nil
	}
	return w.tree(o)
}

// tree walks a decision tree: every path when discovering, else the path
// matching the current params.
func (w *walker) tree(o *Object) error {
	tree := o.tree
	// plays one object with any value
	if tree.ntid != nil {
		return w.single(o, o.cfg(), tree.ntid, nil)
	}

	if w.t.Discovering() {
		for _, p := range tree.paths {
			w.t.Paths.Add(tree.gamesyncs(p)...)
			if err := w.next(o, p.ntid, nil); err != nil {
				return err
			}
			w.t.Paths.Done()
		}
		return nil
	}

	p, ok := tree.match(w.t.Params, o.SID)
	if !ok {
		return nil
	}
	if err := w.t.Info.Gamesyncs(tree.nodes(p)); err != nil {
		return err
	}
	return w.single(o, o.cfg(), p.ntid, nil)
}

// switchCase returns the case selected by the current params, if any.
func (w *walker) switchCase(sw *switchData) (*switchCase, bool) {
	v, ok := w.t.Params.Value(sw.kind, sw.group())
	if !ok {
		return nil, false
	}
	c, ok := sw.byVal[v]
	return c, ok
}

func (w *walker) gamesync(sw *switchData, c *switchCase) error {
	return w.t.Info.Gamesync(txtp.GamesyncNode{Kind: sw.kind, Group: sw.ngroup, Value: c.nvalue})
}

func (w *walker) switchCntr(o *Object) error {
	sw := o.sw
	if w.t.Discovering() {
		for _, c := range sw.cases {
			w.t.Paths.Add(gamesync.Gamesync{Kind: sw.kind, Group: sw.group(), Value: c.value})
			for _, ntid := range c.ntids {
				if err := w.next(o, ntid, nil); err != nil {
					return err
				}
			}
			w.t.Paths.Done()
		}
		return nil
	}

	c, ok := w.switchCase(sw)
	if !ok {
		return nil
	}
	if err := w.gamesync(sw, c); err != nil {
		return err
	}
	// several objects per value are rare but possible
	return w.children(o, w.t.Builder().GroupLayer, o.cfg(), c.ntids)
}

func (w *walker) ranSeqCntr(o *Object) error {
	b := w.t.Builder()
	var open groupFunc
	switch {
	case o.mode == modeRandom && o.continuous:
		open = b.GroupRandomContinuous
	case o.mode == modeRandom:
		open = b.GroupRandomStep
	case o.mode == modeSequence && o.continuous:
		open = b.GroupSequenceContinuous
	case o.mode == modeSequence:
		open = b.GroupSequenceStep
	default:
		return o.unsupported(fmt.Sprintf("unknown ranseq mode %d", o.mode))
	}
	return w.children(o, open, o.cfg(), o.ntids)
}

// registerTransitions records the segments played only when switching,
// to generate them after the entry point.
func (w *walker) registerTransitions(o *Object) {
	caller := graph.Uint(w.t.Entry().SID())
	for _, ntid := range o.transitions {
		node := w.reg.Lookup(bankOf(ntid), graph.Uint(ntid))
		if node == nil {
			continue
		}
		w.t.Transitions.Add(node, caller)
		w.reg.useTransition(node, caller)
	}
}

func (w *walker) addStingers(o *Object) {
	for _, st := range o.stingers {
		w.t.Stingers.Add(st)
	}
}

func (w *walker) musicSwitchCntr(o *Object) error {
	w.registerTransitions(o)

	if o.tree != nil {
		if o.tree.ntid == nil && w.t.Discovering() {
			w.addStingers(o)
		}
		return w.tree(o)
	}

	sw := o.sw
	if w.t.Discovering() {
		w.addStingers(o)
		for _, c := range sw.cases {
			w.t.Paths.Add(gamesync.Gamesync{Kind: sw.kind, Group: sw.group(), Value: c.value})
			if err := w.next(o, firstOf(c.ntids), nil); err != nil {
				return err
			}
			w.t.Paths.Done()
		}
		return nil
	}

	c, ok := w.switchCase(sw)
	if !ok {
		return nil
	}
	if err := w.gamesync(sw, c); err != nil {
		return err
	}
	return w.single(o, o.cfg(), firstOf(c.ntids), nil)
}

func (w *walker) musicRanSeqCntr(o *Object) error {
	w.registerTransitions(o)
	if w.t.Discovering() {
		w.addStingers(o)
	}

	b := w.t.Builder()
	if err := b.GroupSingle(o.cfg(), nil); err != nil {
		return err
	}
	if err := w.playlist(o, o.playlist); err != nil {
		return err
	}
	b.GroupDone()
	return nil
}

func (w *walker) playlist(o *Object, items []*playlistItem) error {
	b := w.t.Builder()
	for _, item := range items {
		w.t.Info.Next(item.node, nil, item.fields)

		if item.typ == rsLeaf || item.ntid != nil {
			if err := b.GroupSingle(item.config.Clone(), &ir.Transition{PlayBefore: false}); err != nil {
				return err
			}
			if err := w.next(o, item.ntid, nil); err != nil {
				return err
			}
			b.GroupDone()
		} else {
			var open groupFunc
			switch item.typ {
			case rsContinuousSequence:
				open = b.GroupSequenceContinuous
			case rsStepSequence:
				open = b.GroupSequenceStep
			case rsContinuousRandom:
				open = b.GroupRandomContinuous
			case rsStepRandom:
				open = b.GroupRandomStep
			default:
				return o.unsupported(fmt.Sprintf("unknown playlist type %d", item.typ))
			}
			if _, err := open(len(item.items), item.config.Clone()); err != nil {
				return err
			}
			if err := w.playlist(o, item.items); err != nil {
				return err
			}
			b.GroupDoneHint(len(item.items))
		}

		w.t.Info.Done()
	}
	return nil
}

func (w *walker) musicSegment(o *Object) error {
	if o.silence == nil {
		return w.children(o, w.t.Builder().GroupLayer, o.cfg(), o.ntids)
	}
	return w.silence(o.cfg(), o.silence)
}

// silence plays a silent clip inside a layer, standing in for empty
// segments and subtracks.
func (w *walker) silence(cfg *ir.Config, sound *ir.Sound) error {
	b := w.t.Builder()
	if _, err := b.GroupLayer(1, cfg); err != nil {
		return err
	}
	if err := b.SourceSound(sound.Clone(), &ir.Config{}); err != nil {
		return err
	}
	b.GroupDoneHint(1)
	return nil
}

func (w *walker) musicTrack(o *Object) error {
	track := o.track
	if len(track.subtracks) == 0 {
		return nil
	}

	// states that mute this track become silence variations
	for _, s := range o.silences {
		w.t.Silences.AddState(gamesync.SilenceState{
			Group:     graph.Uint(s.group),
			Value:     graph.Uint(s.value),
			GroupName: graph.Str(s.group, "hashname"),
			ValueName: graph.Str(s.value, "hashname"),
		})
	}

	b := w.t.Builder()
	switch track.typ {
	case trackNormal:
		if len(track.subtracks) > 1 {
			return o.unsupported("more than 1 subtrack")
		}
		if err := b.GroupSingle(o.cfg(), nil); err != nil {
			return err
		}
		if err := w.clips(o, track.subtracks[0]); err != nil {
			return err
		}
		b.GroupDone()
		return nil

	case trackRandom, trackSequence:
		open := b.GroupRandomStep
		if track.typ == trackSequence {
			open = b.GroupSequenceStep
		}
		if _, err := open(len(track.subtracks), o.cfg()); err != nil {
			return err
		}
		for _, subtrack := range track.subtracks {
			if err := w.clips(o, subtrack); err != nil {
				return err
			}
		}
		b.GroupDoneHint(len(track.subtracks))
		return nil

	case trackSwitch:
		return w.trackSwitch(o)
	}
	return o.unsupported(fmt.Sprintf("unknown track type %d", track.typ))
}

func (w *walker) trackSwitch(o *Object) error {
	sw := o.sw
	if sw == nil {
		return o.unsupported("track switch without params")
	}
	if w.t.Discovering() {
		for _, c := range sw.cases {
			w.t.Paths.Add(gamesync.Gamesync{Kind: sw.kind, Group: sw.group(), Value: c.value})
			w.t.Paths.Done()
		}
		return nil
	}

	c, ok := w.switchCase(sw)
	if !ok {
		return nil
	}
	if err := w.gamesync(sw, c); err != nil {
		return err
	}
	// the default value may play no subtrack at all
	if c.index < 0 {
		return nil
	}
	if c.index >= len(o.track.subtracks) {
		return &BuildError{Code: ErrCodeInvariant, Kind: o.Kind, SID: o.SID, Bank: o.bankName(),
			Message: fmt.Sprintf("switch subtrack %d out of range", c.index)}
	}

	b := w.t.Builder()
	if err := b.GroupSingle(o.cfg(), nil); err != nil {
		return err
	}
	if err := w.clips(o, o.track.subtracks[c.index]); err != nil {
		return err
	}
	b.GroupDone()
	return nil
}

// clips layers the clips of one subtrack. Clips calling events start them
// at their play-at time.
func (w *walker) clips(o *Object, subtrack []*clip) error {
	if len(subtrack) == 0 {
		return w.silence(&ir.Config{}, &ir.Sound{Silent: true, Clip: true, NodeID: o.SID})
	}

	b := w.t.Builder()
	if _, err := b.GroupLayer(len(subtrack), &ir.Config{}); err != nil {
		return err
	}
	for _, c := range subtrack {
		if graph.Uint(c.nevent) != 0 {
			if err := w.single(o, &ir.Config{IDelay: ir.Float(c.sound.FPA)}, c.nevent, nil); err != nil {
				return err
			}
			continue
		}

		w.t.Info.Next(c.node, nil, c.fields)
		w.t.Info.Source(c.src.nsource, pluginNode(c.sound.Source, c.src))
		w.t.Info.Done()
		if err := b.SourceSound(c.sound.Clone(), &ir.Config{}); err != nil {
			return err
		}
	}
	b.GroupDoneHint(len(subtrack))
	return nil
}

func (o *Object) unsupported(msg string) error {
	return &BuildError{Code: ErrCodeUnsupported, Kind: o.Kind, SID: o.SID, Bank: o.bankName(), Message: msg}
}
