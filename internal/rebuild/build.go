package rebuild

import (
	"fmt"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/txtp"
)

// builder reads one object from the graph.
type builder struct {
	reg *Registry
	obj *Object
}

func (r *Registry) build(node graph.Node) (*Object, error) {
	o := &Object{
		Kind:   KindOf(node.Name()),
		Node:   node,
		Config: &ir.Config{},
	}
	o.NSID = node.Find1(graph.ByType("sid"))
	o.SID = graph.Uint(o.NSID)

	b := &builder{reg: r, obj: o}
	var err error
	switch o.Kind {
	case KindEvent:
		b.event(node)
	case KindDialogueEvent:
		err = b.dialogueEvent(node)
	case KindActionPlay, KindActionPlayEvent, KindActionTrigger:
		b.action(node)
	case KindActionPlayAndContinue:
		err = b.unsupported("not implemented", nil)
	case KindSwitchCntr:
		err = b.switchCntr(node)
	case KindRanSeqCntr:
		err = b.ranSeqCntr(node)
	case KindLayerCntr:
		err = b.layerCntr(node)
	case KindSound:
		err = b.sound(node)
	case KindMusicSwitchCntr:
		err = b.musicSwitchCntr(node)
	case KindMusicRanSeqCntr:
		err = b.musicRanSeqCntr(node)
	case KindMusicSegment:
		err = b.musicSegment(node)
	case KindMusicTrack:
		err = b.musicTrack(node)
	case KindStinger:
		b.stinger(node)
	case KindState:
		err = b.audioConfig(node)
	case KindFxCustom:
		b.fxCustom(node)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (b *builder) unsupported(msg string, err error) error {
	return b.fail(ErrCodeUnsupported, msg, err)
}

func (b *builder) invariant(msg string, err error) error {
	return b.fail(ErrCodeInvariant, msg, err)
}

func (b *builder) fail(code, msg string, err error) error {
	return &BuildError{
		Code:    code,
		Kind:    b.obj.Kind,
		SID:     b.obj.SID,
		Bank:    b.obj.bankName(),
		Message: msg,
		Err:     err,
	}
}

// noLoop rejects loop flags on objects where the engine ignores them.
func (b *builder) noLoop() error {
	if b.obj.Config.Loop != nil {
		return b.unsupported("loop flag", nil)
	}
	return nil
}

func (b *builder) audioConfigNoLoop(node graph.Node) error {
	if err := b.audioConfig(node); err != nil {
		return err
	}
	return b.noLoop()
}

func childTids(node graph.Node) []graph.Node {
	nchildren := find1(node, "Children")
	if nchildren == nil {
		return nil
	}
	return nchildren.Finds(graph.ByType("tid"))
}

func (b *builder) event(node graph.Node) {
	b.obj.ntids = finds(node, "ulActionID")
}

func (b *builder) dialogueEvent(node graph.Node) error {
	if err := b.audioConfigNoLoop(node); err != nil {
		return err
	}
	ntree := find1(node, "AkDecisionTree")
	if ntree == nil {
		return nil
	}
	tree, err := b.buildTree(node, ntree)
	if err != nil {
		return err
	}
	b.obj.tree = tree
	return nil
}

func (b *builder) action(node graph.Node) {
	b.actionConfig(node)

	ntid := find1(node, "idExt")
	if ntid == nil {
		ntid = find1(node, "ulTargetID")
	}
	if ntid != nil {
		b.obj.ntids = []graph.Node{ntid}
	}

	if b.obj.Kind == KindActionTrigger {
		return
	}
	// early versions don't set a bank and use the current one
	if find1(node, "PlayActionParams") != nil {
		nbank := find1(node, "bankID")
		if nbank == nil {
			nbank = find1(node, "fileID")
		}
		b.obj.nbank = nbank
	}
}

func (b *builder) switchCntr(node graph.Node) error {
	if err := b.audioConfigNoLoop(node); err != nil {
		return err
	}

	ntype := find1(node, "eGroupType")
	ngroup := find1(node, "ulGroupID")
	if ntype == nil || ngroup == nil {
		return b.unsupported("switch group not found", nil)
	}
	sw := newSwitchData(gamesync.Kind(graph.Int(ntype)), ngroup)

	for _, nvalue := range finds(find1(node, "SwitchList"), "ulSwitchID") {
		nlist := find1(nvalue.Parent(), "NodeList")
		if nlist == nil {
			continue
		}
		// switches may define empty paths
		ntids := nlist.Finds(graph.ByType("tid"))
		if len(ntids) == 0 {
			continue
		}
		sw.set(&switchCase{value: graph.Uint(nvalue), nvalue: nvalue, ntids: ntids})
	}
	b.obj.sw = sw
	return nil
}

func (b *builder) ranSeqCntr(node graph.Node) error {
	if err := b.audioConfigNoLoop(node); err != nil {
		return err
	}

	nmode := find1(node, "eMode")
	nrandom := find1(node, "eRandomMode")
	nloop := find1(node, "sLoopCount")
	ncontinuous := find1(node, "bIsContinuous")
	navoid := find1(node, "wAvoidRepeatCount")
	if nmode == nil || nloop == nil || ncontinuous == nil {
		return b.unsupported("ranseq mode not found", nil)
	}

	o := b.obj
	o.mode = int(graph.Int(nmode))
	o.continuous = graph.Int(ncontinuous) != 0
	o.Config.Loop = ir.Int(int(graph.Int(nloop)))

	// playlist items keep the sequence order, children don't
	if nitems := finds(node, "AkPlaylistItem"); len(nitems) > 0 {
		for _, nitem := range nitems {
			if ntid := nitem.Find1(graph.ByType("tid")); ntid != nil {
				o.ntids = append(o.ntids, ntid)
			}
		}
	} else {
		o.ntids = childTids(node)
	}

	// set but ignored by the engine
	if *o.Config.Loop == ir.LoopInfinite && !o.continuous {
		o.Config.Loop = nil
	}

	o.Fields = append(o.Fields, txtp.Props(nmode, nrandom, nloop, ncontinuous, navoid)...)
	return nil
}

func (b *builder) layerCntr(node graph.Node) error {
	if err := b.audioConfigNoLoop(node); err != nil {
		return err
	}
	b.obj.ntids = childTids(node)

	// layers usually fade through RTPCs
	if nlayers := find1(node, "pLayers"); nlayers != nil {
		b.rtpcConfig(nlayers)
	}
	if nmode := find1(node, "bIsContinuousValidation"); nmode != nil {
		b.obj.Fields = append(b.obj.Fields, txtp.Prop(nmode))
	}
	return nil
}

func (b *builder) sound(node graph.Node) error {
	if err := b.audioConfig(node); err != nil {
		return err
	}
	o := b.obj

	if nloop := find1(node, "Loop"); nloop != nil {
		o.Config.Loop = ir.Int(int(graph.Int(nloop)))
		o.Fields = append(o.Fields, txtp.Prop(nloop))
	}

	nitem := find1(node, "AkBankSourceData")
	if nitem == nil {
		return b.unsupported("source not found", nil)
	}
	src, nodes, err := b.parseSource(nitem)
	if err != nil {
		return err
	}
	o.sound = &soundData{
		sound:   &ir.Sound{Source: src, NodeID: o.SID},
		nsrc:    nodes.nfile,
		nplugin: pluginNode(src, nodes),
	}
	o.Fields = append(o.Fields, sourceFields(nodes)...)
	return nil
}

func pluginNode(src *ir.Source, nodes sourceNodes) graph.Node {
	if src != nil && src.Plugin {
		return nodes.nplugin
	}
	return nil
}

func sourceFields(nodes sourceNodes) []txtp.Field {
	out := txtp.Props(nodes.nstreamType)
	if nodes.nfile != nodes.nsource {
		out = append(out, txtp.Prop(nodes.nfile))
	}
	return out
}

func (b *builder) transitions(node graph.Node, isSwitch bool) {
	for _, nmto := range finds(node, "AkMusicTransitionObject") {
		ntid := find1(nmto, "segmentID")
		if graph.Uint(ntid) == 0 {
			continue
		}
		if isSwitch {
			b.obj.transitions = append(b.obj.transitions, ntid)
		} else {
			b.reg.transitionObject()
		}
	}
}

func (b *builder) stingers(node graph.Node) {
	for _, nstinger := range finds(node, "CAkStinger") {
		ntrigger := find1(nstinger, "TriggerID")
		nsegment := find1(nstinger, "SegmentID")
		if graph.Uint(nsegment) == 0 {
			continue
		}
		b.obj.stingers = append(b.obj.stingers, txtp.Stinger{
			Node:    nstinger,
			Trigger: ntrigger,
			Segment: nsegment,
		})
	}
}

func (b *builder) musicSwitchCntr(node graph.Node) error {
	if err := b.audioConfig(node); err != nil {
		return err
	}
	b.transitions(node, true)
	b.stingers(node)

	if ntree := find1(node, "AkDecisionTree"); ntree != nil {
		tree, err := b.buildTree(node, ntree)
		if err != nil {
			return err
		}
		b.obj.tree = tree
		return nil
	}

	// early versions work like a plain switch
	ntype := find1(node, "eGroupType")
	ngroup := find1(node, "ulGroupID")
	if ntype == nil || ngroup == nil {
		return b.unsupported("switch group not found", nil)
	}
	sw := newSwitchData(gamesync.Kind(graph.Int(ntype)), ngroup)
	for _, nvalue := range finds(find1(node, "pAssocs"), "switchID") {
		ntid := find1(nvalue.Parent(), "nodeID")
		var ntids []graph.Node
		if ntid != nil {
			ntids = []graph.Node{ntid}
		}
		sw.set(&switchCase{value: graph.Uint(nvalue), nvalue: nvalue, ntids: ntids})
	}
	b.obj.sw = sw
	return nil
}

func (b *builder) musicRanSeqCntr(node graph.Node) error {
	if err := b.audioConfigNoLoop(node); err != nil {
		return err
	}
	b.transitions(node, false)
	b.stingers(node)

	items, err := b.playlist(find1(node, "pPlayList"))
	if err != nil {
		return err
	}
	b.obj.playlist = items
	return nil
}

// playlist reads nested playlist items: leaves play a segment, the rest
// group their own items.
func (b *builder) playlist(nplaylist graph.Node) ([]*playlistItem, error) {
	if nplaylist == nil {
		return nil, nil
	}

	var items []*playlistItem
	for _, nitem := range nplaylist.Children() {
		typ := rsLeaf
		ntype := find1(nitem, "eRSType")
		if ntype != nil {
			typ = int(graph.Int(ntype))
		} else if nchildren := find1(nitem, "NumChildren"); nchildren == nil || graph.Int(nchildren) != 0 {
			return nil, b.unsupported("unknown playlist type", nil)
		}

		nloop := find1(nitem, "Loop")
		nsub := find1(nitem, "pPlayList")

		item := &playlistItem{
			node:   nitem,
			typ:    typ,
			config: &ir.Config{},
			fields: txtp.Props(ntype, nloop),
		}
		if nloop != nil {
			item.config.Loop = ir.Int(int(graph.Int(nloop)))
		}
		// leaves use -1 in newer versions, a segment id in older ones
		if typ == rsLeaf || nsub == nil || len(nsub.Children()) == 0 {
			item.ntid = find1(nitem, "SegmentID")
		}

		sub, err := b.playlist(nsub)
		if err != nil {
			return nil, err
		}
		item.items = sub
		items = append(items, item)
	}
	return items, nil
}

func (b *builder) musicSegment(node graph.Node) error {
	if err := b.audioConfigNoLoop(node); err != nil {
		return err
	}
	o := b.obj

	ndur := find1(node, "fDuration")
	if ndur == nil {
		return b.unsupported("duration not found", nil)
	}
	o.Config.Duration = ir.Float(graph.Float(ndur))
	o.Fields = append(o.Fields, txtp.Prop(ndur))

	nmarkers := find1(node, "pArrayMarkers")
	if nmarkers == nil {
		return b.unsupported("markers not found", nil)
	}
	// markers are sorted by time, entry and exit go by fixed ids
	nentry := nmarkers.Find1(graph.ByValue(markerEntry))
	nexit := nmarkers.Find1(graph.ByValue(markerExit))
	if nentry == nil || nexit == nil {
		nentry = nmarkers.Find1(graph.ByValue(oldMarkerEntry))
		nexit = nmarkers.Find1(graph.ByValue(oldMarkerExit))
	}
	if nentry == nil || nexit == nil {
		return b.unsupported("entry/exit markers not found", nil)
	}

	nmarker1, nmarker2 := nentry.Parent(), nexit.Parent()
	npos1, npos2 := find1(nmarker1, "fPosition"), find1(nmarker2, "fPosition")
	if npos1 == nil || npos2 == nil {
		return b.unsupported("marker positions not found", nil)
	}
	o.Config.Entry = ir.Float(graph.Float(npos1))
	o.Config.Exit = ir.Float(graph.Float(npos2))
	o.Fields = append(o.Fields, txtp.KeyVal(nmarker1, npos1), txtp.KeyVal(nmarker2, npos2))

	o.ntids = childTids(node)
	// empty segments play silence
	if len(o.ntids) == 0 {
		o.silence = &ir.Sound{Silent: true, Clip: true, NodeID: o.SID}
	}
	return nil
}

func (b *builder) musicTrack(node graph.Node) error {
	if err := b.audioConfig(node); err != nil {
		return err
	}
	o := b.obj

	if nloop := find1(node, "Loop"); nloop != nil {
		o.Fields = append(o.Fields, txtp.Prop(nloop))
	}
	// tracks loop through their segment
	o.Config.Loop = nil

	automations := clipAutomations(node)

	ntype := find1(node, "eTrackType")
	if ntype == nil {
		ntype = find1(node, "eRSType")
	}
	if ntype == nil {
		return b.unsupported("track type not found", nil)
	}
	track := &trackData{typ: int(graph.Int(ntype))}
	o.track = track

	sources := make(map[uint32]*ir.Source)
	sourceNodesByID := make(map[uint32]sourceNodes)
	for _, nitem := range finds(find1(node, "pSource"), "AkBankSourceData") {
		src, nodes, err := b.parseSource(nitem)
		if err != nil {
			return err
		}
		id := graph.Uint(nodes.nsource)
		sources[id] = src
		sourceNodesByID[id] = nodes
	}

	ncount := find1(node, "numSubTrack")
	if ncount == nil {
		return nil
	}
	track.subtracks = make([][]*clip, graph.Int(ncount))

	for index, nsrc := range finds(node, "AkTrackSrcInfo") {
		subtrack := int(graph.Int(find1(nsrc, "trackID")))
		if subtrack < 0 || subtrack >= len(track.subtracks) {
			return b.invariant(fmt.Sprintf("clip subtrack %d out of range", subtrack), nil)
		}
		c, err := b.clip(nsrc, sources, sourceNodesByID)
		if err != nil {
			return err
		}
		c.sound.Automations = automations[index]
		track.subtracks[subtrack] = append(track.subtracks[subtrack], c)
	}

	if track.typ == trackSwitch {
		if err := b.trackSwitch(node); err != nil {
			return err
		}
	}

	o.Fields = append(o.Fields, txtp.Props(ntype, ncount)...)
	return nil
}

func (b *builder) clip(nsrc graph.Node, sources map[uint32]*ir.Source, nodes map[uint32]sourceNodes) (*clip, error) {
	nfpa := find1(nsrc, "fPlayAt")
	nfbt := find1(nsrc, "fBeginTrimOffset")
	nfet := find1(nsrc, "fEndTrimOffset")
	nfsd := find1(nsrc, "fSrcDuration")
	nsourceID := find1(nsrc, "sourceID")
	nevent := find1(nsrc, "eventID")

	c := &clip{
		node:   nsrc,
		nevent: nevent,
		fields: txtp.Props(nsourceID, nevent, nfpa, nfbt, nfet, nfsd),
		sound: &ir.Sound{
			NodeID: b.obj.SID,
			Clip:   true,
			FPA:    graph.Float(nfpa),
			FBT:    graph.Float(nfbt),
			FET:    graph.Float(nfet),
			FSD:    graph.Float(nfsd),
		},
	}

	// clips without source call an event instead
	sourceID := graph.Uint(nsourceID)
	if sourceID == 0 {
		return c, nil
	}
	src, ok := sources[sourceID]
	if !ok {
		return nil, b.invariant(fmt.Sprintf("clip source %d not found", sourceID), nil)
	}
	c.sound.Source = src
	c.src = nodes[sourceID]
	c.fields = append(c.fields, sourceFields(c.src)...)
	return c, nil
}

// clipAutomations reads the curves applied to clips, keyed by clip index.
func clipAutomations(node graph.Node) map[int][]ir.Automation {
	out := make(map[int][]ir.Automation)
	for _, nauto := range finds(node, "AkClipAutomation") {
		index := int(graph.Int(find1(nauto, "uClipIndex")))
		a := ir.Automation{Type: int(graph.Int(find1(nauto, "eAutoType")))}
		for _, npoint := range finds(nauto, "AkRTPCGraphPoint") {
			a.Points = append(a.Points, ir.AutomationPoint{
				Time:   graph.Float(find1(npoint, "From")),
				Value:  graph.Float(find1(npoint, "To")),
				Interp: int(graph.Int(find1(npoint, "Interp"))),
			})
		}
		out[index] = append(out[index], a)
	}
	return out
}

// trackSwitch maps switch values to subtracks. Switch N plays subtrack N.
func (b *builder) trackSwitch(node graph.Node) error {
	nswitch := find1(node, "SwitchParams")
	ntype := find1(nswitch, "eGroupType")
	ngroup := find1(nswitch, "uGroupID")
	ndefault := find1(nswitch, "uDefaultSwitch")
	if ntype == nil || ngroup == nil {
		return b.unsupported("track switch group not found", nil)
	}
	sw := newSwitchData(gamesync.Kind(graph.Int(ntype)), ngroup)

	for _, nvalue := range finds(nswitch, "ulSwitchAssoc") {
		index := -1
		if idx, ok := nvalue.Parent().Attr("index").(int64); ok {
			index = int(idx)
		}
		sw.set(&switchCase{value: graph.Uint(nvalue), nvalue: nvalue, index: index})
	}

	// a default outside the list plays no subtrack
	if ndefault != nil {
		if _, ok := sw.byVal[graph.Uint(ndefault)]; !ok {
			sw.set(&switchCase{value: graph.Uint(ndefault), nvalue: ndefault, index: -1})
		}
	}
	b.obj.sw = sw
	return nil
}

func (b *builder) stinger(node graph.Node) {
	o := b.obj
	o.NSID = find1(node, "TriggerID")
	o.SID = graph.Uint(o.NSID)
	if nsegment := find1(node, "SegmentID"); nsegment != nil {
		o.ntids = []graph.Node{nsegment}
	}
}

func (b *builder) fxCustom(node graph.Node) {
	duration := defaultSilenceDuration
	if graph.Uint(find1(node, "fxID")) == ir.PluginSilence {
		duration = fxDuration(node)
	}
	b.obj.fxDuration = ir.Float(duration)
}
