package rebuild

import (
	"log/slog"
	"strings"

	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/txtp"
)

// Property names that change playback in ways the output cannot express.
var warnProps = []string{
	"[LoopStart]", "[LoopEnd]",
	"[FadeInTime]", "[FadeOutTime]", "[LoopCrossfadeDuration]",
	"[CrossfadeUpCurve]", "[CrossfadeDownCurve]",
}

// Flat property fields of early bank versions.
var (
	oldAudioProps = []string{
		"Volume", "Volume.min", "Volume.max", "LFE", "LFE.min", "LFE.max",
		"Pitch", "Pitch.min", "Pitch.max", "LPF", "LPF.min", "LPF.max",
	}
	oldActionProps = []string{
		"tDelay", "tDelayMin", "tDelayMax", "TTime", "TTimeMin", "TTimeMax",
	}
)

var propBundles = []string{
	"AkPropBundle<AkPropValue,unsigned char>",
	"AkPropBundle<float,unsigned short>",
	"AkPropBundle<float>",
}

const rangedBundle = "AkPropBundle<RANGED_MODIFIERS<AkPropValue>>"

// silenceStateDB is the state volume that mutes an object.
const silenceStateDB = -96.0

func find1(n graph.Node, name string) graph.Node {
	if n == nil {
		return nil
	}
	return n.Find1(graph.ByName(name))
}

func finds(n graph.Node, name string) []graph.Node {
	if n == nil {
		return nil
	}
	return n.Finds(graph.ByName(name))
}

// parseProps reads the property bundles of newer banks. It returns false
// when the node has none, meaning flat fields must be read instead.
func (b *builder) parseProps(ninit graph.Node) bool {
	var nvalues graph.Node
	for _, name := range propBundles {
		if nvalues = find1(ninit, name); nvalues != nil {
			break
		}
	}

	if nvalues != nil {
		for _, nprop := range finds(nvalues, "AkPropBundle") {
			nkey := find1(nprop, "pID")
			nval := find1(nprop, "pValue")
			if nkey == nil || nval == nil {
				continue
			}
			b.applyProp(graph.Str(nkey, "valuefmt"), nval)
			b.obj.Fields = append(b.obj.Fields, txtp.KeyVal(nkey, nval))
		}
	}

	nranges := find1(ninit, rangedBundle)
	if nranges != nil {
		for _, nprop := range finds(nranges, "AkPropBundle") {
			nkey := find1(nprop, "pID")
			nmin := find1(nprop, "min")
			nmax := find1(nprop, "max")
			if nkey == nil {
				continue
			}
			b.obj.Fields = append(b.obj.Fields, txtp.KeyMinMax(nkey, nmin, nmax))
		}
	}

	return nvalues != nil || nranges != nil
}

func (b *builder) applyProp(valuefmt string, nval graph.Node) {
	cfg := b.obj.Config
	for _, warn := range warnProps {
		if strings.Contains(valuefmt, warn) {
			b.reg.unknownProp(valuefmt)
			return
		}
	}

	switch {
	case strings.Contains(valuefmt, "[Loop]"):
		cfg.Loop = ir.Int(int(graph.Int(nval)))
	case strings.Contains(valuefmt, "[Volume]"):
		cfg.Volume = ir.Float(graph.Float(nval))
	case strings.Contains(valuefmt, "[MakeUpGain]"):
		cfg.MakeupGain = ir.Float(graph.Float(nval))
	case strings.Contains(valuefmt, "[Pitch]"):
		cfg.Pitch = ir.Float(graph.Float(nval))
	case strings.Contains(valuefmt, "[DelayTime]"):
		cfg.Delay = ir.Float(graph.Float(nval))
	case strings.Contains(valuefmt, "[InitialDelay]"):
		// seconds to ms
		cfg.IDelay = ir.Float(graph.Float(nval) * 1000.0)
	}
}

// actionConfig reads the delays of an action.
func (b *builder) actionConfig(node graph.Node) {
	ninit := find1(node, "ActionInitialValues")
	if ninit == nil {
		return
	}
	if b.parseProps(ninit) {
		return
	}

	for _, prop := range oldActionProps {
		nprop := find1(ninit, prop)
		if nprop == nil {
			continue
		}
		value := graph.Float(nprop)
		if value == 0 {
			continue
		}
		if prop == "tDelay" || prop == "tDelayMin" {
			b.obj.Config.IDelay = ir.Float(value)
		}
		b.obj.Fields = append(b.obj.Fields, txtp.Prop(nprop))
	}
}

// audioConfig reads the playback properties of audio objects. Music
// segments and tracks also get their state silences and volume RTPCs, used
// to crossfade layers.
func (b *builder) audioConfig(node graph.Node) error {
	kind := b.obj.Kind
	musical := kind == KindMusicTrack || kind == KindMusicSegment

	nbase := find1(node, "NodeBaseParams")
	if nbase != nil && musical {
		if err := b.stateSilences(nbase); err != nil {
			return err
		}
		b.rtpcConfig(nbase)
	}

	ninit := find1(node, "NodeInitialParams")
	if ninit == nil {
		ninit = find1(node, "StateInitialValues")
	}
	if ninit == nil {
		return nil
	}
	if b.parseProps(ninit) {
		return nil
	}

	for _, prop := range oldAudioProps {
		nprop := find1(ninit, prop)
		if nprop == nil {
			continue
		}
		value := graph.Float(nprop)
		if value == 0 {
			continue
		}
		if prop == "Volume" {
			b.obj.Config.Volume = ir.Float(value)
		}
		b.obj.Fields = append(b.obj.Fields, txtp.Prop(nprop))
	}
	return nil
}

func (b *builder) stateSilences(nbase graph.Node) error {
	nchunk := find1(nbase, "StateChunk")
	if nchunk == nil {
		return nil
	}
	for _, ngroup := range finds(nchunk, "AkStateGroupChunk") {
		ninstance := find1(ngroup, "ulStateInstanceID")
		// groups may come without states
		if ninstance == nil {
			continue
		}
		state, err := b.reg.Resolve(bankOf(ninstance), graph.Uint(ninstance), b.obj.SID, nil)
		if err != nil {
			return err
		}
		if state == nil || state.Config.Volume == nil || *state.Config.Volume > silenceStateDB {
			continue
		}

		b.obj.Config.Crossfaded = true
		slog.Debug("rebuild: state silence found", "node", b.obj.SID, "state", graph.Uint(ninstance), "kind", b.obj.Kind)

		ngroupID := find1(ngroup, "ulStateGroupID")
		nstateID := find1(ngroup, "ulStateID")
		if ngroupID == nil || nstateID == nil {
			continue
		}
		b.obj.Config.SilenceStates = append(b.obj.Config.SilenceStates, ir.StateRef{
			Group: graph.Uint(ngroupID),
			Value: graph.Uint(nstateID),
		})
		b.obj.silences = append(b.obj.silences, silenceNodes{group: ngroupID, value: nstateID})
		b.obj.Fields = append(b.obj.Fields, txtp.KeyVal(ngroupID, nstateID))
	}
	return nil
}

func bankOf(n graph.Node) uint32 {
	if n == nil || n.Root() == nil {
		return 0
	}
	return n.Root().ID()
}
