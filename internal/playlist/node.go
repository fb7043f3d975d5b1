package playlist

import (
	"github.com/roach88/txtpgen/internal/curve"
	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/ir"
)

// VolumeMax bounds every volume in either direction. The authoring tool
// allows +-200dB even though typical values stay within -96..+12.
const VolumeMax = 200.0

// silenceDB is the level at or below which a volume means "muted".
const silenceDB = -96.0

// Kind is the node variant.
type Kind int

const (
	KindRoot Kind = iota
	KindSound
	KindSingle
	KindSequenceContinuous
	KindSequenceStep
	KindRandomContinuous
	KindRandomStep
	KindLayer
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "."
	case KindSound:
		return "snd"
	case KindSingle:
		return "N"
	case KindSequenceContinuous:
		return "SC"
	case KindSequenceStep:
		return "SS"
	case KindRandomContinuous:
		return "RC"
	case KindRandomStep:
		return "RS"
	case KindLayer:
		return "L"
	}
	return "?"
}

// ID indexes a node inside its Tree.
type ID int

// NoID is the parent of the root.
const NoID ID = -1

// Node is one element of the playlist tree.
type Node struct {
	ID       ID
	Parent   ID
	Children []ID
	Kind     Kind

	Config     *ir.Config
	Sound      *ir.Sound
	Transition *ir.Transition

	// Computed timing, set by the simplifier.
	PadBegin  float64
	TrimBegin float64
	BodyTime  float64
	TrimEnd   float64
	PadEnd    float64

	Envelopes []curve.Envelope

	// Working copies of the config props; passes move them around.
	Volume     *float64
	MakeupGain *float64
	Pitch      *float64
	Loop       *int
	Delay      *float64
	IDelay     *float64

	Crossfaded bool
	Silenced   bool

	LoopAnchor      bool
	LoopEnd         bool
	LoopKilled      bool
	SelfLoop        bool
	FakeEntry       bool
	ForceSelectable bool
}

func newNode(cfg *ir.Config, sound *ir.Sound) *Node {
	if cfg == nil {
		cfg = &ir.Config{}
	}
	n := &Node{
		Parent:     NoID,
		Kind:       KindRoot,
		Config:     cfg,
		Sound:      sound,
		Volume:     cloneFloat(cfg.Volume),
		MakeupGain: cloneFloat(cfg.MakeupGain),
		Pitch:      cloneFloat(cfg.Pitch),
		Loop:       cloneInt(cfg.Loop),
		Delay:      cloneFloat(cfg.Delay),
		IDelay:     cloneFloat(cfg.IDelay),
		Crossfaded: cfg.Crossfaded,
	}
	if sound != nil {
		n.Kind = KindSound
		// clips loop through their own timing
		if sound.Clip {
			n.Loop = nil
		}
	}
	n.adjustVolume()
	return n
}

// adjustVolume turns muting volumes into the silenced flag and folds the
// makeup gain into the volume.
func (n *Node) adjustVolume() {
	if n.Volume != nil && *n.Volume != 0 && *n.Volume <= silenceDB {
		n.Volume = nil
		n.Silenced = true
	}
	if n.MakeupGain != nil && *n.MakeupGain != 0 && *n.MakeupGain <= silenceDB {
		n.MakeupGain = nil
		n.Silenced = true
	}
	if ir.IsSet(n.MakeupGain) {
		n.Volume = ir.Float(ir.FloatVal(n.Volume) + *n.MakeupGain)
	}
}

// ClampVolume limits the volume to +-VolumeMax.
func (n *Node) ClampVolume() {
	if !ir.IsSet(n.Volume) {
		return
	}
	if *n.Volume > VolumeMax {
		*n.Volume = VolumeMax
	} else if *n.Volume < -VolumeMax {
		*n.Volume = -VolumeMax
	}
}

// AddVolume adds db to the node volume and clamps the result.
func (n *Node) AddVolume(db float64) {
	n.Volume = ir.Float(ir.FloatVal(n.Volume) + db)
	n.ClampVolume()
}

// ApplyGamevars evaluates the node's volume RTPCs with the game parameter
// values in params. It returns the parameters that changed the volume.
func (n *Node) ApplyGamevars(params *gamesync.Params) ([]gamesync.Gamevar, error) {
	if !params.HasGamevars() || len(n.Config.Rtpcs) == 0 {
		return nil, nil
	}

	volume := ir.FloatVal(n.Volume)
	if n.Silenced && volume == 0 {
		volume = -silenceDB
	}

	var used []gamesync.Gamevar
	for _, r := range n.Config.Rtpcs {
		gv, ok := params.Gamevar(r.ID)
		if !ok {
			continue
		}
		if gv.Default {
			continue
		}
		lo, hi := r.MinMax()
		x := gv.Value
		switch {
		case gv.Min:
			x = lo
		case gv.Max:
			x = hi
		}

		y, err := curve.Evaluate(r, x)
		if err != nil {
			return nil, err
		}
		volume, err = curve.Accumulate(r.Accum, y, &volume)
		if err != nil {
			return nil, err
		}
		used = append(used, gv)
	}

	if len(used) > 0 {
		n.Volume = ir.Float(volume)
		n.ClampVolume()
	}
	return used, nil
}

// IsSound reports whether the node is a leaf.
func (n *Node) IsSound() bool { return n.Kind == KindSound }

// IsGroup reports whether the node is a printable group. The root is not.
func (n *Node) IsGroup() bool { return n.Kind >= KindSingle }

// IsSingle reports a single group.
func (n *Node) IsSingle() bool { return n.Kind == KindSingle }

// IsSteps reports a group that plays one child per call.
func (n *Node) IsSteps() bool {
	return n.Kind == KindSequenceStep || n.Kind == KindRandomStep
}

// IsContinuous reports a group that plays every child in turn.
func (n *Node) IsContinuous() bool {
	return n.Kind == KindSequenceContinuous || n.Kind == KindRandomContinuous
}

// IsLayer reports a layer group.
func (n *Node) IsLayer() bool { return n.Kind == KindLayer }

// IsClip reports a music track clip leaf.
func (n *Node) IsClip() bool { return n.Sound != nil && n.Sound.Clip }

// LoopIs reports whether the loop is set to v.
func (n *Node) LoopIs(v int) bool { return n.Loop != nil && *n.Loop == v }

// LoopsForever reports an infinite loop.
func (n *Node) LoopsForever() bool { return n.LoopIs(ir.LoopInfinite) }

// NoLoop reports an unset loop or a single play.
func (n *Node) NoLoop() bool { return n.Loop == nil || *n.Loop == ir.LoopNone }

// Ignorable reports whether the node adds nothing to the output and can be
// skipped when printing. skipLoop ignores infinite loops; simpler ignores
// volumes and delays.
func (n *Node) Ignorable(skipLoop, simpler bool) bool {
	if !skipLoop && n.LoopsForever() {
		return false
	}
	if n.Loop != nil && *n.Loop > 1 {
		return false
	}
	if n.IsSound() {
		return false
	}
	if len(n.Children) > 1 {
		return false
	}
	// groups wrapping a clip with envelopes carry its window
	if n.TrimBegin != 0 || n.BodyTime != 0 {
		return false
	}
	if (ir.IsSet(n.IDelay) || ir.IsSet(n.Delay) || ir.IsSet(n.Volume)) && !simpler {
		return false
	}
	return true
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
