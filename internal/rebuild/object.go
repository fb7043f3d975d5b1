package rebuild

import (
	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/txtp"
)

// Object is the behavior of one bank object, read once from the graph. It
// is a closed union over Kind: only the fields of its kind are set.
type Object struct {
	Kind Kind
	Node graph.Node
	// NSID names the object in the info trace; stingers use their trigger.
	NSID graph.Node
	SID  uint32

	Config *ir.Config
	Fields []txtp.Field

	// ntids are the child references, resolved in the object's bank.
	ntids []graph.Node

	// Event, actions
	nbank graph.Node

	// DialogueEvent, MusicSwitchCntr
	tree *decisionTree

	// SwitchCntr, MusicSwitchCntr (old), MusicTrack
	sw *switchData

	// RanSeqCntr
	mode       int
	continuous bool

	// Sound
	sound *soundData

	// MusicSwitchCntr, MusicRanSeqCntr
	transitions []graph.Node
	stingers    []txtp.Stinger

	// MusicRanSeqCntr
	playlist []*playlistItem

	// MusicSegment
	silence *ir.Sound

	// MusicTrack
	track *trackData

	// FxCustom, seconds
	fxDuration *float64

	silences []silenceNodes
}

type silenceNodes struct {
	group graph.Node
	value graph.Node
}

// switchCase is one value of a switch and what it plays. Cases keep the
// order in which values were first declared.
type switchCase struct {
	value  uint32
	nvalue graph.Node
	ntids  []graph.Node
	// index is the subtrack of music track switches; -1 plays nothing.
	index int
}

type switchData struct {
	kind   gamesync.Kind
	ngroup graph.Node
	cases  []*switchCase
	byVal  map[uint32]*switchCase
}

func newSwitchData(kind gamesync.Kind, ngroup graph.Node) *switchData {
	return &switchData{kind: kind, ngroup: ngroup, byVal: make(map[uint32]*switchCase)}
}

// set adds or replaces a case. A replaced case keeps its position.
func (s *switchData) set(c *switchCase) {
	if old, ok := s.byVal[c.value]; ok {
		*old = *c
		return
	}
	s.byVal[c.value] = c
	s.cases = append(s.cases, c)
}

func (s *switchData) group() uint32 {
	return graph.Uint(s.ngroup)
}

type soundData struct {
	sound   *ir.Sound
	nsrc    graph.Node
	nplugin graph.Node
}

// playlistItem is a music playlist entry: a segment leaf when ntid is set,
// a nested playlist otherwise.
type playlistItem struct {
	node   graph.Node
	ntid   graph.Node
	typ    int
	config *ir.Config
	fields []txtp.Field
	items  []*playlistItem
}

type trackData struct {
	typ       int
	subtracks [][]*clip
}

type clip struct {
	node   graph.Node
	nevent graph.Node
	sound  *ir.Sound
	src    sourceNodes
	fields []txtp.Field
}

// Playlist types of tracks and music playlist items.
const (
	rsLeaf               = -1
	rsContinuousSequence = 0
	rsStepSequence       = 1
	rsContinuousRandom   = 2
	rsStepRandom         = 3
)

// Track types.
const (
	trackNormal   = 0
	trackRandom   = 1
	trackSequence = 2
	trackSwitch   = 3
)

// Marker ids of segment entry and exit cues. Older banks use 0 and 1.
const (
	markerEntry    = 43573010
	markerExit     = 1539036744
	oldMarkerEntry = 0
	oldMarkerExit  = 1
)

// Sequence modes of RanSeqCntr.
const (
	modeRandom   = 0
	modeSequence = 1
)

func (o *Object) bankName() string {
	if o.Node == nil || o.Node.Root() == nil {
		return ""
	}
	return o.Node.Root().Filename()
}

// cfg returns a private copy of the object config for a new tree node.
func (o *Object) cfg() *ir.Config {
	return o.Config.Clone()
}

// Stingers returns the stingers declared by a music object.
func (o *Object) Stingers() []txtp.Stinger {
	return o.stingers
}
