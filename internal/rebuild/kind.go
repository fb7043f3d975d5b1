package rebuild

// Kind is the closed set of object kinds the walk understands. Anything
// else is KindNone and contributes nothing.
type Kind int

const (
	KindNone Kind = iota
	KindEvent
	KindDialogueEvent
	KindActionPlay
	KindActionTrigger
	KindActionPlayAndContinue
	KindActionPlayEvent
	KindLayerCntr
	KindSwitchCntr
	KindRanSeqCntr
	KindSound
	KindMusicSwitchCntr
	KindMusicRanSeqCntr
	KindMusicSegment
	KindMusicTrack
	KindStinger
	KindState
	KindFxCustom
)

var kindNames = map[string]Kind{
	"CAkEvent":                 KindEvent,
	"CAkDialogueEvent":         KindDialogueEvent,
	"CAkActionPlay":            KindActionPlay,
	"CAkActionTrigger":         KindActionTrigger,
	"CAkActionPlayAndContinue": KindActionPlayAndContinue,
	"CAkActionPlayEvent":       KindActionPlayEvent,
	"CAkLayerCntr":             KindLayerCntr,
	"CAkSwitchCntr":            KindSwitchCntr,
	"CAkRanSeqCntr":            KindRanSeqCntr,
	"CAkSound":                 KindSound,
	"CAkMusicSwitchCntr":       KindMusicSwitchCntr,
	"CAkMusicRanSeqCntr":       KindMusicRanSeqCntr,
	"CAkMusicSegment":          KindMusicSegment,
	"CAkMusicTrack":            KindMusicTrack,
	"CAkStinger":               KindStinger,
	"CAkState":                 KindState,
	"CAkFxCustom":              KindFxCustom,
}

// shortNames are used in output names of unnamed objects.
var shortNames = map[Kind]string{
	KindEvent:           "event",
	KindDialogueEvent:   "dialogueevent",
	KindActionPlay:      "action",
	KindActionPlayEvent: "action",
	KindActionTrigger:   "action",
	KindLayerCntr:       "layer",
	KindSwitchCntr:      "switch",
	KindRanSeqCntr:      "ranseq",
	KindSound:           "sound",
	KindMusicSwitchCntr: "musicswitch",
	KindMusicRanSeqCntr: "musicranseq",
	KindMusicSegment:    "musicsegment",
	KindMusicTrack:      "musictrack",
}

// KindOf maps an object class name to its kind.
func KindOf(name string) Kind {
	return kindNames[name]
}

var kindStrings = func() map[Kind]string {
	out := make(map[Kind]string, len(kindNames))
	for name, kind := range kindNames {
		out[kind] = name
	}
	return out
}()

func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "CAkNone"
}

// ShortName is the kind as written in output names, or "" for kinds that
// never start an output.
func (k Kind) ShortName() string {
	return shortNames[k]
}

// EntryKinds start outputs in the main pass.
var EntryKinds = []Kind{KindEvent, KindDialogueEvent}

// UnusedKinds start outputs in the unused pass, in this order: callers
// first, so their children are marked used before being considered.
var UnusedKinds = []Kind{
	KindActionPlay,
	KindActionTrigger,
	KindActionPlayAndContinue,
	KindActionPlayEvent,
	KindLayerCntr,
	KindSwitchCntr,
	KindRanSeqCntr,
	KindSound,
	KindMusicSwitchCntr,
	KindMusicRanSeqCntr,
	KindMusicSegment,
	KindMusicTrack,
}

// IsEntry reports kinds that start outputs in the main pass.
func (k Kind) IsEntry() bool {
	return k == KindEvent || k == KindDialogueEvent
}
