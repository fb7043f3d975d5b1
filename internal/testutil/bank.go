// Package testutil builds small in-memory banks for tests.
//
// The builders produce the same element layout the dump loaders do, so
// tests can walk them through the registry without fixture files:
//
//	bank := testutil.NewBank(1, "bgm.bnk").
//		Add(testutil.Event(100, "Play_BGM", 200)).
//		Add(testutil.ActionPlay(200, 300)).
//		Add(testutil.Sound(300, 1000, true))
//	banks := []graph.Bank{bank.Build()}
package testutil

import (
	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
)

// Version is the bank version used by NewBank.
const Version = 120

// Plugin ids of the usual codecs.
const (
	PluginVorbis   = 0x00040001
	PluginExternal = 0x00080001
	PluginSilence  = 0x00650002
)

// Bank accumulates objects for one bank.
type Bank struct {
	id       uint32
	filename string
	version  int
	name     string
	items    []*graph.Element
	extra    []*graph.Element
}

// NewBank starts a bank with no objects.
func NewBank(id uint32, filename string) *Bank {
	return &Bank{id: id, filename: filename, version: Version}
}

// WithVersion changes the bank version.
func (b *Bank) WithVersion(v int) *Bank {
	b.version = v
	return b
}

// WithName sets the hashed name written in the bank header.
func (b *Bank) WithName(name string) *Bank {
	b.name = name
	return b
}

// Add appends objects to the loaded item list. Each gets the next index.
func (b *Bank) Add(objs ...*graph.Element) *Bank {
	b.items = append(b.items, objs...)
	return b
}

// AddChunk appends a top-level chunk, like a media index.
func (b *Bank) AddChunk(chunk *graph.Element) *Bank {
	b.extra = append(b.extra, chunk)
	return b
}

// Build returns the finished bank.
func (b *Bank) Build() *graph.BankElement {
	bank := graph.NewBank(b.id, b.filename, b.version)

	nid := graph.NewElement("dwSoundBankID", "tid", int64(b.id))
	if b.name != "" {
		nid.SetAttr("hashname", b.name)
	}
	header := graph.NewElement("BankHeader", "", nil).Append(
		graph.NewElement("dwBankGeneratorVersion", "u32", int64(b.version)),
		nid,
	)

	items := graph.NewElement("listLoadedItem", "", nil)
	for i, obj := range b.items {
		items.Append(obj.SetIndex(i))
	}
	hirc := graph.NewElement("HircChunk", "", nil).Append(
		graph.NewElement("NumReleasableHircItem", "u32", int64(len(b.items))),
		items,
	)

	bank.Append(header)
	bank.Append(b.extra...)
	bank.Append(hirc)
	return bank
}

func sid(id uint32, name string) *graph.Element {
	n := graph.NewElement("ulID", "sid", int64(id))
	if name != "" {
		n.SetAttr("hashname", name)
	}
	return n
}

func tid(field string, id uint32) *graph.Element {
	return graph.NewElement(field, "tid", int64(id))
}

func named(field string, id uint32, name string) *graph.Element {
	n := tid(field, id)
	if name != "" {
		n.SetAttr("hashname", name)
	}
	return n
}

func children(ids []uint32) *graph.Element {
	nchildren := graph.NewElement("Children", "", nil).Append(
		graph.NewElement("ulNumChilds", "u32", int64(len(ids))),
	)
	for _, id := range ids {
		nchildren.Append(tid("ulChildID", id))
	}
	return nchildren
}

// Event plays the given actions. name may be empty.
func Event(id uint32, name string, actions ...uint32) *graph.Element {
	ev := graph.NewElement("CAkEvent", "", nil).Append(
		sid(id, name),
		graph.NewElement("ulActionListSize", "var", int64(len(actions))),
	)
	for _, a := range actions {
		ev.Append(tid("ulActionID", a))
	}
	return ev
}

// ActionPlay plays target from the current bank.
func ActionPlay(id, target uint32) *graph.Element {
	return graph.NewElement("CAkActionPlay", "", nil).Append(
		sid(id, ""),
		graph.NewElement("ulActionType", "u16", int64(0x0403)),
		tid("idExt", target),
	)
}

// ActionPlayFrom plays target from another bank.
func ActionPlayFrom(id, target, bank uint32) *graph.Element {
	return graph.NewElement("CAkActionPlay", "", nil).Append(
		sid(id, ""),
		graph.NewElement("ulActionType", "u16", int64(0x0403)),
		tid("idExt", target),
		graph.NewElement("PlayActionParams", "", nil).Append(
			tid("bankID", bank),
		),
	)
}

// Sound plays media file. Streamed sounds point to loose files; others to
// media inside the bank.
func Sound(id, file uint32, streamed bool) *graph.Element {
	return SoundWith(id, file, streamed, PluginVorbis)
}

// SoundWith is Sound with a given plugin id.
func SoundWith(id, file uint32, streamed bool, plugin uint32) *graph.Element {
	stream := int64(0)
	if streamed {
		stream = 2
	}
	return graph.NewElement("CAkSound", "", nil).Append(
		sid(id, ""),
		graph.NewElement("AkBankSourceData", "", nil).Append(
			graph.NewElement("ulPluginID", "u32", int64(plugin)),
			graph.NewElement("StreamType", "u8", stream),
			graph.NewElement("AkMediaInformation", "", nil).Append(
				tid("sourceID", file),
				graph.NewElement("uInMemoryMediaSize", "u32", int64(1000)),
			),
		),
		graph.NewElement("NodeBaseParams", "", nil),
	)
}

// WithVolume adds a volume property to an audio object.
func WithVolume(obj *graph.Element, db float64) *graph.Element {
	return obj.Append(
		graph.NewElement("NodeInitialParams", "", nil).Append(
			graph.NewElement("AkPropBundle<AkPropValue,unsigned char>", "", nil).Append(
				graph.NewElement("AkPropBundle", "", nil).Append(
					graph.NewElement("pID", "u8", int64(0)).SetAttr("valuefmt", "0x00 [Volume]"),
					graph.NewElement("pValue", "f32", db),
				),
			),
		),
	)
}

// Layer plays every child at once.
func Layer(id uint32, kids ...uint32) *graph.Element {
	return graph.NewElement("CAkLayerCntr", "", nil).Append(
		sid(id, ""),
		graph.NewElement("NodeBaseParams", "", nil),
		children(kids),
	)
}

// Sequence plays its children one per play.
func Sequence(id uint32, kids ...uint32) *graph.Element {
	return ranSeq(id, 1, false, kids)
}

// SequenceContinuous plays every child in order.
func SequenceContinuous(id uint32, kids ...uint32) *graph.Element {
	return ranSeq(id, 1, true, kids)
}

// Random plays one child at random.
func Random(id uint32, kids ...uint32) *graph.Element {
	return ranSeq(id, 0, false, kids)
}

func ranSeq(id uint32, mode int64, continuous bool, kids []uint32) *graph.Element {
	cont := int64(0)
	if continuous {
		cont = 1
	}
	return graph.NewElement("CAkRanSeqCntr", "", nil).Append(
		sid(id, ""),
		graph.NewElement("NodeBaseParams", "", nil),
		graph.NewElement("sLoopCount", "u16", int64(1)),
		graph.NewElement("wAvoidRepeatCount", "u16", int64(0)),
		graph.NewElement("eRandomMode", "u8", int64(0)),
		graph.NewElement("eMode", "u8", mode),
		graph.NewElement("bIsContinuous", "u8", cont),
		children(kids),
	)
}

// Case is one value of a switch and the objects it plays.
type Case struct {
	Value   uint32
	Name    string
	Targets []uint32
}

// Switch picks children by the value of a variable.
func Switch(id uint32, kind gamesync.Kind, group uint32, groupName string, cases ...Case) *graph.Element {
	list := graph.NewElement("SwitchList", "", nil)
	var all []uint32
	for _, c := range cases {
		nlist := graph.NewElement("NodeList", "", nil)
		for _, t := range c.Targets {
			nlist.Append(tid("NodeID", t))
		}
		all = append(all, c.Targets...)
		list.Append(graph.NewElement("CAkSwitchPackage", "", nil).Append(
			named("ulSwitchID", c.Value, c.Name),
			graph.NewElement("ulNumItems", "u32", int64(len(c.Targets))),
			nlist,
		))
	}
	return graph.NewElement("CAkSwitchCntr", "", nil).Append(
		sid(id, ""),
		graph.NewElement("NodeBaseParams", "", nil),
		graph.NewElement("eGroupType", "u8", int64(kind)),
		named("ulGroupID", group, groupName),
		children(all),
		list,
	)
}

// MediaIndex lists in-bank media ids.
func MediaIndex(ids ...uint32) *graph.Element {
	nmedia := graph.NewElement("MediaIndex", "", nil)
	for i, id := range ids {
		nmedia.Append(graph.NewElement("MediaHeader", "", nil).SetIndex(i).Append(
			graph.NewElement("id", "sid", int64(id)),
			graph.NewElement("uOffset", "u32", int64(i*1000)),
			graph.NewElement("uSize", "u32", int64(1000)),
		))
	}
	return nmedia
}

// Banks builds every bank.
func Banks(bs ...*Bank) []graph.Bank {
	out := make([]graph.Bank, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Build())
	}
	return out
}
