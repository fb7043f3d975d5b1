package txtp

import (
	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/playlist"
)

// Entry is the object an output starts from, plus what the name needs to
// tell outputs of the same object apart.
type Entry struct {
	Node graph.Node

	// Trigger and Segment are set for stinger outputs, where the same
	// trigger may play different segments.
	Trigger graph.Node
	Segment graph.Node

	Unused     bool
	Transition bool

	// ShortName is the object kind as written in names of unnamed objects.
	ShortName string
}

// SID returns the id node naming the entry.
func (e Entry) SID() graph.Node {
	if e.Trigger != nil {
		return e.Trigger
	}
	if e.Node == nil {
		return nil
	}
	return e.Node.Find1(graph.ByType("sid"))
}

// Stinger is a trigger found in a music object while discovering paths.
type Stinger struct {
	Node    graph.Node
	Trigger graph.Node
	Segment graph.Node
}

// Stingers keeps the stingers of one entry point in discovery order.
type Stingers struct {
	items []Stinger
	seen  map[graph.Node]bool
}

// NewStingers returns an empty list.
func NewStingers() *Stingers {
	return &Stingers{seen: make(map[graph.Node]bool)}
}

// Add registers s once.
func (s *Stingers) Add(st Stinger) {
	if s.seen[st.Node] {
		return
	}
	s.seen[st.Node] = true
	s.items = append(s.items, st)
}

// Items returns the stingers in discovery order.
func (s *Stingers) Items() []Stinger {
	return s.items
}

// Transitions keeps the segments reachable only through transition rules,
// with the entry ids that reached them.
type Transitions struct {
	nodes   []graph.Node
	callers map[graph.Node][]uint32
}

// NewTransitions returns an empty list.
func NewTransitions() *Transitions {
	return &Transitions{callers: make(map[graph.Node][]uint32)}
}

// Add registers a segment reached from the entry caller.
func (t *Transitions) Add(node graph.Node, caller uint32) {
	callers, ok := t.callers[node]
	if !ok {
		t.nodes = append(t.nodes, node)
	}
	for _, c := range callers {
		if c == caller {
			return
		}
	}
	t.callers[node] = append(callers, caller)
}

// Nodes returns the segments in discovery order.
func (t *Transitions) Nodes() []graph.Node {
	return t.nodes
}

// Callers returns the entries that reached node.
func (t *Transitions) Callers(node graph.Node) []uint32 {
	return t.callers[node]
}

// Txtp is the state of one output while objects are walked: the playlist
// being built, the variables in use and what was found on the way.
type Txtp struct {
	// Params holds the variable values; empty params mean the walk only
	// discovers Paths.
	Params   *gamesync.Params
	Paths    *gamesync.Paths
	Silences *gamesync.SilencePaths
	Info     *Info

	Stingers    *Stingers
	Transitions *Transitions

	entry   Entry
	builder *playlist.Builder
}

// New returns the state for one walk. stingers and transitions are shared
// by every output of the same entry point; nil creates private ones.
func New(params *gamesync.Params, stingers *Stingers, transitions *Transitions) *Txtp {
	if stingers == nil {
		stingers = NewStingers()
	}
	if transitions == nil {
		transitions = NewTransitions()
	}
	return &Txtp{
		Params:      params,
		Paths:       gamesync.NewPaths(),
		Silences:    gamesync.NewSilencePaths(),
		Info:        NewInfo(),
		Stingers:    stingers,
		Transitions: transitions,
	}
}

// Begin starts the tree of entry with a root carrying cfg.
func (t *Txtp) Begin(entry Entry, cfg *ir.Config) {
	t.entry = entry
	t.builder = playlist.NewBuilder(cfg, t.Params)
}

// Entry returns the entry set by Begin.
func (t *Txtp) Entry() Entry {
	return t.entry
}

// Builder returns the tree builder; nil before Begin.
func (t *Txtp) Builder() *playlist.Builder {
	return t.builder
}

// Discovering reports a walk without variable values, which records the
// branches it could take instead of choosing one.
func (t *Txtp) Discovering() bool {
	return t.Params.Empty()
}
