package txtp

import (
	"fmt"
	"strings"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/printer"
)

// Field is one value printed under an object in the info trace. Key alone
// prints a plain property; Value adds a key/value pair and Min/Max a range.
// Label and Text print computed values that have no graph node.
type Field struct {
	Key   graph.Node
	Value graph.Node
	Min   graph.Node
	Max   graph.Node

	Label string
	Text  string
}

// Prop traces a plain property.
func Prop(n graph.Node) Field { return Field{Key: n} }

// KeyVal traces a property id with its value.
func KeyVal(k, v graph.Node) Field { return Field{Key: k, Value: v} }

// KeyMinMax traces a ranged property.
func KeyMinMax(k, lo, hi graph.Node) Field { return Field{Key: k, Min: lo, Max: hi} }

// Props traces several properties, skipping missing ones.
func Props(nodes ...graph.Node) []Field {
	out := make([]Field, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, Prop(n))
		}
	}
	return out
}

// GamesyncNode is a gamesync as found in the graph, kept as nodes so names
// can be printed.
type GamesyncNode struct {
	Kind  gamesync.Kind
	Group graph.Node
	Value graph.Node
}

type infoEntry struct {
	depth    int
	node     graph.Node
	sid      graph.Node
	fields   []Field
	gamesync string
	source   graph.Node
}

// Info traces the objects visited while building one output.
type Info struct {
	depth   int
	entries []*infoEntry
	gsnames strings.Builder
}

// NewInfo returns an empty trace.
func NewInfo() *Info {
	return &Info{}
}

// Next opens an object. sid may be nil to use the object's own sid.
func (i *Info) Next(node, sid graph.Node, fields []Field) {
	i.depth++
	i.entries = append(i.entries, &infoEntry{depth: i.depth, node: node, sid: sid, fields: fields})
}

// Done closes the current object.
func (i *Info) Done() {
	i.depth--
}

// Source traces the media of a sound under the current object.
func (i *Info) Source(ntid graph.Node, plugin graph.Node) {
	var fields []Field
	if plugin != nil {
		fields = []Field{Prop(plugin)}
	}
	i.entries = append(i.entries, &infoEntry{depth: i.depth + 1, fields: fields, source: ntid})
}

// Gamesync records the variable chosen by the current object.
func (i *Info) Gamesync(g GamesyncNode) error {
	return i.Gamesyncs([]GamesyncNode{g})
}

// Gamesyncs records the variables chosen by the current object.
func (i *Info) Gamesyncs(gs []GamesyncNode) error {
	if len(i.entries) == 0 {
		return fmt.Errorf("txtp: gamesync outside of an object")
	}
	current := i.entries[len(i.entries)-1]
	if current.gamesync != "" {
		return fmt.Errorf("txtp: multiple gamesyncs in the same object")
	}

	var sb strings.Builder
	for _, g := range gs {
		sb.WriteString(gamesyncText(g))
	}
	current.gamesync = sb.String()
	i.gsnames.WriteString(" ")
	i.gsnames.WriteString(current.gamesync)
	return nil
}

func gamesyncText(g GamesyncNode) string {
	name := nodeName(g.Group)
	value := nodeName(g.Value)
	if graph.Uint(g.Value) == 0 {
		value = "-"
	}
	// states are global, switches more restrictive
	if g.Kind == gamesync.State {
		return fmt.Sprintf("(%s=%s)", name, value)
	}
	return fmt.Sprintf("[%s=%s]", name, value)
}

func nodeName(n graph.Node) string {
	if n == nil {
		return "0"
	}
	if s := graph.Str(n, "hashname"); s != "" {
		return s
	}
	return fmt.Sprint(n.Value())
}

// GamesyncNames returns the chosen variables, each prefixed by a space.
func (i *Info) GamesyncNames() string {
	return i.gsnames.String()
}

// Banks lists the banks of the traced objects in visit order.
func (i *Info) Banks() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range i.entries {
		if e.node == nil || e.node.Root() == nil {
			continue
		}
		bank := e.node.Root().Filename()
		if !seen[bank] {
			seen[bank] = true
			out = append(out, bank)
		}
	}
	return out
}

// Lines renders the trace as comment lines.
func (i *Info) Lines() string {
	multibank := len(i.Banks()) > 1
	var sb strings.Builder
	for _, e := range i.entries {
		e.write(&sb, multibank)
	}
	return sb.String()
}

func (e *infoEntry) write(sb *strings.Builder, multibank bool) {
	// one extra space for the one after '#'
	pad := strings.Repeat(" ", e.depth*2+1)

	if e.node != nil {
		sid := e.sid
		if sid == nil {
			sid = e.node.Find1(graph.ByType("sid"))
		}
		line := e.node.Name()
		if idx := e.node.Attr("index"); idx != nil {
			line += fmt.Sprintf("[%v]", idx)
		}
		if sid != nil {
			line += fmt.Sprintf(" %d", graph.Uint(sid))
		}
		if multibank && e.node.Root() != nil {
			line += " / " + e.node.Root().Filename()
		}
		fmt.Fprintf(sb, "#%s%s\n", pad, line)

		named := sid
		if named == nil {
			named = e.node
		}
		writeNames(sb, pad, named)
	}

	if e.gamesync != "" {
		fmt.Fprintf(sb, "#%s~ %s\n", pad, e.gamesync)
	}

	if e.source != nil {
		fmt.Fprintf(sb, "#%sSource %d\n", pad, graph.Uint(e.source))
		writeNames(sb, pad, e.source)
	}

	for _, f := range e.fields {
		key, val, ok := f.render()
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "#%s* %s: %s\n", pad, key, val)
	}
	sb.WriteString("#\n")
}

func writeNames(sb *strings.Builder, pad string, n graph.Node) {
	for _, key := range graph.NameAttrs {
		if v := graph.Str(n, key); v != "" {
			fmt.Fprintf(sb, "#%s- %s: %s\n", pad, key, v)
		}
	}
}

func (f Field) render() (string, string, bool) {
	switch {
	case f.Label != "":
		return f.Label, f.Text, true
	case f.Key == nil:
		return "", "", false
	case f.Min != nil && f.Max != nil:
		key := fmt.Sprintf("%s %s", f.Key.Name(), fieldValue(f.Key))
		return key, fmt.Sprintf("(%s, %s)", fieldValue(f.Min), fieldValue(f.Max)), true
	case f.Value != nil:
		key := f.Key.Name()
		if kv := fieldValue(f.Key); kv != "" {
			key += " " + kv
		}
		return key, fieldValue(f.Value), true
	}
	return f.Key.Name(), fieldValue(f.Key), true
}

func fieldValue(n graph.Node) string {
	if s := graph.Str(n, "valuefmt"); s != "" {
		return s
	}
	if s := graph.Str(n, "hashname"); s != "" {
		return s
	}
	if f, ok := n.Value().(float64); ok {
		return printer.Repr(f)
	}
	return fmt.Sprint(n.Value())
}
