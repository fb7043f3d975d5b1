package txtp

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/ir"
	"github.com/roach88/txtpgen/internal/printer"
	"github.com/roach88/txtpgen/internal/simplify"
)

// Extension is appended to every output name.
const Extension = ".txtp"

var illegalChars = strings.NewReplacer("*", "_", "?", "_", ":", "_", "<", "_", ">", "_", "|", "_")

// NameParts is what an output name is made of besides the entry.
type NameParts struct {
	Gamesyncs string
	Silences  *gamesync.SilenceParams
	Flags     printer.Flags
	Result    *simplify.Result

	// Selected is the selectable child written by this output, 0 if none.
	Selected int
	// External is the name of the external source path, if any.
	External string

	BankMarks  bool
	SilenceAll bool
}

// Name returns the long name of an output, without dupe mark or extension.
func Name(entry Entry, parts NameParts) string {
	var sb strings.Builder

	stinger := entry.Trigger != nil
	sid := entry.SID()

	if named := firstName(sid); named != "" {
		sb.WriteString(named)
	} else {
		sb.WriteString(bankLabel(entry.Node))
		sb.WriteString("-")
		if stinger {
			fmt.Fprintf(&sb, "{stinger=%d~%d}", graph.Uint(sid), graph.Uint(entry.Segment))
			stinger = false
		} else if idx, ok := entry.Node.Attr("index").(int64); ok {
			fmt.Fprintf(&sb, "%04d", idx)
		} else {
			fmt.Fprint(&sb, graph.Uint(sid))
		}
		if entry.Unused {
			sb.WriteString("~unused")
		}
		if entry.Transition {
			sb.WriteString("~transition")
		}
		if entry.ShortName != "" {
			sb.WriteString("-" + entry.ShortName)
		}
	}

	// the same trigger may play different segments
	if stinger {
		fmt.Fprintf(&sb, "-{stinger=~%d}", graph.Uint(entry.Segment))
	}

	sb.WriteString(parts.Gamesyncs)

	flags := parts.Flags
	if flags.Silences {
		if parts.SilenceAll {
			sb.WriteString(" {s-}")
		} else {
			sb.WriteString(" {s}")
		}
	}
	sb.WriteString(silenceNames(parts.Silences))

	res := parts.Result
	if res == nil {
		res = &simplify.Result{}
	}
	if flags.RandomSteps {
		if res.Selection == simplify.SelectRandom {
			fmt.Fprintf(&sb, " {r%d}", parts.Selected)
		} else {
			sb.WriteString(" {r}")
		}
	}
	if res.MultiLoops {
		if res.Selection == simplify.SelectMulti {
			fmt.Fprintf(&sb, " {m%d}", parts.Selected)
		} else {
			sb.WriteString(" {m}")
		}
	}
	if res.Selection == simplify.SelectForce {
		fmt.Fprintf(&sb, " {f%d}", parts.Selected)
	}

	if flags.Lang != "" {
		fmt.Fprintf(&sb, " {l=%s}", flags.Lang)
	}
	if flags.Internals && parts.BankMarks {
		sb.WriteString(" {b}")
	}
	if flags.Externals {
		if parts.External != "" {
			fmt.Fprintf(&sb, " {e=%s}", parts.External)
		} else {
			sb.WriteString(" {e}")
		}
	}
	if flags.Unsupported {
		sb.WriteString(" {!}")
	}
	return sb.String()
}

// DupeName marks a repeated output written anyway.
func DupeName(name string) string {
	return name + " {d}"
}

func firstName(n graph.Node) string {
	for _, key := range []string{"hashname", "guidname"} {
		if s := graph.Str(n, key); s != "" {
			return s
		}
	}
	return ""
}

// bankLabel names the bank of node: its hashed name when known, else the
// file name.
func bankLabel(node graph.Node) string {
	if node == nil || node.Root() == nil {
		return ""
	}
	root := node.Root()
	if nheader := root.Find1(graph.ByName("BankHeader")); nheader != nil {
		nid := nheader.Find1(graph.ByName("dwSoundBankID"))
		if s := graph.Str(nid, "hashname"); s != "" {
			return s
		}
	}
	return graph.BankName(root)
}

func silenceNames(p *gamesync.SilenceParams) string {
	items := p.Items()
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("=")
	for _, it := range items {
		group := it.GroupName
		if group == "" {
			group = fmt.Sprint(it.Group)
		}
		value := it.ValueName
		switch {
		case it.Value == 0:
			value = "-"
		case value == "":
			value = fmt.Sprint(it.Value)
		}
		fmt.Fprintf(&sb, "(%s=%s)", group, value)
	}
	return sb.String()
}

// Namer turns long names into unique file names. Names are compared case
// folded, since outputs often land on case-insensitive filesystems.
type Namer struct {
	fold    cases.Caser
	nodes   map[nameNode]bool
	written map[string]bool
	count   int
}

type nameNode struct {
	name string
	node graph.Node
}

// NewNamer returns a namer with no names taken.
func NewNamer() *Namer {
	return &Namer{
		fold:    cases.Fold(),
		nodes:   make(map[nameNode]bool),
		written: make(map[string]bool),
	}
}

func (n *Namer) key(name string) string {
	return n.fold.String(ir.NormalizeName(name))
}

// Register records name for node. It returns false when the same node
// already produced the name, which means a repeated walk rather than a
// different output.
func (n *Namer) Register(name string, node graph.Node) bool {
	key := nameNode{name: n.key(name), node: node}
	if n.nodes[key] {
		return false
	}
	n.nodes[key] = true
	return true
}

// FileName returns the final file name for a long name. Names already
// written get a #NNN suffix.
func (n *Namer) FileName(name string) string {
	n.count++
	if n.written[n.key(name)] {
		name += fmt.Sprintf("#%03d", n.count)
	}
	n.written[n.key(name)] = true
	return Clean(name) + Extension
}

// Clean replaces characters most filesystems reject.
func Clean(name string) string {
	return illegalChars.Replace(name)
}
