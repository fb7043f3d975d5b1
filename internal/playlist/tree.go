package playlist

import (
	"fmt"
	"strings"

	"github.com/roach88/txtpgen/internal/curve"
	"github.com/roach88/txtpgen/internal/ir"
)

// Tree is an arena of nodes. Removed nodes stay in the arena but are no
// longer reachable from the root.
type Tree struct {
	nodes []*Node
	root  ID
}

// NewTree creates a tree whose root carries cfg.
func NewTree(cfg *ir.Config) *Tree {
	t := &Tree{}
	t.root = t.add(newNode(cfg, nil))
	return t
}

func (t *Tree) add(n *Node) ID {
	n.ID = ID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return n.ID
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Node returns the node with the given id.
func (t *Tree) Node(id ID) *Node { return t.nodes[id] }

// Parent returns the parent of n, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	if n.Parent == NoID {
		return nil
	}
	return t.nodes[n.Parent]
}

// Children returns the children of n in order.
func (t *Tree) Children(n *Node) []*Node {
	out := make([]*Node, len(n.Children))
	for i, id := range n.Children {
		out[i] = t.nodes[id]
	}
	return out
}

// Child returns the i-th child of n.
func (t *Tree) Child(n *Node, i int) *Node { return t.nodes[n.Children[i]] }

// NewGroup appends a group under parent. The group starts as the root kind
// until one of the builder calls sets it.
func (t *Tree) NewGroup(parent *Node, cfg *ir.Config) *Node {
	n := newNode(cfg, nil)
	t.attach(parent, n)
	return n
}

// NewSound appends a sound leaf under parent.
func (t *Tree) NewSound(parent *Node, sound *ir.Sound, cfg *ir.Config) *Node {
	n := newNode(cfg, sound)
	t.attach(parent, n)
	return n
}

func (t *Tree) attach(parent, n *Node) {
	id := t.add(n)
	n.Parent = parent.ID
	parent.Children = append(parent.Children, id)
}

// Remove detaches n from its parent.
func (t *Tree) Remove(n *Node) {
	p := t.Parent(n)
	if p == nil {
		return
	}
	for i, id := range p.Children {
		if id == n.ID {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = NoID
}

// Copy clones the subtree at n under parent, rebuilding node props from
// the copied configs the way the builder does, and returns the clone.
// Computed timing is not copied.
func (t *Tree) Copy(parent, n *Node) *Node {
	c := newNode(n.Config.Clone(), n.Sound.Clone())
	c.Kind = n.Kind
	if n.Transition != nil {
		tr := *n.Transition
		c.Transition = &tr
	}
	// RTPCs may have changed the volume after the node was built
	c.Volume = cloneFloat(n.Volume)
	c.Envelopes = append([]curve.Envelope(nil), n.Envelopes...)
	t.attach(parent, c)

	for _, id := range n.Children {
		t.Copy(c, t.nodes[id])
	}
	return c
}

// MoveFirst moves the child n to the first position among its siblings.
func (t *Tree) MoveFirst(n *Node) {
	p := t.Parent(n)
	if p == nil {
		return
	}
	out := []ID{n.ID}
	for _, id := range p.Children {
		if id != n.ID {
			out = append(out, id)
		}
	}
	p.Children = out
}

// Walk visits the subtree at n in pre-order. Returning false skips the
// node's children.
func (t *Tree) Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, id := range n.Children {
		t.Walk(t.nodes[id], fn)
	}
}

// Sounds counts the sound leaves reachable from the root.
func (t *Tree) Sounds() int {
	count := 0
	t.Walk(t.Root(), func(n *Node) bool {
		if n.IsSound() {
			count++
		}
		return true
	})
	return count
}

// FirstChild returns the first node at or below n that is not ignorable:
// a sound, a group with several children or a group with its own props.
func (t *Tree) FirstChild(n *Node) *Node {
	if !n.Ignorable(false, false) {
		return n
	}
	for _, id := range n.Children {
		if c := t.FirstChild(t.nodes[id]); c != nil {
			return c
		}
	}
	return nil
}

// LeafID returns the media id of a chain of single groups ending in a
// sound, or 0 when the chain branches or ends in a sound without source.
func (t *Tree) LeafID(n *Node) uint32 {
	if n.IsSound() {
		if n.Sound == nil || n.Sound.Source == nil {
			return 0
		}
		return n.Sound.Source.TID
	}
	if len(n.Children) != 1 {
		return 0
	}
	return t.LeafID(t.Child(n, 0))
}

// HasInfiniteLoop reports whether n or any descendant loops forever.
func (t *Tree) HasInfiniteLoop(n *Node) bool {
	if n.LoopsForever() {
		return true
	}
	for _, id := range n.Children {
		if t.HasInfiniteLoop(t.nodes[id]) {
			return true
		}
	}
	return false
}

// Dump renders the tree structure, one node per line, for debugging.
func (t *Tree) Dump() string {
	var sb strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Kind.String())
		if n.Loop != nil {
			fmt.Fprintf(&sb, " l=%d", *n.Loop)
		}
		if n.Volume != nil {
			fmt.Fprintf(&sb, " v=%g", *n.Volume)
		}
		if n.IsSound() && n.Sound.Source != nil {
			fmt.Fprintf(&sb, " %d", n.Sound.Source.TID)
		}
		sb.WriteByte('\n')
		for _, id := range n.Children {
			walk(t.nodes[id], depth+1)
		}
	}
	walk(t.Root(), 0)
	return sb.String()
}

// Wrap puts a new single group in n's place and moves n under it.
func (t *Tree) Wrap(n *Node) *Node {
	w := newNode(nil, nil)
	w.Kind = KindSingle
	t.add(w)
	if p := t.Parent(n); p != nil {
		for i, id := range p.Children {
			if id == n.ID {
				p.Children[i] = w.ID
				break
			}
		}
		w.Parent = p.ID
	}
	n.Parent = w.ID
	w.Children = []ID{n.ID}
	return w
}
