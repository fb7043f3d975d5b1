package gamesync

// pathNode is one branch point; a node may set several variables at once
// (decision trees test all their arguments together).
type pathNode struct {
	parent   *pathNode
	elems    []Gamesync
	children []*pathNode
}

// Paths records the branches visited during a walk, in visit order.
//
//	for each branch {
//		paths.Add(branch vars...)
//		... walk children, which may Add/Done further branches
//		paths.Done()
//	}
type Paths struct {
	root    *pathNode
	current *pathNode
	empty   bool
}

// NewPaths returns an empty path tree.
func NewPaths() *Paths {
	root := &pathNode{}
	return &Paths{root: root, current: root, empty: true}
}

// Add opens a branch under the cursor.
func (p *Paths) Add(gs ...Gamesync) {
	p.empty = false
	node := &pathNode{parent: p.current, elems: append([]Gamesync(nil), gs...)}
	p.current.children = append(p.current.children, node)
	p.current = node
}

// Done closes the current branch.
func (p *Paths) Done() {
	if p.current.parent != nil {
		p.current = p.current.parent
	}
}

// Empty reports whether no branch was recorded.
func (p *Paths) Empty() bool {
	return p.empty
}

// Combos returns one Params per leaf, holding every value on the way from
// the leaf to the root. Siblings are alternatives, so no cross product is
// made. Values are pushed leaf first, so reads see the root-most value
// first.
func (p *Paths) Combos() []*Params {
	var out []*Params
	var walk func(n *pathNode)
	walk = func(n *pathNode) {
		if len(n.children) == 0 {
			params := NewParams()
			for node := n; node != nil; node = node.parent {
				params.Adds(node.elems)
			}
			out = append(out, params)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(p.root)
	return out
}
