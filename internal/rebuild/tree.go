package rebuild

import (
	"log/slog"

	"github.com/roach88/txtpgen/internal/gamesync"
	"github.com/roach88/txtpgen/internal/graph"
	"github.com/roach88/txtpgen/internal/txtp"
)

type treeArg struct {
	kind  gamesync.Kind
	group graph.Node
}

// treePath is one leaf of a decision tree: a value per argument, in
// argument order, and the object it plays. A value of 0 means any.
type treePath struct {
	values []graph.Node
	ntid   graph.Node
}

// decisionTree is the flattened form of a multi-variable switch, a list
// of value paths the way the authoring tool shows them.
type decisionTree struct {
	args  []treeArg
	paths []treePath
	// ntid is set by trees that play one object for any value.
	ntid graph.Node
}

// buildTree flattens an AkDecisionTree. The tree is a list of nodes per
// depth, each with a key (the value) and either subnodes or the object id
// at the last depth.
func (b *builder) buildTree(node, ntree graph.Node) (*decisionTree, error) {
	ndepth := find1(node, "uTreeDepth")
	nargs := finds(node, "AkGameSync")
	if ndepth == nil || int(graph.Int(ndepth)) != len(nargs) {
		return nil, b.unsupported("tree depth and args don't match", nil)
	}

	tree := &decisionTree{}
	for _, narg := range nargs {
		kind := gamesync.State
		// older dialogue events only use states
		if ntype := find1(narg, "eGroupType"); ntype != nil {
			kind = gamesync.Kind(graph.Int(ntype))
		}
		tree.args = append(tree.args, treeArg{kind: kind, group: find1(narg, "ulGroup")})
	}

	nnode := find1(find1(ntree, "pNodes"), "Node")
	if nnode == nil {
		return tree, nil
	}
	nsubnodes := find1(nnode, "pNodes")
	if nsubnodes != nil {
		values := make([]graph.Node, len(tree.args))
		tree.walk(0, nsubnodes, values)
	} else {
		// a single object for key 0, no depth
		tree.ntid = find1(nnode, "audioNodeId")
	}
	return tree, nil
}

func (t *decisionTree) walk(depth int, nnodes graph.Node, values []graph.Node) {
	if depth >= len(t.args) || nnodes == nil {
		return
	}
	for _, nnode := range nnodes.Children() {
		values[depth] = find1(nnode, "key")
		if depth+1 == len(t.args) {
			t.paths = append(t.paths, treePath{
				values: append([]graph.Node(nil), values...),
				ntid:   find1(nnode, "audioNodeId"),
			})
			continue
		}
		t.walk(depth+1, find1(nnode, "pNodes"), values)
	}
}

// gamesyncs returns the variables of a path, for discovery.
func (t *decisionTree) gamesyncs(p treePath) []gamesync.Gamesync {
	out := make([]gamesync.Gamesync, len(t.args))
	for i, arg := range t.args {
		out[i] = gamesync.Gamesync{Kind: arg.kind, Group: graph.Uint(arg.group), Value: graph.Uint(p.values[i])}
	}
	return out
}

// nodes returns the variables of a path as graph nodes, for the info trace.
func (t *decisionTree) nodes(p treePath) []txtp.GamesyncNode {
	out := make([]txtp.GamesyncNode, len(t.args))
	for i, arg := range t.args {
		out[i] = txtp.GamesyncNode{Kind: arg.kind, Group: arg.group, Value: p.values[i]}
	}
	return out
}

// match finds the first path whose values all equal the current params.
// Each argument is read from params once, since reading may consume it.
func (t *decisionTree) match(params *gamesync.Params, sid uint32) (treePath, bool) {
	if len(t.paths) == 0 {
		return treePath{}, false
	}

	current := make(map[gamesync.Key]uint32, len(t.args))
	for _, arg := range t.args {
		key := gamesync.Key{Kind: arg.kind, Group: graph.Uint(arg.group)}
		if _, done := current[key]; done {
			continue
		}
		if v, ok := params.Value(arg.kind, key.Group); ok {
			current[key] = v
		}
	}

	for _, p := range t.paths {
		if t.pathMatches(current, p) {
			return p, true
		}
	}
	slog.Debug("rebuild: path not found", "node", sid)
	return treePath{}, false
}

func (t *decisionTree) pathMatches(current map[gamesync.Key]uint32, p treePath) bool {
	for i, arg := range t.args {
		v, ok := current[gamesync.Key{Kind: arg.kind, Group: graph.Uint(arg.group)}]
		if !ok || v != graph.Uint(p.values[i]) {
			return false
		}
	}
	return true
}
