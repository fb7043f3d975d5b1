package graph

import "errors"

// ErrMultipleMatches is returned by Find when a query is not unique.
var ErrMultipleMatches = errors.New("more than 1 result found")

// Query selects elements by name, type tag or value. An element matches
// when any of the listed names, types or values matches.
type Query struct {
	Names  []string
	Types  []string
	Values []any
}

// ByName matches elements named like any of names.
func ByName(names ...string) Query {
	return Query{Names: names}
}

// ByType matches elements with any of the given type tags.
func ByType(types ...string) Query {
	return Query{Types: types}
}

// ByValue matches elements holding the given value.
func ByValue(v any) Query {
	return Query{Values: []any{v}}
}

func (q Query) empty() bool {
	return len(q.Names) == 0 && len(q.Types) == 0 && len(q.Values) == 0
}

type finder struct {
	q       Query
	first   bool
	results []Node
}

func find(base Node, q Query) (Node, error) {
	f := &finder{q: q}
	f.outer(base.Children())
	switch len(f.results) {
	case 0:
		return nil, nil
	case 1:
		return f.results[0], nil
	}
	return nil, ErrMultipleMatches
}

func find1(base Node, q Query) Node {
	f := &finder{q: q, first: true}
	f.outer(base.Children())
	if len(f.results) == 0 {
		return nil
	}
	return f.results[0]
}

func finds(base Node, q Query) []Node {
	f := &finder{q: q}
	f.outer(base.Children())
	return f.results
}

func (f *finder) done() bool {
	return f.first && len(f.results) > 0
}

// outer checks a whole level before descending into each element's subtree.
func (f *finder) outer(nodes []Node) {
	if f.q.empty() || len(nodes) == 0 || f.done() {
		return
	}
	for _, n := range nodes {
		f.match(n)
		if f.done() {
			return
		}
	}
	for _, n := range nodes {
		f.outer(n.Children())
		if f.done() {
			return
		}
	}
}

func (f *finder) match(n Node) {
	for _, name := range f.q.Names {
		if n.Name() == name {
			f.results = append(f.results, n)
			return
		}
	}
	if t := n.Type(); t != "" {
		for _, want := range f.q.Types {
			if t == want {
				f.results = append(f.results, n)
				return
			}
		}
	}
	if v := n.Value(); v != nil {
		for _, want := range f.q.Values {
			if valuesEqual(v, want) {
				f.results = append(f.results, n)
				return
			}
		}
	}
}
