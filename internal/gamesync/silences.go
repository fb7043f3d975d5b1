package gamesync

import (
	"sort"

	"github.com/roach88/txtpgen/internal/ir"
)

// SilenceState is one state value that mutes the objects that declare it.
type SilenceState struct {
	Group     uint32
	Value     uint32
	GroupName string
	ValueName string
}

// SilencePaths collects the silencing states found in a tree, one axis per
// state group.
type SilencePaths struct {
	axes   map[uint32][]SilenceState
	order  []uint32
	forced bool
}

// NewSilencePaths returns an empty collection.
func NewSilencePaths() *SilencePaths {
	return &SilencePaths{axes: make(map[uint32][]SilenceState)}
}

// AddState registers a state value; duplicates are ignored.
func (s *SilencePaths) AddState(st SilenceState) {
	values, ok := s.axes[st.Group]
	if !ok {
		s.order = append(s.order, st.Group)
	}
	for _, v := range values {
		if v == st {
			return
		}
	}
	s.axes[st.Group] = append(values, st)
}

// Empty reports whether no state was registered.
func (s *SilencePaths) Empty() bool {
	return len(s.order) == 0
}

// Filter drops the values of state groups that params already fix, since
// the path being rendered can never reach them. A group fixed to a value
// with no silencing state is removed. The "any" value (0) fixes nothing.
func (s *SilencePaths) Filter(params *Params) {
	if params.Empty() {
		return
	}
	order := s.order[:0]
	for _, g := range s.order {
		v, ok := params.Current(State, g)
		if !ok || v == 0 {
			order = append(order, g)
			continue
		}
		s.forced = true

		var kept []SilenceState
		for _, st := range s.axes[g] {
			if st.Value == v {
				kept = append(kept, st)
			}
		}
		if len(kept) == 0 {
			delete(s.axes, g)
			continue
		}
		s.axes[g] = kept
		order = append(order, g)
	}
	s.order = order
}

// Forced reports whether Filter found a state group fixed by the params.
func (s *SilencePaths) Forced() bool {
	return s.forced
}

// Combos returns the cartesian product of all axes. Axes and values are
// sorted by name (unnamed last) and then id, so output is stable no matter
// where in the tree each state was found.
func (s *SilencePaths) Combos() []*SilenceParams {
	if s.Empty() {
		return nil
	}

	axes := make([][]SilenceState, 0, len(s.order))
	for _, g := range s.order {
		values := append([]SilenceState(nil), s.axes[g]...)
		sort.SliceStable(values, func(i, j int) bool {
			return lessByName(values[i].ValueName, values[i].Value, values[j].ValueName, values[j].Value)
		})
		axes = append(axes, values)
	}
	sort.SliceStable(axes, func(i, j int) bool {
		a, b := axes[i][0], axes[j][0]
		return lessByName(a.GroupName, a.Group, b.GroupName, b.Group)
	})

	var out []*SilenceParams
	var walk func(depth int, picked []SilenceState)
	walk = func(depth int, picked []SilenceState) {
		if depth == len(axes) {
			sp := &SilenceParams{}
			for _, st := range picked {
				sp.add(st)
			}
			out = append(out, sp)
			return
		}
		for _, st := range axes[depth] {
			walk(depth+1, append(picked, st))
		}
	}
	walk(0, make([]SilenceState, 0, len(axes)))
	return out
}

func lessByName(na string, ia uint32, nb string, ib uint32) bool {
	if na == "" {
		na = "~"
	}
	if nb == "" {
		nb = "~"
	}
	if na != nb {
		return na < nb
	}
	return ia < ib
}

// SilenceParams is one combination of active silencing states.
type SilenceParams struct {
	items []SilenceState
}

func (p *SilenceParams) add(st SilenceState) {
	for i, it := range p.items {
		if it.Group == st.Group && it.Value == st.Value {
			p.items[i] = st
			return
		}
	}
	p.items = append(p.items, st)
}

// IsSilent reports whether any of the object's states is active.
func (p *SilenceParams) IsSilent(states []ir.StateRef) bool {
	if p == nil {
		return false
	}
	for _, s := range states {
		for _, it := range p.items {
			if it.Group == s.Group && it.Value == s.Value {
				return true
			}
		}
	}
	return false
}

// Items lists the active states.
func (p *SilenceParams) Items() []SilenceState {
	if p == nil {
		return nil
	}
	return append([]SilenceState(nil), p.items...)
}
