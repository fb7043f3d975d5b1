package gamesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silencePaths() *SilencePaths {
	s := NewSilencePaths()
	s.AddState(SilenceState{Group: 1, Value: 11, GroupName: "intensity", ValueName: "high"})
	s.AddState(SilenceState{Group: 1, Value: 12, GroupName: "intensity", ValueName: "low"})
	s.AddState(SilenceState{Group: 2, Value: 20, GroupName: "vocal", ValueName: "on"})
	s.AddState(SilenceState{Group: 2, Value: 21, GroupName: "vocal", ValueName: "off"})
	return s
}

func TestSilencePathsFilter(t *testing.T) {
	tests := []struct {
		name   string
		params []Gamesync
		combos [][]uint32
		forced bool
	}{
		{
			name:   "no params",
			combos: [][]uint32{{11, 21}, {11, 20}, {12, 21}, {12, 20}},
		},
		{
			name:   "fixed to a silencing value",
			params: []Gamesync{{Kind: State, Group: 1, Value: 11}},
			combos: [][]uint32{{11, 21}, {11, 20}},
			forced: true,
		},
		{
			name:   "fixed to a value that silences nothing",
			params: []Gamesync{{Kind: State, Group: 1, Value: 15}},
			combos: [][]uint32{{21}, {20}},
			forced: true,
		},
		{
			name:   "any value",
			params: []Gamesync{{Kind: State, Group: 1, Value: 0}},
			combos: [][]uint32{{11, 21}, {11, 20}, {12, 21}, {12, 20}},
		},
		{
			name:   "switch of the same id",
			params: []Gamesync{{Kind: Switch, Group: 1, Value: 11}},
			combos: [][]uint32{{11, 21}, {11, 20}, {12, 21}, {12, 20}},
		},
		{
			name: "newest value of a stack",
			params: []Gamesync{
				{Kind: State, Group: 2, Value: 21},
				{Kind: State, Group: 2, Value: 20},
			},
			combos: [][]uint32{{11, 20}, {12, 20}},
			forced: true,
		},
		{
			name: "every group fixed elsewhere",
			params: []Gamesync{
				{Kind: State, Group: 1, Value: 15},
				{Kind: State, Group: 2, Value: 25},
			},
			forced: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := silencePaths()
			p := NewParams()
			p.Adds(tt.params)
			before := p.Gamesyncs()

			s.Filter(p)
			assert.Equal(t, tt.forced, s.Forced())
			assert.Equal(t, before, p.Gamesyncs(), "params are not consumed")
			assert.Zero(t, p.Missing())

			var got [][]uint32
			for _, c := range s.Combos() {
				var values []uint32
				for _, it := range c.Items() {
					values = append(values, it.Value)
				}
				got = append(got, values)
			}
			assert.Equal(t, tt.combos, got)
			assert.Equal(t, len(tt.combos) == 0, s.Empty())
		})
	}
}

func TestParamsCurrent(t *testing.T) {
	p := NewParams()
	_, ok := p.Current(State, 1)
	assert.False(t, ok)

	p.Add(Gamesync{Kind: State, Group: 1, Value: 2})
	p.Add(Gamesync{Kind: State, Group: 1, Value: 3})

	v, ok := p.Current(State, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(3), v)

	v, ok = p.Value(State, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(3), v, "current is the next value read")

	v, _ = p.Current(State, 1)
	assert.Equal(t, uint32(2), v)

	var none *Params
	_, ok = none.Current(State, 1)
	assert.False(t, ok)
}
