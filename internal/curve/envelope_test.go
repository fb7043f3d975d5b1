package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/ir"
)

func point(time, value float64, interp int) ir.AutomationPoint {
	return ir.AutomationPoint{Time: time, Value: value, Interp: interp}
}

func TestNewEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		typ     int
		p1, p2  ir.AutomationPoint
		version int
		want    Envelope
		usable  bool
	}{
		{
			name: "volume fade-in", typ: 0, version: 135,
			p1: point(0, -1, InterpLinear), p2: point(2, 0, InterpLinear),
			want: Envelope{Vol1: 0, Vol2: 1, Shape: 'T', Time1: 0, Time2: 2}, usable: true,
		},
		{
			name: "fade-out uses mirrored shape", typ: 4, version: 135,
			p1: point(1, 1, InterpSine), p2: point(3, 0, InterpLinear),
			want: Envelope{Vol1: 1, Vol2: 0, Shape: 'p', Time1: 1, Time2: 2}, usable: true,
		},
		{
			name: "constant holds first value", typ: 0, version: 135,
			p1: point(0, -0.5, InterpConstant), p2: point(1, 0, InterpLinear),
			want: Envelope{Vol1: 0.5, Vol2: 0.5, Shape: 'T', Time1: 0, Time2: 1}, usable: true,
		},
		{
			name: "unknown interpolation", typ: 0, version: 135,
			p1: point(0, -1, 12), p2: point(1, 0, InterpLinear),
			want: Envelope{Vol1: 0, Vol2: 1, Shape: '{', Time1: 0, Time2: 1}, usable: true,
		},
		{
			name: "negative times clamp", typ: 0, version: 135,
			p1: point(-0.001, 0, InterpExp3), p2: point(-0.002, -1, InterpLinear),
			want: Envelope{Vol1: 1, Vol2: 0, Shape: 'L', Time1: 0, Time2: 0}, usable: true,
		},
		{
			name: "pure delay", typ: 0, version: 135,
			p1: point(0, 0, InterpLinear), p2: point(1, 0, InterpLinear),
		},
		{
			name: "low-pass ignored", typ: 1, version: 135,
			p1: point(0, 0, InterpLinear), p2: point(1, 1, InterpLinear),
		},
		{
			name: "high-pass ignored in new banks", typ: 2, version: 135,
			p1: point(0, 0, InterpLinear), p2: point(1, 1, InterpLinear),
		},
		{
			name: "fade-in type in old banks", typ: 2, version: 88,
			p1: point(0, 0, InterpLinear), p2: point(1, 1, InterpLinear),
			want: Envelope{Vol1: 0, Vol2: 1, Shape: 'T', Time1: 0, Time2: 1}, usable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, ok := NewEnvelope(tt.typ, tt.p1, tt.p2, tt.version)
			require.Equal(t, tt.usable, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.want.Vol1, env.Vol1, 1e-9)
			assert.InDelta(t, tt.want.Vol2, env.Vol2, 1e-9)
			assert.Equal(t, string(tt.want.Shape), string(env.Shape))
			assert.InDelta(t, tt.want.Time1, env.Time1, 1e-9)
			assert.InDelta(t, tt.want.Time2, env.Time2, 1e-9)
		})
	}
}

func TestNewEnvelopeOldDecibels(t *testing.T) {
	env, ok := NewEnvelope(0, point(0, 0, InterpLinear), point(1, -20, InterpLinear), 65)
	require.True(t, ok)
	assert.InDelta(t, 1.0, env.Vol1, 1e-9)
	assert.InDelta(t, 0.1, env.Vol2, 1e-9)
	assert.Equal(t, byte('T'), env.Shape)
}

func TestEnvelopes(t *testing.T) {
	sound := &ir.Sound{
		Source: &ir.Source{TID: 1, Version: 135},
		Automations: []ir.Automation{
			{Type: 0, Points: []ir.AutomationPoint{
				point(0, -1, InterpLinear),
				point(1, 0, InterpLinear),
				point(2, 0, InterpLinear),
				point(3, -1, InterpLinear),
			}},
			{Type: 1, Points: []ir.AutomationPoint{point(0, 0, 4), point(1, 1, 4)}},
		},
	}

	envs, err := Envelopes(sound)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, 0.0, envs[0].Time1)
	assert.Equal(t, 2.0, envs[1].Time1)

	Pad(envs, 0.5)
	assert.Equal(t, 0.5, envs[0].Time1)
	assert.Equal(t, 2.5, envs[1].Time1)
}

func TestEnvelopesWithoutSource(t *testing.T) {
	_, err := Envelopes(&ir.Sound{Automations: []ir.Automation{{Type: 0}}})
	require.Error(t, err)
	assert.True(t, IsError(err, ErrCodeNoSource))

	envs, err := Envelopes(&ir.Sound{})
	require.NoError(t, err)
	assert.Empty(t, envs)

	envs, err = Envelopes(nil)
	require.NoError(t, err)
	assert.Empty(t, envs)
}
