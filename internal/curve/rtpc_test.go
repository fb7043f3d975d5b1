package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/txtpgen/internal/ir"
)

func TestInterpolateEndpoints(t *testing.T) {
	for curve := InterpLog3; curve <= InterpExp3; curve++ {
		from, err := Interpolate(0, 0, 1, curve)
		require.NoError(t, err)
		to, err := Interpolate(1, 0, 1, curve)
		require.NoError(t, err)

		assert.InDelta(t, 0.0, from, 2e-3, "curve %d at start", curve)
		assert.InDelta(t, 1.0, to, 2e-3, "curve %d at end", curve)
	}
}

func TestInterpolateShapes(t *testing.T) {
	v, err := Interpolate(0.5, 0, 10, InterpLinear)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	v, err = Interpolate(0.5, 0, 8, InterpExp3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = Interpolate(0.5, 0, 1, InterpExp1)
	require.NoError(t, err)
	assert.Equal(t, 0.375, v)

	_, err = Interpolate(0.5, 0, 1, InterpConstant)
	assert.True(t, IsError(err, ErrCodeUnknownInterpolation))
}

func TestEvaluate(t *testing.T) {
	linear := ir.Rtpc{Version: 135, Points: []ir.CurvePoint{
		{X: 0, Y: 0, Interp: InterpLinear},
		{X: 100, Y: 10, Interp: InterpLinear},
	}}

	tests := []struct {
		name string
		rtpc ir.Rtpc
		x    float64
		want float64
	}{
		{"inside", linear, 50, 5},
		{"below min", linear, -5, 0},
		{"above max", linear, 200, 10},
		{"empty graph", ir.Rtpc{Version: 135}, 3, 0},
		{"single point", ir.Rtpc{Version: 135, Points: []ir.CurvePoint{{X: 1, Y: 4}}}, 30, 4},
		{"constant", ir.Rtpc{Version: 135, Points: []ir.CurvePoint{
			{X: 0, Y: 3, Interp: InterpConstant}, {X: 10, Y: 7, Interp: InterpLinear},
		}}, 5, 3},
		{"eased", ir.Rtpc{Version: 135, Points: []ir.CurvePoint{
			{X: 0, Y: 0, Interp: InterpExp3}, {X: 10, Y: 8, Interp: InterpLinear},
		}}, 5, 1},
		{"initial delay to ms", ir.Rtpc{Version: 135, Param: "InitialDelay", Points: []ir.CurvePoint{{Y: 0.5}}}, 0, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.rtpc, tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScale(t *testing.T) {
	db6 := 20 * math.Log10(2)

	tests := []struct {
		name    string
		v       float64
		scaling int
		version int
		want    float64
	}{
		{"old none", 7, 0, 65, 7},
		{"old db96 zero", 0, 2, 65, 0},
		{"old db96 max", 200, 2, 65, 96.300003},
		{"old db96 min", -200, 4, 65, -96.300003},
		{"old db96 positive", 48.15, 2, 65, db6},
		{"old db96 negative", -48.15, 2, 65, -db6},
		{"old frequency low", 10, 3, 65, 20},
		{"old frequency high", 30000, 3, 65, 20000},
		{"new lin db", 1, 2, 135, db6},
		{"new lin db clamps", 2, 2, 135, db6},
		{"new lin db floor", -1, 2, 135, -96.3},
		{"new log", 20, 3, 135, 10},
		{"new db to lin", 0, 4, 135, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scale(tt.v, tt.scaling, tt.version)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}

	_, err := Scale(1, 1, 65)
	assert.True(t, IsError(err, ErrCodeUnknownScaling))
	_, err = Scale(1, 1, 135)
	assert.True(t, IsError(err, ErrCodeUnknownScaling))
	_, err = Scale(1, 9, 135)
	assert.True(t, IsError(err, ""))
}

func TestAccumulate(t *testing.T) {
	v, err := Accumulate(ir.AccumAdditive, 2, ir.Float(-3))
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)

	v, err = Accumulate(ir.AccumAdditive, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Accumulate(ir.AccumExclusive, 2, ir.Float(-3))
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Accumulate(ir.AccumMultiply, 2, ir.Float(3))
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	v, err = Accumulate(ir.AccumBoolean, 0, ir.Float(1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = Accumulate("none", 1, nil)
	assert.True(t, IsError(err, ErrCodeUnknownAccum))
}
