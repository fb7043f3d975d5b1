package curve

import (
	"math"

	"github.com/roach88/txtpgen/internal/ir"
)

// NewScalingVersion is the first bank version using the current scaling ids.
const NewScalingVersion = 72

// Interpolation ids shared by RTPC points and automations.
const (
	InterpLog3 = iota
	InterpSine
	InterpLog1
	InterpInvSCurve
	InterpLinear
	InterpSCurve
	InterpExp1
	InterpSineRecip
	InterpExp3
	InterpConstant
)

// Evaluate maps x through the RTPC graph and applies the output scaling.
// Delay-bound graphs are returned in milliseconds.
func Evaluate(r ir.Rtpc, x float64) (float64, error) {
	y, err := find(r.Points, x)
	if err != nil {
		return 0, err
	}
	y, err = Scale(y, r.Scaling, r.Version)
	if err != nil {
		return 0, err
	}
	if r.Param == "InitialDelay" {
		y *= 1000.0
	}
	return y, nil
}

// Accumulate merges an RTPC result into the current property value.
func Accumulate(accum string, y float64, current *float64) (float64, error) {
	cur := ir.FloatVal(current)
	switch accum {
	case ir.AccumExclusive:
		return y, nil
	case ir.AccumAdditive, "":
		return y + cur, nil
	case ir.AccumMultiply:
		return y * cur, nil
	case ir.AccumBoolean:
		if y != 0 {
			return y, nil
		}
		return cur, nil
	}
	return 0, newError(ErrCodeUnknownAccum, "accumulation %q", accum)
}

func find(ps []ir.CurvePoint, x float64) (float64, error) {
	switch len(ps) {
	case 0:
		return 0, nil
	case 1:
		return ps[0].Y, nil
	}

	for i, p1 := range ps {
		if p1.X >= x || i+1 == len(ps) {
			return p1.Y, nil
		}
		p2 := ps[i+1]
		if p2.X <= x {
			continue
		}
		switch p1.Interp {
		case InterpLinear:
			return (p2.Y-p1.Y)*((x-p1.X)/(p2.X-p1.X)) + p1.Y, nil
		case InterpConstant:
			return p1.Y, nil
		}
		return Interpolate((x-p1.X)/(p2.X-p1.X), p1.Y, p2.Y, p1.Interp)
	}
	return ps[len(ps)-1].Y, nil
}

// Interpolate evaluates fade curve id at ratio (0..1) between from and to.
func Interpolate(ratio, from, to float64, curve int) (float64, error) {
	r := ratio
	switch curve {
	case InterpLog3:
		return (1.0-r)*(1.0-r)*(1.0-r)*(from-to) + to, nil

	case InterpSine:
		v1 := (1.5707964 * r) * (1.5707964 * r)
		v2 := (v1*-0.00018363654+0.0083063254)*v1 + -0.16664828
		v3 := v2*v1 + 0.9999966
		return v3*(1.5707964*r)*(to-from) + from, nil

	case InterpLog1:
		return (r-3.0)*r*0.5*(from-to) + from, nil

	case InterpInvSCurve:
		if r > 0.5 {
			v1 := 3.1415927 - (3.1415927 * r)
			v2 := (v1*v1*-0.00009181827+0.0041531627)*(v1*v1) + -0.083324142
			v3 := 1.0 - (v2*(v1*v1)+0.4999983)*v1
			return v3*(to-from) + from, nil
		}
		v1 := (3.1415927 * r) * (3.1415927 * r)
		v2 := (v1*-0.00009181827+0.0041531627)*v1 + -0.083324142
		v3 := (v2*v1 + 0.4999983) * (3.1415927 * r)
		return v3*(to-from) + from, nil

	case InterpLinear:
		return (to-from)*r + from, nil

	case InterpSCurve:
		v1 := (3.1415927 * r) * (3.1415927 * r)
		v2 := (v1*0.00048483399+-0.01961384)*v1 + 0.24767479
		v3 := v2*v1 + 0.00069670216
		return v3*(to-from) + from, nil

	case InterpExp1:
		return (r+1.0)*r*0.5*(to-from) + from, nil

	case InterpSineRecip:
		v1 := (1.5707964 * r) * (1.5707964 * r)
		v2 := (v1*-0.0012712094+0.04148775)*v1 + -0.49991244
		v3 := v2*v1 + 0.99999332
		return v3*(from-to) + to, nil

	case InterpExp3:
		return r*r*r*(to-from) + from, nil
	}
	return 0, newError(ErrCodeUnknownInterpolation, "interpolation %d", curve)
}

// Scale applies the graph output scaling selected by id and bank version.
func Scale(v float64, scaling, version int) (float64, error) {
	if version < NewScalingVersion {
		switch scaling {
		case 0:
			return v, nil
		case 2, 4:
			return linearMutingToDB96(v), nil
		case 3:
			return linearToFrequency(v), nil
		}
		return 0, newError(ErrCodeUnknownScaling, "scaling %d (version %d)", scaling, version)
	}

	switch scaling {
	case 0:
		return v, nil
	case 2:
		return scalingFromLinDB(v), nil
	case 3:
		return math.Pow(10.0, v/20.0), nil
	case 4:
		return math.Pow(10.0, v*0.050000001), nil
	}
	return 0, newError(ErrCodeUnknownScaling, "scaling %d (version %d)", scaling, version)
}

func realToDB(v float64) float64 {
	return math.Log10(v) * 20.0
}

func linearMutingToDB96(v float64) float64 {
	const limit = 96.300003
	switch {
	case v == 0:
		return v
	case v >= limit:
		return limit
	case v <= -limit:
		return -limit
	case v > 0:
		return -realToDB((96.3 - v) / 96.3)
	}
	return realToDB((v + 96.3) / 96.3)
}

func linearToFrequency(v float64) float64 {
	switch {
	case v >= 20000.0:
		return 20000.0
	case v <= 20.0:
		return 20.0
	}
	return math.Pow(10.0, (v-20.0)/6660.0+1.301029995663981)
}

func scalingFromLinDB(v float64) float64 {
	v = math.Max(-1.0, math.Min(1.0, v))
	if v == -1.0 {
		return -96.3
	}
	return math.Log10(v+1.0) * 20.0
}
