package ir

// CurvePoint is one control point of an RTPC graph.
type CurvePoint struct {
	X      float64
	Y      float64
	Interp int
}

// Accumulation modes of an RTPC result onto the current property value.
const (
	AccumExclusive = "exclusive"
	AccumAdditive  = "additive"
	AccumMultiply  = "multiply"
	AccumBoolean   = "boolean"
)

// Rtpc binds a game parameter to an object property through a curve.
type Rtpc struct {
	// ID is the game parameter id.
	ID uint32
	// Param is the bound property name (Volume, MakeUpGain, InitialDelay...).
	Param   string
	Accum   string
	Scaling int
	Version int
	Points  []CurvePoint
}

// MinMax returns the X range of the curve.
func (r Rtpc) MinMax() (float64, float64) {
	if len(r.Points) == 0 {
		return 0, 0
	}
	return r.Points[0].X, r.Points[len(r.Points)-1].X
}

// AutomationPoint is one point of a clip automation. Time is in seconds.
type AutomationPoint struct {
	Time   float64
	Value  float64
	Interp int
}

// Automation is a per-clip curve (volume, filters, fades).
type Automation struct {
	Type   int
	Points []AutomationPoint
}
