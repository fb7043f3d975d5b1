package curve

import (
	"math"

	"github.com/roach88/txtpgen/internal/ir"
)

// Version thresholds for automation data.
const (
	// NewVolumeVersion stores volume automations as -1..+1 instead of dB.
	NewVolumeVersion = 70
	// NewTypeVersion inserts a high-pass filter type before the fades.
	NewTypeVersion = 112
)

// Shapes used for fade-ins. Curves rise early or late, so a fade-out needs
// the mirrored shape of the same engine curve.
var fadeInShapes = map[int]byte{
	InterpLog3:      'L',
	InterpSine:      'P',
	InterpLog1:      'P',
	InterpInvSCurve: 'H',
	InterpLinear:    'T',
	InterpSCurve:    'Q',
	InterpExp1:      'p',
	InterpSineRecip: 'p',
	InterpExp3:      'E',
	InterpConstant:  'T',
}

var fadeOutShapes = map[int]byte{
	InterpLog3:      'E',
	InterpSine:      'p',
	InterpLog1:      'p',
	InterpInvSCurve: 'Q',
	InterpLinear:    'T',
	InterpSCurve:    'H',
	InterpExp1:      'P',
	InterpSineRecip: 'P',
	InterpExp3:      'L',
	InterpConstant:  'T',
}

// Envelope is one volume segment: from Vol1 to Vol2 over Time2 seconds,
// starting at Time1.
type Envelope struct {
	Vol1  float64
	Vol2  float64
	Shape byte
	Time1 float64
	Time2 float64
}

// NewEnvelope converts a pair of consecutive automation points. It returns
// false when the pair is not a usable volume change.
func NewEnvelope(automationType int, p1, p2 ir.AutomationPoint, version int) (Envelope, bool) {
	if ignorableType(automationType, version) {
		return Envelope{}, false
	}

	vol1, vol2 := p1.Value, p2.Value
	// constant on the first point holds its value over the whole segment
	if p1.Interp == InterpConstant {
		vol2 = vol1
	}

	switch {
	case version < NewVolumeVersion:
		vol1 = math.Pow(10.0, vol1/20.0)
		vol2 = math.Pow(10.0, vol2/20.0)
	case automationType == 0:
		vol1 += 1.0
		vol2 += 1.0
	}

	// pure delays
	if vol1 == 1.0 && vol2 == 1.0 {
		return Envelope{}, false
	}

	shapes := fadeOutShapes
	if vol1 < vol2 {
		shapes = fadeInShapes
	}
	shape, ok := shapes[p1.Interp]
	if !ok {
		shape = '{'
	}

	return Envelope{
		Vol1:  vol1,
		Vol2:  vol2,
		Shape: shape,
		Time1: math.Max(0, p1.Time),
		Time2: math.Max(0, p2.Time-p1.Time),
	}, true
}

func ignorableType(automationType, version int) bool {
	if version < NewTypeVersion {
		return automationType == 1
	}
	return automationType == 1 || automationType == 2
}

// Envelopes builds every usable envelope of a sound, in automation and
// point order. Automations on a sound without a source are an error.
func Envelopes(sound *ir.Sound) ([]Envelope, error) {
	if sound == nil {
		return nil, nil
	}
	if sound.Source == nil {
		if len(sound.Automations) > 0 {
			return nil, newError(ErrCodeNoSource, "automations without source on %d", sound.NodeID)
		}
		return nil, nil
	}
	version := sound.Source.Version
	if len(sound.Automations) == 0 || version == 0 {
		return nil, nil
	}

	var out []Envelope
	for _, a := range sound.Automations {
		for i := 0; i+1 < len(a.Points); i++ {
			env, ok := NewEnvelope(a.Type, a.Points[i], a.Points[i+1], version)
			if !ok {
				continue
			}
			out = append(out, env)
		}
	}
	return out, nil
}

// Pad shifts every envelope start by seconds.
func Pad(envs []Envelope, seconds float64) {
	for i := range envs {
		envs[i].Time1 += seconds
	}
}
