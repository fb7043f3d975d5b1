package ir

// Loop values with special meaning. Values above LoopNone are play counts.
const (
	LoopInfinite = 0
	LoopNone     = 1
)

// Config holds the playback properties an object contributes to the
// playlist node built from it.
type Config struct {
	Loop       *int
	Volume     *float64
	MakeupGain *float64
	Pitch      *float64
	Delay      *float64
	IDelay     *float64

	// Crossfaded marks volumes driven by RTPCs or state chunks, so the
	// output may be silenced or faded at runtime.
	Crossfaded bool

	// Segment markers.
	Duration *float64
	Entry    *float64
	Exit     *float64

	// SilenceStates lists state values that silence the object when active.
	SilenceStates []StateRef

	// Rtpcs lists volume-bound curves.
	Rtpcs []Rtpc
}

// StateRef is a (state group, state value) pair.
type StateRef struct {
	Group uint32
	Value uint32
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	out := *c
	out.Loop = cloneInt(c.Loop)
	out.Volume = cloneFloat(c.Volume)
	out.MakeupGain = cloneFloat(c.MakeupGain)
	out.Pitch = cloneFloat(c.Pitch)
	out.Delay = cloneFloat(c.Delay)
	out.IDelay = cloneFloat(c.IDelay)
	out.Duration = cloneFloat(c.Duration)
	out.Entry = cloneFloat(c.Entry)
	out.Exit = cloneFloat(c.Exit)
	out.SilenceStates = append([]StateRef(nil), c.SilenceStates...)
	out.Rtpcs = append([]Rtpc(nil), c.Rtpcs...)
	return &out
}

// IsSegment reports whether the config carries segment markers.
func (c *Config) IsSegment() bool {
	return c != nil && c.Duration != nil
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// IntVal returns *p or 0.
func IntVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FloatVal returns *p or 0.
func FloatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// IsSet reports whether p holds a non-zero value.
func IsSet(p *float64) bool {
	return p != nil && *p != 0
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
