package gamesync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Params holds the variable values active while walking a tree. Each key
// maps to a stack: reading pops the newest value, which simulates a
// variable changing while the tree plays. Manual params (set by the user)
// keep their last value instead of running dry.
type Params struct {
	elems   map[Key][]uint32
	keys    []Key
	set     bool
	manual  bool
	missing int

	vars    map[uint32]Gamevar
	varsAll *Gamevar
}

// NewParams returns empty params.
func NewParams() *Params {
	return &Params{elems: make(map[Key][]uint32)}
}

// Add pushes a value.
func (p *Params) Add(g Gamesync) {
	p.set = true
	key := g.Key()
	if _, ok := p.elems[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.elems[key] = append(p.elems[key], g.Value)
}

// Adds pushes values in order.
func (p *Params) Adds(gs []Gamesync) {
	for _, g := range gs {
		p.Add(g)
	}
}

// Value returns the current value of a variable. A variable that was never
// set returns false; this happens when several branches play at once and
// only one path is active.
func (p *Params) Value(kind Kind, group uint32) (uint32, bool) {
	key := Key{Kind: kind, Group: group}
	values := p.elems[key]
	if len(values) == 0 {
		p.missing++
		return 0, false
	}
	if p.manual && len(values) == 1 {
		return values[0], true
	}
	v := values[len(values)-1]
	p.elems[key] = values[:len(values)-1]
	return v, true
}

// Current returns the value Value would read next, without consuming it.
func (p *Params) Current(kind Kind, group uint32) (uint32, bool) {
	if p == nil {
		return 0, false
	}
	values := p.elems[Key{Kind: kind, Group: group}]
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

// Empty reports whether nothing was ever set. Manual params are never
// empty, even with no values: they mean "nothing is set".
func (p *Params) Empty() bool {
	return p == nil || !p.set
}

// Manual reports whether the params came from the user.
func (p *Params) Manual() bool {
	return p != nil && p.manual
}

// Missing counts reads of unset variables.
func (p *Params) Missing() int {
	return p.missing
}

// Gamesyncs lists the remaining values in insertion order.
func (p *Params) Gamesyncs() []Gamesync {
	var out []Gamesync
	for _, k := range p.keys {
		for _, v := range p.elems[k] {
			out = append(out, Gamesync{Kind: k.Kind, Group: k.Group, Value: v})
		}
	}
	return out
}

// Clone returns an independent copy, so a stack can be consumed once per walk.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	out := NewParams()
	out.set = p.set
	out.manual = p.manual
	out.keys = append([]Key(nil), p.keys...)
	for k, v := range p.elems {
		out.elems[k] = append([]uint32(nil), v...)
	}
	if p.vars != nil {
		out.vars = make(map[uint32]Gamevar, len(p.vars))
		for k, v := range p.vars {
			out.vars[k] = v
		}
	}
	if p.varsAll != nil {
		all := *p.varsAll
		out.varsAll = &all
	}
	return out
}

// Gamevar is a game parameter value used to evaluate RTPC curves.
type Gamevar struct {
	ID   uint32
	Name string
	// Value is used unless one of Min, Max or Default is set.
	Value   float64
	Min     bool
	Max     bool
	Default bool
}

// SetGamevar sets a game parameter. ID 0 applies to every parameter.
func (p *Params) SetGamevar(v Gamevar) {
	if v.ID == 0 {
		p.varsAll = &v
		return
	}
	if p.vars == nil {
		p.vars = make(map[uint32]Gamevar)
	}
	p.vars[v.ID] = v
}

// Gamevar returns the value set for a game parameter.
func (p *Params) Gamevar(id uint32) (Gamevar, bool) {
	if p == nil {
		return Gamevar{}, false
	}
	if v, ok := p.vars[id]; ok {
		return v, true
	}
	if p.varsAll != nil {
		v := *p.varsAll
		v.ID = id
		return v, true
	}
	return Gamevar{}, false
}

// HasGamevars reports whether any game parameter is set.
func (p *Params) HasGamevars() bool {
	return p != nil && (len(p.vars) > 0 || p.varsAll != nil)
}

// ParseError reports a malformed parameter string.
type ParseError struct {
	Input   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("params %q at %d: %s", e.Input, e.Pos, e.Message)
}

var paramPattern = regexp.MustCompile(`\(([^()=]+)=([^()]*)\)|\[([^\[\]=]+)=([^\[\]]*)\]|\{([^{}=]+)=([^{}]*)\}`)

// Parse reads manual params like "(bgm=battle)[weapon=sword]{hp=50}".
// Parenthesis set states, brackets switches and braces game parameters.
// Names are hashed unless numeric; "-" means any value. For game
// parameters the key "*" applies to all and the value may be "min", "max"
// or "-" (curve default). Repeated keys push a stack of values.
func Parse(s string) (*Params, error) {
	p := NewParams()
	p.set = true
	p.manual = true

	pos := 0
	for _, m := range paramPattern.FindAllStringSubmatchIndex(s, -1) {
		if gap := strings.TrimSpace(s[pos:m[0]]); gap != "" {
			return nil, &ParseError{Input: s, Pos: pos, Message: fmt.Sprintf("unexpected %q", gap)}
		}
		pos = m[1]

		switch {
		case m[2] >= 0:
			p.Add(Gamesync{Kind: State, Group: ParseID(s[m[2]:m[3]]), Value: parseValue(s[m[4]:m[5]])})
		case m[6] >= 0:
			p.Add(Gamesync{Kind: Switch, Group: ParseID(s[m[6]:m[7]]), Value: parseValue(s[m[8]:m[9]])})
		default:
			v, err := parseGamevar(s[m[10]:m[11]], s[m[12]:m[13]])
			if err != nil {
				return nil, &ParseError{Input: s, Pos: m[0], Message: err.Error()}
			}
			p.SetGamevar(v)
		}
	}
	if gap := strings.TrimSpace(s[pos:]); gap != "" {
		return nil, &ParseError{Input: s, Pos: pos, Message: fmt.Sprintf("unexpected %q", gap)}
	}
	return p, nil
}

func parseValue(s string) uint32 {
	if s == "-" || s == "" {
		return 0
	}
	return ParseID(s)
}

func parseGamevar(key, val string) (Gamevar, error) {
	var v Gamevar
	switch {
	case key == "*":
	case isNumeric(key):
		id, _ := strconv.ParseUint(key, 10, 32)
		v.ID = uint32(id)
	default:
		v.ID = Hash(key)
		v.Name = key
	}

	switch val {
	case "min":
		v.Min = true
	case "max":
		v.Max = true
	case "-":
		v.Default = true
	default:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return Gamevar{}, fmt.Errorf("game parameter %s: invalid value %q", key, val)
		}
		v.Value = f
	}
	return v, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}
