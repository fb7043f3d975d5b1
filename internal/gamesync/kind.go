package gamesync

import "fmt"

// Kind distinguishes switches (per game object) from states (global).
type Kind int

const (
	Switch Kind = 0
	State  Kind = 1
)

func (k Kind) String() string {
	switch k {
	case Switch:
		return "SW"
	case State:
		return "ST"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Key identifies one variable. A switch and a state may share a group id.
type Key struct {
	Kind  Kind
	Group uint32
}

// Gamesync is one variable set to one value. Value 0 means "any".
type Gamesync struct {
	Kind  Kind
	Group uint32
	Value uint32
}

func (g Gamesync) Key() Key {
	return Key{Kind: g.Kind, Group: g.Group}
}

func (g Gamesync) String() string {
	return fmt.Sprintf("%s %d=%d", g.Kind, g.Group, g.Value)
}
