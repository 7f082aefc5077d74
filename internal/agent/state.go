package agent

import "github.com/dda-sim/dda/internal/constants"

// State is the lifecycle tag of an agent.
type State string

const (
	// StateRetired agents wait in the graveyard until they are activated.
	StateRetired State = "retired"

	// StateTraveling agents are walking the street between an endpoint and
	// the midpoint, or from the midpoint to the far endpoint.
	StateTraveling State = "traveling"
)

// Valid returns true if the state is a recognized value.
func (s State) Valid() bool {
	switch s {
	case StateRetired, StateTraveling:
		return true
	}
	return false
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Direction is the heading of a traveling agent.
type Direction string

const (
	// DirectionNone is the heading of a retired agent.
	DirectionNone Direction = ""

	// TowardB agents start at loc_a and head for loc_b.
	TowardB Direction = "toward_b"

	// TowardA agents start at loc_b and head for loc_a.
	TowardA Direction = "toward_a"
)

// Valid returns true if the direction is a heading a traveling agent can take.
func (d Direction) Valid() bool {
	return d == TowardA || d == TowardB
}

// Origin is the endpoint an agent with this heading starts from.
func (d Direction) Origin() int {
	if d == TowardA {
		return constants.LocB
	}
	return constants.LocA
}

// Destination is the far endpoint an agent with this heading walks to.
func (d Direction) Destination() int {
	if d == TowardA {
		return constants.LocA
	}
	return constants.LocB
}

// stride is the signed one-cell step. The midpoint lies between origin and
// destination, so the stride never changes during a traversal.
func (d Direction) stride() int {
	if d == TowardA {
		return -1
	}
	return 1
}

// ExitReason tells why a traveling agent retired.
type ExitReason string

const (
	// ExitBleedout means the agent left at the midpoint.
	ExitBleedout ExitReason = "bleedout"

	// ExitCompleted means the agent reached the far endpoint.
	ExitCompleted ExitReason = "completed"
)
