// Package agent implements the per-agent state machine: activation at an
// endpoint, one-cell movement per tick, the midpoint bleedout trial, and
// retirement back to the graveyard.
package agent

import (
	"errors"
	"fmt"

	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/corridor"
)

// ErrNotRetired is the panic value (wrapped) raised when a traveling agent is
// activated again. It signals a bug in the caller, not a runtime condition.
var ErrNotRetired = errors.New("agent is not retired")

// World is what an agent needs from the model it lives in.
type World interface {
	// Corridor is the grid the agent is placed on.
	Corridor() *corridor.Corridor

	// BleedOut draws the midpoint Bernoulli trial. True means the agent
	// leaves now.
	BleedOut() bool

	// Exited is told whenever a traveling agent retires.
	Exited(a *Agent, reason ExitReason)
}

// Agent is a single member of the population. Agents are created once, start
// retired in the graveyard, and are recycled for the whole run.
type Agent struct {
	id        int
	pos       int
	state     State
	dir       Direction
	passedMid bool
	world     World
}

// New creates a retired agent and places it in the world's graveyard.
func New(id int, w World) *Agent {
	a := &Agent{
		id:    id,
		pos:   constants.Graveyard,
		state: StateRetired,
		world: w,
	}
	w.Corridor().Place(id, constants.Graveyard)
	return a
}

// ID returns the agent's identity, stable for its lifetime.
func (a *Agent) ID() int { return a.id }

// Pos returns the corridor cell the agent occupies.
func (a *Agent) Pos() int { return a.pos }

// State returns the agent's lifecycle state.
func (a *Agent) State() State { return a.state }

// Direction returns the heading of a traveling agent, or DirectionNone.
func (a *Agent) Direction() Direction { return a.dir }

// PassedMidpoint reports whether the agent survived the midpoint trial on
// its current traversal.
func (a *Agent) PassedMidpoint() bool { return a.passedMid }

// Activate puts a retired agent on the street at the origin endpoint of dir.
// Activating an agent that is not retired panics with ErrNotRetired.
func (a *Agent) Activate(dir Direction) {
	if a.state != StateRetired {
		panic(fmt.Errorf("%w: agent %d is %s", ErrNotRetired, a.id, a.state))
	}
	if !dir.Valid() {
		panic(fmt.Sprintf("agent: invalid direction %q for agent %d", dir, a.id))
	}
	a.state = StateTraveling
	a.dir = dir
	a.passedMid = false
	a.moveTo(dir.Origin())
}

// Advance performs one tick of the state machine. Retired agents do nothing.
//
// A traveling agent standing on its destination retires. One standing on the
// midpoint for the first time draws the bleedout trial: it either retires or
// marks the midpoint as passed and stays put for this tick. Otherwise it
// steps one cell along its heading.
func (a *Agent) Advance() {
	if a.state != StateTraveling {
		return
	}

	switch {
	case a.pos == a.dir.Destination():
		a.retire(ExitCompleted)
	case a.pos == constants.LocMid && !a.passedMid:
		if a.world.BleedOut() {
			a.retire(ExitBleedout)
			return
		}
		a.passedMid = true
	default:
		a.moveTo(a.pos + a.dir.stride())
	}
}

func (a *Agent) retire(reason ExitReason) {
	a.state = StateRetired
	a.dir = DirectionNone
	a.passedMid = false
	a.moveTo(constants.Graveyard)
	a.world.Exited(a, reason)
}

func (a *Agent) moveTo(pos int) {
	a.world.Corridor().Move(a.id, pos)
	a.pos = pos
}

// String implements fmt.Stringer for debug output.
func (a *Agent) String() string {
	if a.state == StateRetired {
		return fmt.Sprintf("agent %d (%s)", a.id, a.state)
	}
	return fmt.Sprintf("agent %d (%s %s at %d)", a.id, a.state, a.dir, a.pos)
}
