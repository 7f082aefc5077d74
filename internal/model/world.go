package model

import (
	"github.com/dda-sim/dda/internal/agent"
	"github.com/dda-sim/dda/internal/corridor"
	"github.com/dda-sim/dda/internal/logging"
)

// Corridor implements agent.World.
func (m *Model) Corridor() *corridor.Corridor {
	return m.grid
}

// BleedOut implements agent.World with a Bernoulli draw at the current rate.
func (m *Model) BleedOut() bool {
	return m.rng.Float64() < m.rate
}

// Exited implements agent.World.
func (m *Model) Exited(a *agent.Agent, reason agent.ExitReason) {
	switch reason {
	case agent.ExitBleedout:
		m.stats.Bleedouts++
	case agent.ExitCompleted:
		m.stats.Completions++
	}
	m.events.Log(logging.Event{
		Kind:  logging.EventExit,
		RunID: m.runID,
		Tick:  m.sched.Steps(),
		Attrs: map[string]any{"agent": a.ID(), "reason": string(reason)},
	})
}
