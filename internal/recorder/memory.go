package recorder

import (
	"github.com/dda-sim/dda/internal/agent"
)

// Memory keeps the full observation history in memory.
type Memory struct {
	history []Observation
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{history: make([]Observation, 0, 64)}
}

// Record appends a copy of obs.
func (m *Memory) Record(obs Observation) error {
	agents := make([]AgentObservation, len(obs.Agents))
	copy(agents, obs.Agents)
	obs.Agents = agents
	m.history = append(m.history, obs)
	return nil
}

// Len returns the number of recorded ticks.
func (m *Memory) Len() int {
	return len(m.history)
}

// Observations returns the recorded history, oldest first. The slice is
// shared with the recorder and must not be modified.
func (m *Memory) Observations() []Observation {
	return m.history
}

// At returns the observation for a tick.
func (m *Memory) At(tick int) (Observation, bool) {
	// Ticks are recorded contiguously from zero, so try the direct index
	// before scanning.
	if tick >= 0 && tick < len(m.history) && m.history[tick].Tick == tick {
		return m.history[tick], true
	}
	for _, obs := range m.history {
		if obs.Tick == tick {
			return obs, true
		}
	}
	return Observation{}, false
}

// Last returns the most recent observation.
func (m *Memory) Last() (Observation, bool) {
	if len(m.history) == 0 {
		return Observation{}, false
	}
	return m.history[len(m.history)-1], true
}

// ModelVars returns the model-level variables as rows, one per tick.
func (m *Memory) ModelVars() []ModelRow {
	rows := make([]ModelRow, len(m.history))
	for i, obs := range m.history {
		rows[i] = ModelRow{Tick: obs.Tick, BleedoutRate: obs.BleedoutRate}
	}
	return rows
}

// AgentVars returns the agent-level variables as rows, one per agent per tick.
func (m *Memory) AgentVars() []AgentRow {
	n := 0
	for _, obs := range m.history {
		n += len(obs.Agents)
	}
	rows := make([]AgentRow, 0, n)
	for _, obs := range m.history {
		for _, a := range obs.Agents {
			rows = append(rows, AgentRow{
				Tick:     obs.Tick,
				AgentID:  a.ID,
				Position: a.Position,
				State:    a.State,
			})
		}
	}
	return rows
}

// LocationHistogram counts agents per corridor cell at a tick. The histogram
// has width cells; positions outside it are ignored.
func (m *Memory) LocationHistogram(tick, width int) ([]int, bool) {
	obs, ok := m.At(tick)
	if !ok {
		return nil, false
	}
	return Histogram(obs, width), true
}

// StateCounts returns the state distribution of every recorded tick.
func (m *Memory) StateCounts() []StateCount {
	counts := make([]StateCount, len(m.history))
	for i, obs := range m.history {
		counts[i] = CountStates(obs)
	}
	return counts
}

// Histogram counts the agents of one observation per corridor cell.
func Histogram(obs Observation, width int) []int {
	hist := make([]int, width)
	for _, a := range obs.Agents {
		if a.Position >= 0 && a.Position < width {
			hist[a.Position]++
		}
	}
	return hist
}

// CountStates tallies the agent states of one observation.
func CountStates(obs Observation) StateCount {
	c := StateCount{Tick: obs.Tick}
	for _, a := range obs.Agents {
		switch a.State {
		case agent.StateRetired:
			c.Retired++
		case agent.StateTraveling:
			c.Traveling++
		}
	}
	return c
}
