package model

import (
	"slices"

	"github.com/dda-sim/dda/internal/agent"
	"github.com/dda-sim/dda/internal/recorder"
)

// RunID returns the unique identifier of this run.
func (m *Model) RunID() string { return m.runID }

// Seed returns the seed every random draw of the run derives from.
func (m *Model) Seed() uint64 { return m.seed }

// Steps returns the tick counter.
func (m *Model) Steps() int { return m.sched.Steps() }

// Iterations returns the configured number of ticks.
func (m *Model) Iterations() int { return m.iterations }

// Running reports whether the model is still RUNNING.
func (m *Model) Running() bool { return m.running }

// BleedoutRate returns the current midpoint exit probability.
func (m *Model) BleedoutRate() float64 { return m.rate }

// Agents returns the population in identity order. The slice must not be
// modified.
func (m *Model) Agents() []*agent.Agent { return m.sched.Agents() }

// Arrivals returns a copy of the hourly arrival schedule.
func (m *Model) Arrivals() []int { return slices.Clone(m.arrivals) }

// Occupancy returns the number of agents in each corridor cell.
func (m *Model) Occupancy() []int { return m.grid.Occupancy() }

// Stats returns the lifecycle tallies so far.
func (m *Model) Stats() Stats { return m.stats }

// Recorder returns the recorder observations go to.
func (m *Model) Recorder() recorder.Recorder { return m.rec }

// StateCounts returns the current number of agents in each state.
func (m *Model) StateCounts() recorder.StateCount {
	c := recorder.StateCount{Tick: m.sched.Steps()}
	for _, a := range m.sched.Agents() {
		switch a.State() {
		case agent.StateRetired:
			c.Retired++
		case agent.StateTraveling:
			c.Traveling++
		}
	}
	return c
}
