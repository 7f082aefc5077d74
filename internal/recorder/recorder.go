// Package recorder collects per-tick observations of a simulation run for
// offline analysis.
//
// A Recorder only ever appends. It never reads back into the model, so
// swapping or stacking recorders cannot change a run's outcome.
package recorder

import (
	"github.com/dda-sim/dda/internal/agent"
)

// AgentObservation is one agent's position and state at a tick.
type AgentObservation struct {
	ID       int         `json:"id"`
	Position int         `json:"position"`
	State    agent.State `json:"state"`
}

// Observation is everything recorded for a single tick.
type Observation struct {
	Tick         int                `json:"tick"`
	BleedoutRate float64            `json:"bleedout_rate"`
	Agents       []AgentObservation `json:"agents"`
}

// Recorder receives one Observation per tick.
type Recorder interface {
	Record(obs Observation) error
}

// ModelRow is one row of model-level variables.
type ModelRow struct {
	Tick         int     `json:"tick"`
	BleedoutRate float64 `json:"bleedout_rate"`
}

// AgentRow is one row of agent-level variables.
type AgentRow struct {
	Tick     int         `json:"tick"`
	AgentID  int         `json:"agent_id"`
	Position int         `json:"position"`
	State    agent.State `json:"state"`
}

// StateCount is the number of agents in each state at a tick.
type StateCount struct {
	Tick      int `json:"tick"`
	Retired   int `json:"retired"`
	Traveling int `json:"traveling"`
}

// Total returns the population size the counts cover.
func (c StateCount) Total() int {
	return c.Retired + c.Traveling
}

// Discard is a Recorder that keeps nothing. Use it when only the model's
// final state is wanted; the history of a large run does not fit in memory.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Observation) error { return nil }

// tee fans observations out to several recorders.
type tee []Recorder

// Tee returns a Recorder that records to every non-nil r in order, stopping
// at the first error.
func Tee(rs ...Recorder) Recorder {
	out := make(tee, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Record implements Recorder.
func (t tee) Record(obs Observation) error {
	for _, r := range t {
		if err := r.Record(obs); err != nil {
			return err
		}
	}
	return nil
}
