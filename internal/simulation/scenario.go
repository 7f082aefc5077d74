package simulation

import (
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/model"
	"github.com/dda-sim/dda/internal/recorder"
)

// Scenario defines a single simulation run.
type Scenario struct {
	Name         string
	Agents       int
	Iterations   int
	BleedoutRate *float64 // nil draws the default rate
	Seed         uint64
	Origins      constants.OriginPolicy

	// BeforeStep, when non-nil, is called before every Step with the tick
	// about to run. Use this to change the bleedout rate mid-run.
	BeforeStep func(tick int, m *model.Model)
}

// SimulationResult captures a finished (or aborted) run.
type SimulationResult struct {
	Scenario Scenario
	Model    *model.Model
	History  []recorder.Observation
	Store    *recorder.SQLite
	Err      error
}

// Final returns the last recorded observation.
func (r SimulationResult) Final() recorder.Observation {
	if len(r.History) == 0 {
		return recorder.Observation{}
	}
	return r.History[len(r.History)-1]
}

// Rate is shorthand for a bleedout rate pointer.
func Rate(r float64) *float64 {
	return &r
}
