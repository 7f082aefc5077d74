package model

import "github.com/dda-sim/dda/internal/recorder"

// Summary is the end-of-run report shared by the CLI and the tool server.
type Summary struct {
	RunID        string              `json:"run_id"`
	Seed         uint64              `json:"seed"`
	Agents       int                 `json:"agents"`
	Iterations   int                 `json:"iterations"`
	Steps        int                 `json:"steps"`
	Finished     bool                `json:"finished"`
	BleedoutRate float64             `json:"bleedout_rate"`
	Arrivals     []int               `json:"arrivals"`
	Stats        Stats               `json:"stats"`
	Final        recorder.StateCount `json:"final"`
	Occupancy    []int               `json:"occupancy"`
}

// Summary reports the model's current state.
func (m *Model) Summary() Summary {
	return Summary{
		RunID:        m.runID,
		Seed:         m.seed,
		Agents:       len(m.sched.Agents()),
		Iterations:   m.iterations,
		Steps:        m.sched.Steps(),
		Finished:     !m.running,
		BleedoutRate: m.rate,
		Arrivals:     m.Arrivals(),
		Stats:        m.stats,
		Final:        m.StateCounts(),
		Occupancy:    m.Occupancy(),
	}
}
