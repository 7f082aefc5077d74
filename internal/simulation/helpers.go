package simulation

import (
	"cmp"
	"slices"

	"github.com/dda-sim/dda/internal/agent"
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/recorder"
)

// Traversal is one agent's trip from activation to retirement, rebuilt from
// the observation history.
type Traversal struct {
	AgentID   int
	Start     int   // first tick observed traveling
	End       int   // first tick observed retired again, or -1 if still out
	Positions []int // positions observed while traveling
}

// Complete reports whether the agent retired before the history ended.
func (tr Traversal) Complete() bool { return tr.End >= 0 }

// Last returns the final position observed while traveling.
func (tr Traversal) Last() int { return tr.Positions[len(tr.Positions)-1] }

// HeadingTowardB reports whether the trip started on the loc_a side.
func (tr Traversal) HeadingTowardB() bool { return tr.Positions[0] < constants.LocMid }

// Traversals rebuilds every agent trip in history, ordered by start tick and
// then by agent id.
func Traversals(history []recorder.Observation) []Traversal {
	open := make(map[int]*Traversal)
	var out []Traversal
	var done []*Traversal

	for _, obs := range history {
		for _, a := range obs.Agents {
			tr, traveling := open[a.ID]
			switch {
			case a.State == agent.StateTraveling && !traveling:
				open[a.ID] = &Traversal{AgentID: a.ID, Start: obs.Tick, End: -1, Positions: []int{a.Position}}
			case a.State == agent.StateTraveling:
				tr.Positions = append(tr.Positions, a.Position)
			case traveling:
				tr.End = obs.Tick
				done = append(done, tr)
				delete(open, a.ID)
			}
		}
	}
	for _, tr := range done {
		out = append(out, *tr)
	}
	for _, tr := range open {
		out = append(out, *tr)
	}
	slices.SortFunc(out, func(a, b Traversal) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.AgentID, b.AgentID)
	})
	return out
}

// StateCounts returns per-tick state tallies of the history.
func StateCounts(history []recorder.Observation) []recorder.StateCount {
	out := make([]recorder.StateCount, len(history))
	for i, obs := range history {
		out[i] = recorder.CountStates(obs)
	}
	return out
}
