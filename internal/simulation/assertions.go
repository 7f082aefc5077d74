package simulation

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dda-sim/dda/internal/agent"
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/recorder"
)

// AssertNoError asserts the run finished without error.
func AssertNoError(t *testing.T, result SimulationResult) {
	t.Helper()
	if result.Err != nil {
		t.Fatalf("AssertNoError: %s: run failed: %v", result.Scenario.Name, result.Err)
	}
	if result.Model.Running() {
		t.Fatalf("AssertNoError: %s: model still running after %d steps", result.Scenario.Name, result.Model.Steps())
	}
}

// AssertObservationCount asserts one observation per tick, 0 through
// Iterations inclusive.
func AssertObservationCount(t *testing.T, result SimulationResult) {
	t.Helper()
	want := result.Scenario.Iterations + 1
	if len(result.History) != want {
		t.Errorf("AssertObservationCount: got %d observations, want %d", len(result.History), want)
	}
	for i, obs := range result.History {
		if obs.Tick != i {
			t.Errorf("AssertObservationCount: observation %d has tick %d", i, obs.Tick)
			return
		}
	}
}

// AssertPopulationConserved asserts every tick accounts for exactly the
// configured population, each agent once.
func AssertPopulationConserved(t *testing.T, result SimulationResult) {
	t.Helper()
	n := result.Scenario.Agents
	for _, obs := range result.History {
		if len(obs.Agents) != n {
			t.Errorf("AssertPopulationConserved: tick %d: %d agents, want %d", obs.Tick, len(obs.Agents), n)
			continue
		}
		seen := make(map[int]bool, n)
		for _, a := range obs.Agents {
			if seen[a.ID] {
				t.Errorf("AssertPopulationConserved: tick %d: agent %d observed twice", obs.Tick, a.ID)
			}
			seen[a.ID] = true
		}
		if c := recorder.CountStates(obs); c.Total() != n {
			t.Errorf("AssertPopulationConserved: tick %d: states cover %d agents, want %d", obs.Tick, c.Total(), n)
		}
	}
}

// AssertRetiredAtGraveyard asserts retired agents sit in the graveyard and
// traveling agents are never there.
func AssertRetiredAtGraveyard(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, obs := range result.History {
		for _, a := range obs.Agents {
			inGraveyard := a.Position == constants.Graveyard
			if (a.State == agent.StateRetired) != inGraveyard {
				t.Errorf("AssertRetiredAtGraveyard: tick %d: agent %d is %s at %d", obs.Tick, a.ID, a.State, a.Position)
				return
			}
		}
	}
}

// AssertAllRetiredAt asserts the observation at tick shows the whole
// population retired.
func AssertAllRetiredAt(t *testing.T, result SimulationResult, tick int) {
	t.Helper()
	if tick >= len(result.History) {
		t.Fatalf("AssertAllRetiredAt: no observation for tick %d", tick)
	}
	c := recorder.CountStates(result.History[tick])
	if c.Retired != result.Scenario.Agents || c.Traveling != 0 {
		t.Errorf("AssertAllRetiredAt: tick %d: %d retired, %d traveling, want all %d retired",
			tick, c.Retired, c.Traveling, result.Scenario.Agents)
	}
}

// AssertOneCellPerTick asserts traveling agents move one cell toward their
// destination per tick, pausing only once at the midpoint.
func AssertOneCellPerTick(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, tr := range Traversals(result.History) {
		stride := 1
		if !tr.HeadingTowardB() {
			stride = -1
		}
		if tr.Positions[0] != constants.LocA+1 && tr.Positions[0] != constants.LocB-1 {
			t.Errorf("AssertOneCellPerTick: agent %d first observed at %d", tr.AgentID, tr.Positions[0])
		}
		paused := false
		for i := 1; i < len(tr.Positions); i++ {
			prev, cur := tr.Positions[i-1], tr.Positions[i]
			switch {
			case cur == prev+stride:
			case cur == prev && cur == constants.LocMid && !paused:
				paused = true
			default:
				t.Errorf("AssertOneCellPerTick: agent %d from tick %d: moved %d -> %d", tr.AgentID, tr.Start, prev, cur)
				return
			}
		}
	}
}

// AssertNoMidpointCrossing asserts no agent ever got past the midpoint, and
// every finished trip ended there.
func AssertNoMidpointCrossing(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, tr := range Traversals(result.History) {
		for _, p := range tr.Positions {
			if (tr.HeadingTowardB() && p > constants.LocMid) || (!tr.HeadingTowardB() && p < constants.LocMid) {
				t.Errorf("AssertNoMidpointCrossing: agent %d from tick %d reached %d", tr.AgentID, tr.Start, p)
				break
			}
		}
		if tr.Complete() && tr.Last() != constants.LocMid {
			t.Errorf("AssertNoMidpointCrossing: agent %d retired from %d, want midpoint", tr.AgentID, tr.Last())
		}
	}
}

// AssertAllReachFarEndpoint asserts every finished trip ended at the
// endpoint opposite its origin.
func AssertAllReachFarEndpoint(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, tr := range Traversals(result.History) {
		if !tr.Complete() {
			continue
		}
		want := constants.LocB
		if !tr.HeadingTowardB() {
			want = constants.LocA
		}
		if tr.Last() != want {
			t.Errorf("AssertAllReachFarEndpoint: agent %d from tick %d retired from %d, want %d",
				tr.AgentID, tr.Start, tr.Last(), want)
		}
	}
}

// AssertRateRecorded asserts every observation carries the given rate.
func AssertRateRecorded(t *testing.T, result SimulationResult, rate float64) {
	t.Helper()
	for _, obs := range result.History {
		if obs.BleedoutRate != rate {
			t.Errorf("AssertRateRecorded: tick %d: rate %v, want %v", obs.Tick, obs.BleedoutRate, rate)
			return
		}
	}
}

// AssertStoreMatchesHistory asserts the SQLite store holds the same state
// counts and final histogram as the in-memory history.
func AssertStoreMatchesHistory(t *testing.T, result SimulationResult) {
	t.Helper()
	ctx := context.Background()

	counts, err := result.Store.StateCounts(ctx)
	if err != nil {
		t.Fatalf("AssertStoreMatchesHistory: StateCounts: %v", err)
	}
	if diff := cmp.Diff(StateCounts(result.History), counts); diff != "" {
		t.Errorf("AssertStoreMatchesHistory: state counts differ (-memory +sqlite):\n%s", diff)
	}

	final := result.Final()
	hist, err := result.Store.LocationHistogram(ctx, final.Tick, constants.CorridorWidth)
	if err != nil {
		t.Fatalf("AssertStoreMatchesHistory: LocationHistogram: %v", err)
	}
	if diff := cmp.Diff(recorder.Histogram(final, constants.CorridorWidth), hist); diff != "" {
		t.Errorf("AssertStoreMatchesHistory: final histogram differs (-memory +sqlite):\n%s", diff)
	}
}

// AssertIdenticalHistories asserts two runs recorded the same observations.
func AssertIdenticalHistories(t *testing.T, a, b SimulationResult) {
	t.Helper()
	if diff := cmp.Diff(a.History, b.History); diff != "" {
		t.Errorf("AssertIdenticalHistories: %s vs %s (-a +b):\n%s", a.Scenario.Name, b.Scenario.Name, diff)
	}
}
