package simulation_test

import (
	"testing"

	"github.com/dda-sim/dda/internal/arrival"
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/model"
	"github.com/dda-sim/dda/internal/recorder"
	"github.com/dda-sim/dda/internal/simulation"
)

// TestScenarioZeroIterations: a run with no iterations records the initial
// snapshot and finishes immediately.
func TestScenarioZeroIterations(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:         "zero-iterations",
		Agents:       10,
		Iterations:   0,
		BleedoutRate: simulation.Rate(0.5),
		Seed:         1,
	})

	simulation.AssertNoError(t, result)
	simulation.AssertObservationCount(t, result)
	simulation.AssertAllRetiredAt(t, result, 0)
	simulation.AssertRetiredAtGraveyard(t, result)
	simulation.AssertStoreMatchesHistory(t, result)

	if got := result.Model.Stats().Activations; got != 0 {
		t.Errorf("Activations = %d, want 0", got)
	}
}

// TestScenarioNoBleedout: with rate 0 every trip runs to the far endpoint and
// the population recovers once the last trips finish.
func TestScenarioNoBleedout(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:         "no-bleedout",
		Agents:       600,
		Iterations:   200,
		BleedoutRate: simulation.Rate(0),
		Seed:         7,
	})

	simulation.AssertNoError(t, result)
	simulation.AssertObservationCount(t, result)
	simulation.AssertPopulationConserved(t, result)
	simulation.AssertRetiredAtGraveyard(t, result)
	simulation.AssertOneCellPerTick(t, result)
	simulation.AssertAllReachFarEndpoint(t, result)
	simulation.AssertRateRecorded(t, result, 0)
	simulation.AssertStoreMatchesHistory(t, result)

	stats := result.Model.Stats()
	if stats.Bleedouts != 0 {
		t.Errorf("Bleedouts = %d, want 0", stats.Bleedouts)
	}
	if stats.Completions == 0 {
		t.Error("expected some completed trips within 200 ticks")
	}

	// The last activation within 200 ticks happens at tick 180; its trips
	// are over 24 ticks later.
	recovered := r.Run(simulation.Scenario{
		Name:         "no-bleedout-recovered",
		Agents:       600,
		Iterations:   230,
		BleedoutRate: simulation.Rate(0),
		Seed:         7,
	})
	simulation.AssertNoError(t, recovered)
	simulation.AssertAllRetiredAt(t, recovered, 230)
	if s := recovered.Model.Stats(); s.Completions != s.Activations {
		t.Errorf("Completions = %d, want all %d activations", s.Completions, s.Activations)
	}
}

// TestScenarioAlwaysBleedout: with rate 1 every trip ends at the midpoint.
func TestScenarioAlwaysBleedout(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:         "always-bleedout",
		Agents:       600,
		Iterations:   200,
		BleedoutRate: simulation.Rate(1),
		Seed:         11,
	})

	simulation.AssertNoError(t, result)
	simulation.AssertPopulationConserved(t, result)
	simulation.AssertRetiredAtGraveyard(t, result)
	simulation.AssertOneCellPerTick(t, result)
	simulation.AssertNoMidpointCrossing(t, result)
	simulation.AssertStoreMatchesHistory(t, result)

	stats := result.Model.Stats()
	if stats.Completions != 0 {
		t.Errorf("Completions = %d, want 0", stats.Completions)
	}
	if stats.Bleedouts == 0 {
		t.Error("expected bleedouts at rate 1")
	}
	for _, tr := range simulation.Traversals(result.History) {
		if tr.Complete() && tr.End-tr.Start != 11 {
			t.Errorf("agent %d trip from tick %d lasted %d ticks, want 11", tr.AgentID, tr.Start, tr.End-tr.Start)
		}
	}
}

// TestScenarioTickZero: the first observation precedes any activation, and
// the hour-0 bucket is not applied during the first hour. The first batch is
// the hour-1 bucket at tick 60.
func TestScenarioTickZero(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:         "tick-zero",
		Agents:       600,
		Iterations:   65,
		BleedoutRate: simulation.Rate(0.5),
		Seed:         3,
	})

	simulation.AssertNoError(t, result)
	simulation.AssertObservationCount(t, result)
	for tick := 0; tick <= 60; tick++ {
		simulation.AssertAllRetiredAt(t, result, tick)
	}

	want := arrival.Distribution(600)[1]
	for tick := 61; tick <= 65; tick++ {
		c := recorder.CountStates(result.History[tick])
		if c.Traveling != want {
			t.Errorf("tick %d: %d traveling, want hour-1 bucket %d", tick, c.Traveling, want)
		}
	}
	if got := result.Model.Stats().Activations; got != want {
		t.Errorf("Activations = %d, want %d", got, want)
	}
}

// TestScenarioFullDay: from tick 60 through tick 1440 every bucket is
// activated exactly once, hour 0 last, and nothing is capped.
func TestScenarioFullDay(t *testing.T) {
	if testing.Short() {
		t.Skip("full-day run skipped in short mode")
	}
	const agents = 120
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:         "full-day",
		Agents:       agents,
		Iterations:   constants.TicksPerHour*constants.HoursPerDay + 1,
		BleedoutRate: simulation.Rate(0.5),
		Seed:         99,
		Origins:      constants.OriginRandom,
	})

	simulation.AssertNoError(t, result)
	simulation.AssertPopulationConserved(t, result)
	simulation.AssertRetiredAtGraveyard(t, result)
	simulation.AssertOneCellPerTick(t, result)

	stats := result.Model.Stats()
	if want := arrival.Total(arrival.Distribution(agents)); stats.Activations != want {
		t.Errorf("Activations = %d, want %d", stats.Activations, want)
	}
	if stats.CappedActivations != 0 {
		t.Errorf("CappedActivations = %d, want 0", stats.CappedActivations)
	}
	if stats.Completions == 0 || stats.Bleedouts == 0 {
		t.Errorf("rate 0.5 over a day should produce both exits: %+v", stats)
	}
}

// TestScenarioRateChangeMidRun: a rate set between ticks shows up in the
// next observation and governs later midpoint trials.
func TestScenarioRateChangeMidRun(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:         "rate-change",
		Agents:       600,
		Iterations:   200,
		BleedoutRate: simulation.Rate(0),
		Seed:         5,
		BeforeStep: func(tick int, m *model.Model) {
			if tick == 100 {
				if err := m.SetBleedoutRate(1); err != nil {
					t.Fatalf("SetBleedoutRate: %v", err)
				}
			}
			if tick == 150 {
				if err := m.SetBleedoutRate(2); err == nil {
					t.Error("SetBleedoutRate(2) should fail")
				}
			}
		},
	})

	simulation.AssertNoError(t, result)
	simulation.AssertPopulationConserved(t, result)
	if got := result.History[99].BleedoutRate; got != 0 {
		t.Errorf("tick 99 rate = %v, want 0", got)
	}
	for _, obs := range result.History[100:] {
		if obs.BleedoutRate != 1 {
			t.Fatalf("tick %d rate = %v, want 1", obs.Tick, obs.BleedoutRate)
		}
	}

	// Trips starting after the change never pass the midpoint.
	for _, tr := range simulation.Traversals(result.History) {
		if tr.Start > 100 && tr.Complete() && tr.Last() != constants.LocMid {
			t.Errorf("agent %d from tick %d retired from %d after rate 1", tr.AgentID, tr.Start, tr.Last())
		}
	}
}

// TestScenarioDeterminism: identical seeds give identical histories.
func TestScenarioDeterminism(t *testing.T) {
	r := simulation.NewRunner(t)
	scenario := simulation.Scenario{
		Name:         "determinism",
		Agents:       300,
		Iterations:   150,
		BleedoutRate: simulation.Rate(0.4),
		Seed:         2024,
		Origins:      constants.OriginRandom,
	}

	a := r.Run(scenario)
	b := r.Run(scenario)
	simulation.AssertNoError(t, a)
	simulation.AssertNoError(t, b)
	simulation.AssertIdenticalHistories(t, a, b)
	simulation.AssertStoreMatchesHistory(t, a)
	simulation.AssertStoreMatchesHistory(t, b)

	if a.Model.RunID() == b.Model.RunID() {
		t.Error("separate runs should get separate run ids")
	}
}
