// Package simulation provides an end-to-end test harness for corridor runs.
//
// The harness drives the real Model, agents, scheduler and recorders with no
// mocks. A Scenario names the run parameters; the Runner builds the model,
// steps it to completion and captures the full observation history both in
// memory and in an SQLite store, so property assertions can be checked
// against either.
//
// Each test gets an isolated SQLite database via t.TempDir().
//
// Usage:
//
//	func TestMidpointExit(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:         "all-bleed",
//	        Agents:       600,
//	        Iterations:   200,
//	        BleedoutRate: simulation.Rate(1),
//	    })
//	    simulation.AssertNoMidpointCrossing(t, result)
//	}
package simulation
