package simulation

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/dda-sim/dda/internal/model"
	"github.com/dda-sim/dda/internal/recorder"
)

// Runner executes scenarios against a real model and an isolated SQLite
// observation store.
type Runner struct {
	t   *testing.T
	dsn string
}

// NewRunner creates a simulation runner whose observation store lives in a
// fresh temporary directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{
		t:   t,
		dsn: filepath.Join(t.TempDir(), "observations.db"),
	}
}

// Run builds the model for scenario, steps it until it finishes and returns
// the recorded history. Construction errors fail the test; errors from the
// run itself are returned in the result.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()

	runID := uuid.NewString()
	store, err := recorder.OpenSQLite(r.dsn, runID)
	if err != nil {
		r.t.Fatalf("%s: OpenSQLite: %v", scenario.Name, err)
	}
	r.t.Cleanup(func() { store.Close() })

	mem := recorder.NewMemory()
	seed := scenario.Seed
	m, err := model.New(model.Config{
		Agents:       scenario.Agents,
		Iterations:   scenario.Iterations,
		BleedoutRate: scenario.BleedoutRate,
		Seed:         &seed,
		Origins:      scenario.Origins,
		Recorder:     recorder.Tee(mem, store),
		RunID:        runID,
	})
	if err != nil {
		r.t.Fatalf("%s: model.New: %v", scenario.Name, err)
	}

	if scenario.BeforeStep == nil {
		err = m.Run()
	} else {
		for m.Running() && err == nil {
			scenario.BeforeStep(m.Steps(), m)
			err = m.Step()
		}
	}

	return SimulationResult{
		Scenario: scenario,
		Model:    m,
		History:  mem.Observations(),
		Store:    store,
		Err:      err,
	}
}
