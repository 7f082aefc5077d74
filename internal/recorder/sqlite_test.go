package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dda-sim/dda/internal/agent"
)

func openTestSQLite(t *testing.T, dsn, runID string) *SQLite {
	t.Helper()
	s, err := OpenSQLite(dsn, runID)
	if err != nil {
		t.Fatalf("OpenSQLite(%q) failed: %v", dsn, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, "", "run-1")

	for tick := 0; tick < 3; tick++ {
		if err := s.Record(sampleObservation(tick)); err != nil {
			t.Fatalf("Record(%d) failed: %v", tick, err)
		}
	}

	n, err := s.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}

	model, err := s.ModelVars(ctx)
	if err != nil {
		t.Fatalf("ModelVars failed: %v", err)
	}
	if len(model) != 3 || model[1].Tick != 1 || model[1].BleedoutRate != 0.25 {
		t.Errorf("ModelVars() = %+v", model)
	}

	rows, err := s.AgentVars(ctx, 2)
	if err != nil {
		t.Fatalf("AgentVars failed: %v", err)
	}
	if len(rows) != 4 || rows[2].AgentID != 2 || rows[2].State != agent.StateTraveling {
		t.Errorf("AgentVars(2) = %+v", rows)
	}

	hist, err := s.LocationHistogram(ctx, 1, 6)
	if err != nil {
		t.Fatalf("LocationHistogram failed: %v", err)
	}
	if hist[0] != 2 || hist[5] != 2 {
		t.Errorf("LocationHistogram(1) = %v", hist)
	}

	counts, err := s.StateCounts(ctx)
	if err != nil {
		t.Fatalf("StateCounts failed: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("StateCounts() has %d ticks, want 3", len(counts))
	}
	for _, c := range counts {
		if c.Retired != 2 || c.Traveling != 2 {
			t.Errorf("tick %d counts = %+v", c.Tick, c)
		}
	}
}

func TestSQLite_MatchesMemory(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	db := openTestSQLite(t, MemoryDSN, "run-x")
	r := Tee(mem, db)

	for tick := 0; tick < 4; tick++ {
		if err := r.Record(sampleObservation(tick)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	want := mem.StateCounts()
	got, err := db.StateCounts(ctx)
	if err != nil {
		t.Fatalf("StateCounts failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("sqlite has %d ticks, memory %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tick %d: sqlite %+v, memory %+v", i, got[i], want[i])
		}
	}
}

func TestSQLite_DuplicateTickFails(t *testing.T) {
	s := openTestSQLite(t, "", "run-1")
	if err := s.Record(sampleObservation(0)); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}
	if err := s.Record(sampleObservation(0)); err == nil {
		t.Error("recording the same tick twice should fail")
	}
}

func TestSQLite_RunsShareFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "observations.db")

	a := openTestSQLite(t, path, "run-a")
	if err := a.Record(sampleObservation(0)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	a.Close()

	b := openTestSQLite(t, path, "run-b")
	for tick := 0; tick < 2; tick++ {
		if err := b.Record(sampleObservation(tick)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := b.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 2 {
		t.Errorf("run-b Len() = %d, want 2", n)
	}
	if b.RunID() != "run-b" {
		t.Errorf("RunID() = %q", b.RunID())
	}
}
