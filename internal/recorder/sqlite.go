package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dda-sim/dda/internal/agent"

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

const schemaV1 = `
CREATE TABLE IF NOT EXISTS model_vars (
    run_id TEXT NOT NULL,
    tick INTEGER NOT NULL,
    bleedout_rate REAL NOT NULL,
    PRIMARY KEY (run_id, tick)
);

CREATE TABLE IF NOT EXISTS agent_vars (
    run_id TEXT NOT NULL,
    tick INTEGER NOT NULL,
    agent_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    state TEXT NOT NULL,
    PRIMARY KEY (run_id, tick, agent_id)
);
CREATE INDEX IF NOT EXISTS idx_agent_vars_tick_position ON agent_vars(run_id, tick, position);
`

// SQLite records observations into an SQLite database so they can be sliced
// with SQL after the run. Rows are namespaced by run ID, so several runs may
// share one database file.
type SQLite struct {
	db    *sql.DB
	runID string
}

// OpenSQLite opens (or creates) the database at dsn and prepares the schema.
// An empty dsn opens a private in-memory database.
func OpenSQLite(dsn, runID string) (*SQLite, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if dsn != MemoryDSN && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives on a single connection; a file database
	// only ever has one writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaV1); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db, runID: runID}, nil
}

// RunID returns the run the recorder writes rows for.
func (s *SQLite) RunID() string {
	return s.runID
}

// Record writes one tick's model row and agent rows in a single transaction.
func (s *SQLite) Record(obs Observation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO model_vars (run_id, tick, bleedout_rate) VALUES (?, ?, ?)`,
		s.runID, obs.Tick, obs.BleedoutRate,
	); err != nil {
		return fmt.Errorf("failed to insert model vars for tick %d: %w", obs.Tick, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO agent_vars (run_id, tick, agent_id, position, state) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare agent insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range obs.Agents {
		if _, err := stmt.Exec(s.runID, obs.Tick, a.ID, a.Position, string(a.State)); err != nil {
			return fmt.Errorf("failed to insert agent %d for tick %d: %w", a.ID, obs.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tick %d: %w", obs.Tick, err)
	}
	return nil
}

// Len returns the number of recorded ticks.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM model_vars WHERE run_id = ?`, s.runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ticks: %w", err)
	}
	return n, nil
}

// ModelVars returns the model-level rows ordered by tick.
func (s *SQLite) ModelVars(ctx context.Context) ([]ModelRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, bleedout_rate FROM model_vars WHERE run_id = ? ORDER BY tick`, s.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query model vars: %w", err)
	}
	defer rows.Close()

	var out []ModelRow
	for rows.Next() {
		var r ModelRow
		if err := rows.Scan(&r.Tick, &r.BleedoutRate); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AgentVars returns the agent rows of a single tick ordered by agent ID.
func (s *SQLite) AgentVars(ctx context.Context, tick int) ([]AgentRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, agent_id, position, state FROM agent_vars
		 WHERE run_id = ? AND tick = ? ORDER BY agent_id`, s.runID, tick)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent vars: %w", err)
	}
	defer rows.Close()

	var out []AgentRow
	for rows.Next() {
		var r AgentRow
		var state string
		if err := rows.Scan(&r.Tick, &r.AgentID, &r.Position, &state); err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		r.State = agent.State(state)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LocationHistogram counts agents per corridor cell at a tick.
func (s *SQLite) LocationHistogram(ctx context.Context, tick, width int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, COUNT(*) FROM agent_vars
		 WHERE run_id = ? AND tick = ? GROUP BY position`, s.runID, tick)
	if err != nil {
		return nil, fmt.Errorf("failed to query histogram: %w", err)
	}
	defer rows.Close()

	hist := make([]int, width)
	for rows.Next() {
		var pos, n int
		if err := rows.Scan(&pos, &n); err != nil {
			return nil, fmt.Errorf("failed to scan histogram row: %w", err)
		}
		if pos >= 0 && pos < width {
			hist[pos] = n
		}
	}
	return hist, rows.Err()
}

// StateCounts returns the state distribution of every recorded tick.
func (s *SQLite) StateCounts(ctx context.Context) ([]StateCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick,
		        SUM(CASE WHEN state = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN state = ? THEN 1 ELSE 0 END)
		 FROM agent_vars WHERE run_id = ?
		 GROUP BY tick ORDER BY tick`,
		string(agent.StateRetired), string(agent.StateTraveling), s.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query state counts: %w", err)
	}
	defer rows.Close()

	var out []StateCount
	for rows.Next() {
		var c StateCount
		if err := rows.Scan(&c.Tick, &c.Retired, &c.Traveling); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
