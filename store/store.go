// Package store provides SQLite-based persistence for exploration runs.
// Each run stores its vertices (full serialized snapshots, with the
// discovery edge that first reached them) and its labelled edges, enough to
// reconstruct any trace without re-running exploration.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pflow-xyz/go-ena/reachability"
)

// Store handles SQLite database operations for exploration results.
type Store struct {
	db *sql.DB
}

// Run is one persisted exploration run.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Status     string    `json:"status"`
	StateCount int       `json:"state_count"`
	EdgeCount  int       `json:"edge_count"`
	MaxDepth   int       `json:"max_depth"`
}

// StateRow is one persisted vertex.
type StateRow struct {
	RunID     string `json:"run_id"`
	Hash      string `json:"hash"`
	Snapshot  string `json:"snapshot"` // JSON field mapping
	Depth     int    `json:"depth"`
	IsInitial bool   `json:"is_initial"`
	DiscFrom  string `json:"disc_from,omitempty"` // hash of discovering predecessor
	DiscTrans string `json:"disc_trans,omitempty"`
	DiscValue string `json:"disc_value,omitempty"`
}

// EdgeRow is one persisted labelled edge.
type EdgeRow struct {
	RunID string `json:"run_id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Trans string `json:"trans"`
	Value string `json:"value"`
}

// Open opens (creating if needed) a store at the given database path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL,
		state_count INTEGER NOT NULL DEFAULT 0,
		edge_count INTEGER NOT NULL DEFAULT 0,
		max_depth INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS states (
		run_id TEXT NOT NULL,
		hash TEXT NOT NULL,
		snapshot TEXT NOT NULL,
		depth INTEGER NOT NULL,
		is_initial INTEGER NOT NULL DEFAULT 0,
		disc_from TEXT,
		disc_trans TEXT,
		disc_value TEXT,
		PRIMARY KEY (run_id, hash),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		from_hash TEXT NOT NULL,
		to_hash TEXT NOT NULL,
		trans TEXT NOT NULL,
		value TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_states_run ON states(run_id);
	CREATE INDEX IF NOT EXISTS idx_edges_run ON edges(run_id);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(run_id, from_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult persists an exploration result as a new run and returns its
// run ID.
func (s *Store) SaveResult(result *reachability.Result) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, status, state_count, edge_count, max_depth) VALUES (?, ?, ?, ?, ?)`,
		runID, result.Status.String(), result.StateCount, result.EdgeCount, result.MaxDepth)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}

	stateStmt, err := tx.Prepare(
		`INSERT INTO states (run_id, hash, snapshot, depth, is_initial, disc_from, disc_trans, disc_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("store: prepare states: %w", err)
	}
	defer stateStmt.Close()

	for _, state := range result.Graph.StatesList() {
		snapJSON, err := json.Marshal(state.Snapshot)
		if err != nil {
			return "", fmt.Errorf("store: encoding snapshot %s: %w", state.Hash, err)
		}
		var discFrom, discTrans, discValue any
		if state.Discovery != nil {
			discFrom = state.Discovery.From.Hash
			discTrans = state.Discovery.Path.String()
			discValue = encodeValue(state.Discovery.Value)
		}
		if _, err := stateStmt.Exec(runID, state.Hash, string(snapJSON), state.Depth,
			state.IsInitial, discFrom, discTrans, discValue); err != nil {
			return "", fmt.Errorf("store: insert state %s: %w", state.Hash, err)
		}
	}

	edgeStmt, err := tx.Prepare(
		`INSERT INTO edges (run_id, from_hash, to_hash, trans, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("store: prepare edges: %w", err)
	}
	defer edgeStmt.Close()

	for _, edge := range result.Graph.Edges {
		if _, err := edgeStmt.Exec(runID, edge.From.Hash, edge.To.Hash,
			edge.Path.String(), encodeValue(edge.Value)); err != nil {
			return "", fmt.Errorf("store: insert edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit: %w", err)
	}
	return runID, nil
}

// LoadRun retrieves a run's metadata.
func (s *Store) LoadRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, status, state_count, edge_count, max_depth FROM runs WHERE id = ?`, id)
	var run Run
	if err := row.Scan(&run.ID, &run.CreatedAt, &run.Status,
		&run.StateCount, &run.EdgeCount, &run.MaxDepth); err != nil {
		return nil, fmt.Errorf("store: load run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, status, state_count, edge_count, max_depth FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Status,
			&run.StateCount, &run.EdgeCount, &run.MaxDepth); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadStates returns all vertices of a run in discovery order.
func (s *Store) LoadStates(runID string) ([]StateRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, hash, snapshot, depth, is_initial,
		        COALESCE(disc_from, ''), COALESCE(disc_trans, ''), COALESCE(disc_value, '')
		 FROM states WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: load states: %w", err)
	}
	defer rows.Close()

	var states []StateRow
	for rows.Next() {
		var st StateRow
		if err := rows.Scan(&st.RunID, &st.Hash, &st.Snapshot, &st.Depth,
			&st.IsInitial, &st.DiscFrom, &st.DiscTrans, &st.DiscValue); err != nil {
			return nil, fmt.Errorf("store: scan state: %w", err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// TraceTo reconstructs the discovery trace from the run's initial state to
// the state with the given hash, without re-running exploration.
func (s *Store) TraceTo(runID, hash string) ([]EdgeRow, error) {
	var rev []EdgeRow
	cur := hash
	for {
		row := s.db.QueryRow(
			`SELECT is_initial, COALESCE(disc_from, ''), COALESCE(disc_trans, ''), COALESCE(disc_value, '')
			 FROM states WHERE run_id = ? AND hash = ?`, runID, cur)
		var isInitial bool
		var discFrom, discTrans, discValue string
		if err := row.Scan(&isInitial, &discFrom, &discTrans, &discValue); err != nil {
			return nil, fmt.Errorf("store: trace state %s: %w", cur, err)
		}
		if isInitial {
			break
		}
		if discFrom == "" {
			return nil, fmt.Errorf("store: state %s has no discovery edge", cur)
		}
		rev = append(rev, EdgeRow{RunID: runID, From: discFrom, To: cur, Trans: discTrans, Value: discValue})
		cur = discFrom
	}

	trace := make([]EdgeRow, len(rev))
	for i, e := range rev {
		trace[len(rev)-1-i] = e
	}
	return trace, nil
}

func encodeValue(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
