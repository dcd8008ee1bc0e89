// Package recorder persists simulation events and run metadata to SQLite
// so runs can be inspected after the process exits.
package recorder

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/choicesim/event"
	"github.com/talgya/choicesim/sim"
)

// Recorder wraps a SQLite connection. Subscribe it to a bus with
// bus.AddHandler(recorder.Handler()) to capture a run.
type Recorder struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Recorder, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	r := &Recorder{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return r, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	return r.conn.Close()
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		time REAL NOT NULL,
		agent_id TEXT NOT NULL,
		description TEXT NOT NULL,
		data_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	CREATE INDEX IF NOT EXISTS idx_events_agent ON events(agent_id);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// row is the table shape of one event.
type row struct {
	Type        string   `db:"type"`
	Time        sim.Time `db:"time"`
	AgentID     string   `db:"agent_id"`
	Description string   `db:"description"`
	DataJSON    string   `db:"data_json"`
}

// SaveEvent appends one event.
func (r *Recorder) SaveEvent(e event.Event) error {
	dataJSON, _ := json.Marshal(e.Data)

	agentID := ""
	if !e.AgentID.IsZero() {
		agentID = e.AgentID.String()
	}

	_, err := r.conn.Exec(
		"INSERT INTO events (type, time, agent_id, description, data_json) VALUES (?, ?, ?, ?, ?)",
		string(e.Type), e.Time, agentID, e.Description, string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// SaveEvents appends a batch of events in one transaction.
func (r *Recorder) SaveEvents(events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO events (type, time, agent_id, description, data_json) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		dataJSON, _ := json.Marshal(e.Data)
		agentID := ""
		if !e.AgentID.IsZero() {
			agentID = e.AgentID.String()
		}
		if _, err := stmt.Exec(string(e.Type), e.Time, agentID, e.Description, string(dataJSON)); err != nil {
			return fmt.Errorf("insert event at t=%v: %w", e.Time, err)
		}
	}

	return tx.Commit()
}

// Handler returns a bus handler that persists every emitted event. Write
// failures are silently dropped; persistence must not stall a run.
func (r *Recorder) Handler() event.Handler {
	return event.HandlerFunc(func(e event.Event) {
		_ = r.SaveEvent(e)
	})
}

// SaveMeta stores a run metadata key-value pair.
func (r *Recorder) SaveMeta(key, value string) error {
	_, err := r.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a run metadata value.
func (r *Recorder) GetMeta(key string) (string, error) {
	var value string
	err := r.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}

// EventCount reports the number of persisted events.
func (r *Recorder) EventCount() (int, error) {
	var n int
	err := r.conn.Get(&n, "SELECT COUNT(*) FROM events")
	return n, err
}

// EventsOfType returns persisted events of the given type, oldest first.
func (r *Recorder) EventsOfType(typ event.Type) ([]event.Event, error) {
	var rows []row
	err := r.conn.Select(&rows,
		"SELECT type, time, agent_id, description, data_json FROM events WHERE type = ? ORDER BY id",
		string(typ),
	)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

// EventsForAgent returns persisted events concerning the given agent,
// oldest first.
func (r *Recorder) EventsForAgent(agentID sim.AgentID) ([]event.Event, error) {
	var rows []row
	err := r.conn.Select(&rows,
		"SELECT type, time, agent_id, description, data_json FROM events WHERE agent_id = ? ORDER BY id",
		agentID.String(),
	)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

// RecentEvents returns the most recent N events, newest first.
func (r *Recorder) RecentEvents(limit int) ([]event.Event, error) {
	var rows []row
	err := r.conn.Select(&rows,
		"SELECT type, time, agent_id, description, data_json FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

func decodeRows(rows []row) ([]event.Event, error) {
	out := make([]event.Event, 0, len(rows))
	for _, rw := range rows {
		e := event.Event{
			Type:        event.Type(rw.Type),
			Time:        rw.Time,
			Description: rw.Description,
		}
		if rw.AgentID != "" {
			id, err := sim.ParseAgentID(rw.AgentID)
			if err != nil {
				return nil, fmt.Errorf("decode agent id %q: %w", rw.AgentID, err)
			}
			e.AgentID = id
		}
		if rw.DataJSON != "" && rw.DataJSON != "null" {
			if err := json.Unmarshal([]byte(rw.DataJSON), &e.Data); err != nil {
				return nil, fmt.Errorf("decode event data: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, nil
}
