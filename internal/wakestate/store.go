// Package wakestate persists the small record that must survive low-power
// suspension: the wake counter and the clock-synced flag. It lives in a
// sqlite file on suspend-surviving storage; a full power loss that wipes the
// file resets the state, matching the device's RTC-memory semantics.
package wakestate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS wake_state (
  id          INTEGER PRIMARY KEY CHECK (id = 1),
  wake_count  INTEGER NOT NULL,
  time_synced INTEGER NOT NULL
);
`

// State is the suspension-surviving record. Owned exclusively by the
// orchestrator: loaded once at cycle start, written back once before suspend.
type State struct {
	WakeCount  uint64
	TimeSynced bool
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the persisted state, or the zero state when none has been
// written yet (fresh power-on).
func (s *Store) Load() (State, error) {
	var st State
	var synced int
	err := s.db.QueryRow(
		`SELECT wake_count, time_synced FROM wake_state WHERE id = 1`,
	).Scan(&st.WakeCount, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load wake state: %w", err)
	}
	st.TimeSynced = synced != 0
	return st, nil
}

// Save writes the state back, replacing whatever was there.
func (s *Store) Save(st State) error {
	synced := 0
	if st.TimeSynced {
		synced = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO wake_state (id, wake_count, time_synced) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET wake_count = excluded.wake_count, time_synced = excluded.time_synced`,
		st.WakeCount, synced,
	)
	if err != nil {
		return fmt.Errorf("save wake state: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
