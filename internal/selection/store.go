package selection

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ziadkadry99/civcards/internal/db"
)

// Store persists selection state per session.
type Store interface {
	// Load returns the stored state for sessionID. Missing or empty
	// values come from the store's defaults, except the entity.
	Load(ctx context.Context, sessionID string) (State, error)
	// Save writes every key of st for sessionID.
	Save(ctx context.Context, sessionID string, st State) error
}

// SQLiteStore keeps selection values in the selection_values table.
type SQLiteStore struct {
	db       *db.DB
	defaults Defaults
}

// NewSQLiteStore creates a Store backed by the given database.
func NewSQLiteStore(database *db.DB, defaults Defaults) *SQLiteStore {
	return &SQLiteStore{db: database, defaults: defaults.withFallbacks()}
}

// Load implements [Store].
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (State, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM selection_values WHERE session_id = ?", sessionID)
	if err != nil {
		return State{}, fmt.Errorf("querying selection: %w", err)
	}
	defer rows.Close()

	var st State
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return State{}, fmt.Errorf("scanning selection: %w", err)
		}
		k, err := ParseKey(key)
		if err != nil {
			continue
		}
		st.set(k, value, nil)
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("reading selection: %w", err)
	}
	return applyDefaults(st, s.defaults), nil
}

// Save implements [Store].
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, st State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range Keys {
		if err := upsert(ctx, tx, sessionID, k, st.Get(k)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing selection: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, sessionID string, k Key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO selection_values (session_id, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(session_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		sessionID, string(k), value)
	if err != nil {
		return fmt.Errorf("saving %s: %w", k, err)
	}
	return nil
}

// MemStore is an in-process Store.
type MemStore struct {
	mu       sync.Mutex
	defaults Defaults
	states   map[string]State
}

// NewMemStore returns an empty MemStore.
func NewMemStore(defaults Defaults) *MemStore {
	return &MemStore{defaults: defaults.withFallbacks(), states: make(map[string]State)}
}

// Load implements [Store].
func (m *MemStore) Load(_ context.Context, sessionID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return applyDefaults(m.states[sessionID], m.defaults), nil
}

// Save implements [Store].
func (m *MemStore) Save(_ context.Context, sessionID string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = st
	return nil
}

func applyDefaults(st State, d Defaults) State {
	if st.MajorGod == "" {
		st.MajorGod = d.MajorGod
	}
	if st.Building == "" {
		st.Building = d.Building
	}
	return st
}
