package selection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/civcards/internal/db"
)

// Entry is one recorded selection change.
type Entry struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Seq           int64     `json:"seq"`
	Timestamp     time.Time `json:"timestamp"`
	Key           Key       `json:"key"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
}

// History records selection changes in the selection_history table.
type History struct {
	db *db.DB
}

// NewHistory creates a History backed by the given database.
func NewHistory(database *db.DB) *History {
	return &History{db: database}
}

// Record appends changes for sessionID in order. Sequence numbers are
// per session and strictly increasing.
func (h *History) Record(ctx context.Context, sessionID string, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM selection_history WHERE session_id = ?", sessionID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("reading history sequence: %w", err)
	}

	for _, c := range changes {
		seq++
		_, err := tx.ExecContext(ctx, `
			INSERT INTO selection_history (id, session_id, seq, key, previous_value, new_value)
			VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), sessionID, seq, string(c.Key), c.Previous, c.Value)
		if err != nil {
			return fmt.Errorf("inserting history entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history: %w", err)
	}
	return nil
}

// HistoryFilter controls which entries List returns.
type HistoryFilter struct {
	SessionID string
	Key       Key
	Since     *time.Time
	Limit     int
	Offset    int
}

// List returns matching entries, newest first.
func (h *History) List(ctx context.Context, filter HistoryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Key != "" {
		clauses = append(clauses, "key = ?")
		args = append(args, string(filter.Key))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, session_id, seq, timestamp, key, previous_value, new_value FROM selection_history"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	// Timestamps have one-second resolution; rowid keeps insertion order
	// across sessions within a second.
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			ts  string
			key string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &ts, &key, &e.PreviousValue, &e.NewValue); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Key = Key(key)
		if t, err := time.Parse(time.DateTime, ts); err == nil {
			e.Timestamp = t
		} else if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes entries older than before and returns how many
// were deleted.
func (h *History) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx,
		"DELETE FROM selection_history WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old history: %w", err)
	}
	return res.RowsAffected()
}
