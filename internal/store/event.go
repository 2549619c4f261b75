package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter issues the single monotonic sequence shared by every
// event type. Each event type lives in its own ent table, so per-table
// auto-increment can't order an answer against the model call that
// followed it; the shared counter can, and snapshots use it to state how
// much of the log they cover (query any table for sequence >
// snapshot.sequence).
//
// Raw SQL because ent has no database-level atomic counter. The mutex
// serializes within the process; RETURNING makes the increment atomic at
// the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS event_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO event_sequence (id, next_val) VALUES (1, 1)`); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Current returns the most recently issued sequence without consuming
// one; 0 before the first event.
func (sc *sequenceCounter) Current(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`SELECT next_val - 1 FROM event_sequence WHERE id = 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("current sequence: %w", err)
	}
	return seq, nil
}

// Next atomically issues the next sequence number.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
