package store

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Ledger is the persisted map of reminder id to the epoch-millisecond
// timestamp of the last alert shown for it. It survives restarts so a
// reminder is not re-alerted just because the client reloaded. Entries
// are held in memory; every Set writes through to SQLite synchronously.
type Ledger struct {
	db      *sqlx.DB
	mu      sync.Mutex
	entries map[string]int64
}

// OpenLedger opens the ledger database at dbPath, applying migrations
// and loading all entries before the first scan can run.
func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	l := &Ledger{db: db, entries: make(map[string]int64)}
	if err := l.load(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load() error {
	rows, err := l.db.Queryx("SELECT reminder_id, last_notified_ms FROM notification_ledger")
	if err != nil {
		return fmt.Errorf("loading notification ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var ms int64
		if err := rows.Scan(&id, &ms); err != nil {
			return fmt.Errorf("scanning ledger row: %w", err)
		}
		l.entries[id] = ms
	}
	return rows.Err()
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Get returns the last-notified timestamp for id in epoch milliseconds,
// or 0 if the reminder has never been alerted.
func (l *Ledger) Get(id string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[id]
}

// Set records epochMs as the last-notified timestamp for id and writes
// it through to disk before returning.
func (l *Ledger) Set(id string, epochMs int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.Exec(`
		INSERT INTO notification_ledger (reminder_id, last_notified_ms)
		VALUES (?, ?)
		ON CONFLICT(reminder_id) DO UPDATE SET last_notified_ms = excluded.last_notified_ms`,
		id, epochMs,
	)
	if err != nil {
		return fmt.Errorf("persisting ledger entry %s: %w", id, err)
	}

	l.entries[id] = epochMs
	return nil
}

// Prune removes entries whose reminder id is not in existing and
// returns the removed ids so the caller can close any alerts still
// displayed for them.
func (l *Ledger) Prune(existing map[string]struct{}) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []string
	for id := range l.entries {
		if _, ok := existing[id]; !ok {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	for _, id := range removed {
		if _, err := l.db.Exec(
			"DELETE FROM notification_ledger WHERE reminder_id = ?", id,
		); err != nil {
			return nil, fmt.Errorf("pruning ledger entry %s: %w", id, err)
		}
		delete(l.entries, id)
	}

	return removed, nil
}
