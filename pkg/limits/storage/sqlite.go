package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const cooldownSchema = `
CREATE TABLE IF NOT EXISTS cooldowns (
    client_key TEXT PRIMARY KEY,
    admitted_at INTEGER NOT NULL
);
`

// SQLiteStore persists cooldown snapshots in a SQLite database. Timestamps
// are stored as Unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cooldown store %q: %w", path, err)
	}

	// Snapshot writes are serialized by the snapshot loop; one
	// connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(cooldownSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cooldown schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save replaces the persisted snapshot in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, state map[string]time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cooldowns"); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO cooldowns (client_key, admitted_at) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for key, ts := range state {
		if _, err := stmt.ExecContext(ctx, key, ts.UnixNano()); err != nil {
			return fmt.Errorf("failed to write snapshot row for %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// Load returns the persisted snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT client_key, admitted_at FROM cooldowns")
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldown snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var key string
		var nanos int64
		if err := rows.Scan(&key, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan cooldown row: %w", err)
		}
		out[key] = time.Unix(0, nanos)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
