// Package sqlite stores document collections in a SQLite database so the
// directory survives restarts without a document server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq ON documents (collection, seq);
`

// Storage owns the SQLite handle shared by every collection it hands out.
type Storage struct {
	pool  *ConnectionPool
	retry RetryConfig
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Storage{pool: NewConnectionPool(db), retry: DefaultRetryConfig()}, nil
}

// Migrate creates the documents table when it does not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sqlite db: %w", MapError(err))
	}
	return nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	return s.pool.Close()
}

// Collection returns the named document collection.
func (s *Storage) Collection(name string) *Collection {
	return &Collection{pool: s.pool, name: name, retry: s.retry}
}
