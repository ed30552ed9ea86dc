package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/activity-directory/internal/persistence/sqlite"
)

// SQLiteHarness provides directory collections backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Path       string
	Activities *sqlite.Collection
	Teachers   *sqlite.Collection

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()
	return OpenSQLiteHarness(tb, filepath.Join(tb.TempDir(), "directory.db"))
}

// OpenSQLiteHarness opens (or reopens) the database at path.
func OpenSQLiteHarness(tb testing.TB, path string) *SQLiteHarness {
	tb.Helper()

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Path:       path,
		Activities: storage.Collection("activities"),
		Teachers:   storage.Collection("teachers"),
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
