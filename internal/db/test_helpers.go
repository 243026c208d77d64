package db

import (
	"path/filepath"
	"testing"
)

// NewTestDB creates a fully migrated database in a per-test temp directory
// and closes it when the test finishes.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	d, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return d
}
