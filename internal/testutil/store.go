package testutil

import (
	"testing"

	"medtrack/internal/store"
)

// NewTestStore creates an in-memory SQLite store with all migrations
// applied. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
