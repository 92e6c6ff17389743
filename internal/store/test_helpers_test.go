package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestMutation builds a mutation with minimal required fields.
func createTestMutation(id string, op MutationOp, target string) Mutation {
	return Mutation{
		ID:         id,
		Op:         op,
		Target:     target,
		Payload:    []byte(`{"food_id":1,"portions":2}`),
		ClientTime: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}
