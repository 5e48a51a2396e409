package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/pomolit/internal/storage"
)

func setupTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fixedClock returns a clock that starts at start and advances one second per call.
func fixedClock(start time.Time) clock {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}
