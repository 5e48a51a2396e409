package migration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"testing/fstest"

	_ "github.com/lib/pq"
)

// setupPostgresTestDB creates a test PostgreSQL database connection.
// Set POSTGRES_TEST_URL to run, e.g.
// POSTGRES_TEST_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS test_snapshots")
		db.Close()
	})
	return db
}

// TestPostgresSetVersion verifies SetVersion works with PostgreSQL $1 placeholders
func TestPostgresSetVersion(t *testing.T) {
	ctx := context.Background()
	db := setupPostgresTestDB(t)

	runner, err := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE IF NOT EXISTS test_snapshots (user_id TEXT PRIMARY KEY);")},
	}, DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	if err := runner.SetVersion(ctx, 1); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}
}

func TestPostgresApplyMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupPostgresTestDB(t)
	db.Exec("DROP TABLE IF EXISTS schema_version")

	runner, err := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE IF NOT EXISTS test_snapshots (user_id TEXT PRIMARY KEY);")},
	}, DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	applied, err := runner.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
}
