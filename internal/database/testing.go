package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDSNEnv names the variable holding the integration test database URL
const TestDSNEnv = "BOATRACE_TEST_DATABASE_URL"

// SetupTestDB connects to the integration test database and migrates it.
// The test is skipped when no database is configured.
func SetupTestDB(t testing.TB) *DB {
	t.Helper()

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("integration test - set %s to run", TestDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if _, err := Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}

// TruncateTables empties the named tables between tests
func TruncateTables(t testing.TB, db *DB, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := db.pool.Exec(context.Background(), "TRUNCATE TABLE "+table); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}
