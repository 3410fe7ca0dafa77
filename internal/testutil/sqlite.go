// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/josenava/meal-calendar/internal/repo"

	"github.com/pressly/goose/v3"
)

// SQLite returns a migrated in-memory database that is closed when the test ends.
func SQLite(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := repo.OpenSQLite(ctx, repo.MemoryDSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := repo.Migrate(ctx, db, goose.DialectSQLite3); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
