// Package dbtest provides a migrated throw-away SQLite database for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/migrate"
)

// New opens a fresh database file under t.TempDir, applies all migrations
// and closes it when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(config.Config{
		DBDriver:         database.DriverSQLite,
		DBPath:           filepath.Join(t.TempDir(), "test.db"),
		DBMaxOpenConns:   4,
		DBMaxIdleConns:   4,
		DBConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate.Run(db, logging.Discard()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
