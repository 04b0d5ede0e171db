// Package migrate applies the versioned schema to the application database.
// Every supported SQL dialect carries its own list of statements; versions
// must stay aligned across dialects.
package migrate

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/logging"
)

type dbMigration struct {
	Version uint
	Queries []string
}

var migrations = map[string][]dbMigration{
	database.DriverMySQL:    mysqlMigrations,
	database.DriverPostgres: postgresMigrations,
	database.DriverSQLite:   sqliteMigrations,
}

// Run creates the bookkeeping table if needed and executes every migration
// that has not completed successfully yet.
func Run(db *sqlx.DB, logger *logrus.Entry) error {
	logger = logger.WithField(logging.FldDriver, db.DriverName())
	list, ok := migrations[db.DriverName()]
	if !ok {
		return errors.Errorf("no migrations for driver %q", db.DriverName())
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER NOT NULL PRIMARY KEY,
		success INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		logger.WithError(err).Error("Failed to create migrations table")
		return errors.Wrap(err, "create schema_migrations")
	}
	for _, mig := range list {
		if err := mig.execute(db, logger); err != nil {
			logger.WithError(err).Errorf("Failed to execute migration #%d", mig.Version)
			return err
		}
	}
	return nil
}

// Version returns the highest successfully applied migration.
func Version(db *sqlx.DB) (uint, error) {
	var v sql.NullInt64
	err := db.Get(&v, `SELECT MAX(version) FROM schema_migrations WHERE success = 1`)
	if err != nil {
		return 0, errors.Wrap(err, "read schema version")
	}
	return uint(v.Int64), nil
}

func (mig dbMigration) execute(db *sqlx.DB, logger *logrus.Entry) error {
	var success int
	err := db.Get(&success, db.Rebind(`SELECT success FROM schema_migrations WHERE version = ?`), mig.Version)
	if err != nil && err != sql.ErrNoRows {
		logger.WithError(err).Error("Failed to fetch version information")
		return errors.Wrap(err, "read migration state")
	}
	if success == 1 {
		return nil
	}

	logger.Infof("Executing DB migration #%d", mig.Version)
	for i, query := range mig.Queries {
		logger.Debugf("Query %d of %d...", i+1, len(mig.Queries))
		if _, err := db.Exec(query); err != nil {
			logger.WithError(err).Errorf("Query #%d failed", i+1)
			_ = record(db, mig.Version, 0)
			return errors.Wrapf(err, "migration %d query %d", mig.Version, i+1)
		}
	}
	return record(db, mig.Version, 1)
}

func record(db *sqlx.DB, version uint, success int) error {
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin migration record")
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(tx.Rebind(`DELETE FROM schema_migrations WHERE version = ?`), version); err != nil {
		return errors.Wrap(err, "clear migration record")
	}
	if _, err := tx.Exec(tx.Rebind(`INSERT INTO schema_migrations (version, success) VALUES (?, ?)`), version, success); err != nil {
		return errors.Wrap(err, "write migration record")
	}
	return errors.Wrap(tx.Commit(), "commit migration record")
}
