// Package repository implements data access for the venue tables on top of
// sqlx. Queries are written with ? placeholders and rebound per driver;
// driver errors are classified into ErrNotFound, ErrConflict,
// ErrInvalidReference and ErrOutOfRange.
package repository

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when a foreign key rejects a write.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrOutOfRange is returned when a check constraint rejects a write.
	ErrOutOfRange = errors.New("value out of range")
)

// UnknownArtistError reports an artist id that has no row.
type UnknownArtistError struct {
	ID int64
}

func (e *UnknownArtistError) Error() string {
	return fmt.Sprintf("unknown artist id %d", e.ID)
}

// constraintError keeps the driver error for logging while matching one of
// the sentinels above with errors.Is.
type constraintError struct {
	kind  error
	cause error
}

func (e *constraintError) Error() string        { return e.kind.Error() + ": " + e.cause.Error() }
func (e *constraintError) Is(target error) bool { return target == e.kind }
func (e *constraintError) Unwrap() error        { return e.cause }

// classify converts driver specific errors into the repository taxonomy.
// Errors it does not recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if kind := constraintKind(err); kind != nil {
		return &constraintError{kind: kind, cause: err}
	}
	return err
}

func constraintKind(err error) error {
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		switch my.Number {
		case 1062:
			return ErrConflict
		case 1451, 1452:
			return ErrInvalidReference
		case 3819:
			return ErrOutOfRange
		}
		return nil
	}

	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		switch pg.Code {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrInvalidReference
		case "23514":
			return ErrOutOfRange
		}
		return nil
	}

	var lite sqlite3.Error
	if errors.As(err, &lite) && lite.Code == sqlite3.ErrConstraint {
		switch lite.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrConflict
		case sqlite3.ErrConstraintForeignKey:
			return ErrInvalidReference
		case sqlite3.ErrConstraintCheck:
			return ErrOutOfRange
		}
	}
	return nil
}
