package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a record is missing, including when an
	// UPDATE affects zero rows. Callers must surface it distinctly from
	// transport errors: zero rows affected usually means a permissions or
	// stale-id problem, not connectivity.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError wraps unexpected driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")
)

// SQLExecutor is satisfied by *sql.DB and *sql.Tx, so repository methods can
// run standalone or inside a transaction.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows, for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}
