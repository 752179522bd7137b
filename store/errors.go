package store

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned by lookups when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConstraint matches every ConstraintViolation with errors.Is.
	ErrConstraint = errors.New("constraint violation")
)

// ConstraintViolation reports a write rejected because it breaks an
// integrity rule: a foreign key, a uniqueness, a check or a validation done
// before the statement runs. It is never retried by the store.
type ConstraintViolation struct {
	Table string
	Op    string
	Err   error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s %s: constraint violation: %v", e.Op, e.Table, e.Err)
}

func (e *ConstraintViolation) Unwrap() error { return e.Err }

func (e *ConstraintViolation) Is(target error) bool { return target == ErrConstraint }

// classify turns driver errors into ConstraintViolation when they are one.
func classify(err error, table, op string) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &ConstraintViolation{Table: table, Op: op, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}

// invalid wraps a validation error of the write boundary.
func invalid(table string, err error) error {
	if err == nil {
		return nil
	}
	return &ConstraintViolation{Table: table, Op: "validate", Err: err}
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error, table, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", table, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %q: %w", table, id, err)
}
