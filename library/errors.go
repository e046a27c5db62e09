package library

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrSelection          = errors.New("nothing selected")
	ErrUnavailable        = errors.New("no available copies for this book")
	ErrPersistence        = errors.New("database write failed")
	ErrConflict           = errors.New("value already in use")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed form value. No write has
// been attempted when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SelectionError reports an update, delete or return with no row chosen.
type SelectionError struct {
	Entity string
	Action string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("select a %s to %s", e.Entity, e.Action)
}

func (e *SelectionError) Is(target error) bool { return target == ErrSelection }

// PersistenceError wraps a failed write with the operation that caused it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	if target == ErrPersistence {
		return true
	}
	return target == ErrConflict && isUniqueViolation(e.Err)
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// isUniqueViolation recognises UNIQUE constraint failures from either driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
