package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Error types for query execution.
var (
	// ErrNotFound is returned when a statement that must touch a row did not.
	ErrNotFound = errors.New("record not found")

	// ErrUniqueConstraint is returned when a unique constraint is violated.
	ErrUniqueConstraint = errors.New("unique constraint violation")

	// ErrForeignKeyConstraint is returned when a foreign key constraint is violated.
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")

	// ErrNullConstraint is returned when a NOT NULL constraint is violated.
	ErrNullConstraint = errors.New("null constraint violation")

	// ErrTimeout is returned when the statement context expired.
	ErrTimeout = errors.New("operation timeout")

	// ErrCanceled is returned when the statement context was canceled.
	ErrCanceled = errors.New("operation canceled")
)

// QueryError represents a failed statement with context.
type QueryError struct {
	Operation string
	Table     string
	Query     string
	Cause     error

	kind error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on %s: %v", e.Operation, e.Table, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is matches the classified sentinel as well as anything the cause matches.
func (e *QueryError) Is(target error) bool {
	if e.kind != nil && target == e.kind {
		return true
	}
	return errors.Is(e.Cause, target)
}

// Kind returns the sentinel the driver error was classified as, or nil.
func (e *QueryError) Kind() error {
	return e.kind
}

func newQueryError(op, table, query string, cause error) *QueryError {
	return &QueryError{
		Operation: op,
		Table:     table,
		Query:     query,
		Cause:     cause,
		kind:      classify(cause),
	}
}

// classify maps driver specific errors onto the package sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return ErrUniqueConstraint
		case 1451, 1452:
			return ErrForeignKeyConstraint
		case 1048:
			return ErrNullConstraint
		}
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrUniqueConstraint
		case sqlite3.ErrConstraintForeignKey:
			return ErrForeignKeyConstraint
		case sqlite3.ErrConstraintNotNull:
			return ErrNullConstraint
		}
	}
	return nil
}

func classifySQLState(code string) error {
	switch code {
	case "23505":
		return ErrUniqueConstraint
	case "23503":
		return ErrForeignKeyConstraint
	case "23502":
		return ErrNullConstraint
	case "57014":
		return ErrCanceled
	}
	return nil
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueConstraint checks if an error is a unique constraint violation.
func IsUniqueConstraint(err error) bool {
	return errors.Is(err, ErrUniqueConstraint)
}

// IsForeignKeyConstraint checks if an error is a foreign key constraint violation.
func IsForeignKeyConstraint(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}
