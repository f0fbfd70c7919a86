// Package executor runs compiled filters against a database/sql pool.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/satishbabariya/pgql/internal/debug"
	"github.com/satishbabariya/pgql/query/bind"
	"github.com/satishbabariya/pgql/query/filter"
	"github.com/satishbabariya/pgql/query/sqlgen"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Executor executes statements and maps results
type Executor struct {
	db          *sql.DB
	q           querier
	dialect     sqlgen.Dialect
	compiler    *sqlgen.Compiler
	pagination  Pagination
	middlewares []Middleware
	logger      *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithMiddleware appends middlewares to the chain, outermost first.
func WithMiddleware(m ...Middleware) Option {
	return func(e *Executor) {
		e.middlewares = append(e.middlewares, m...)
	}
}

// WithPagination overrides the default page size limits.
func WithPagination(p Pagination) Option {
	return func(e *Executor) {
		e.pagination = p.normalize()
	}
}

// WithLogger sets the logger used for compiled clause diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an executor over db for the given dialect
func New(db *sql.DB, d sqlgen.Dialect, opts ...Option) *Executor {
	if d == nil {
		d = sqlgen.Postgres
	}
	e := &Executor{
		db:         db,
		q:          db,
		dialect:    d,
		compiler:   sqlgen.NewCompiler(d),
		pagination: DefaultPagination,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = debug.Logger()
	}
	return e
}

// Dialect returns the SQL dialect statements are rendered for
func (e *Executor) Dialect() sqlgen.Dialect {
	return e.dialect
}

// Pagination returns the page size limits in effect.
func (e *Executor) Pagination() Pagination {
	return e.pagination
}

// DB returns the underlying pool
func (e *Executor) DB() *sql.DB {
	return e.db
}

// Compile compiles node once for the request. The same clause is meant to be
// shared by every statement the request runs.
func (e *Executor) Compile(node *filter.Node) sqlgen.Clause {
	clause := e.compiler.Compile(node)
	if !clause.IsEmpty() {
		e.logger.Debug("compiled filter",
			"dialect", e.dialect.Name(),
			"where", clause.SQL(),
			"kinds", bindKinds(bind.Args(clause.Args())),
		)
	}
	return clause
}

// WithTx runs fn with an executor bound to a transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (e *Executor) WithTx(ctx context.Context, fn func(tx *Executor) error) error {
	if e.db == nil {
		// already inside a transaction
		return fn(e)
	}

	sqlTx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txe := *e
	txe.db = nil
	txe.q = sqlTx

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txe); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of rows in table matching where.
func (e *Executor) Count(ctx context.Context, table string, where sqlgen.Clause) (int64, error) {
	stmt := sqlgen.Count(e.dialect, table, where)

	var n int64
	event := &QueryEvent{Operation: "count", Table: table, Query: stmt.SQL, Args: stmt.Args}
	err := e.run(ctx, event, func() error {
		return e.q.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n)
	})
	if err != nil {
		return 0, newQueryError("count", table, stmt.SQL, err)
	}
	return n, nil
}

// Delete removes the rows matching where and returns how many were removed.
func (e *Executor) Delete(ctx context.Context, table string, where sqlgen.Clause) (int64, error) {
	stmt := sqlgen.Delete(e.dialect, table, where)

	var affected int64
	event := &QueryEvent{Operation: "delete", Table: table, Query: stmt.SQL, Args: stmt.Args}
	err := e.run(ctx, event, func() error {
		res, err := e.q.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, newQueryError("delete", table, stmt.SQL, err)
	}
	return affected, nil
}

// exec runs a statement that returns no rows.
func (e *Executor) exec(ctx context.Context, op, table string, stmt sqlgen.Statement) (sql.Result, error) {
	var res sql.Result
	event := &QueryEvent{Operation: op, Table: table, Query: stmt.SQL, Args: stmt.Args}
	err := e.run(ctx, event, func() error {
		var err error
		res, err = e.q.ExecContext(ctx, stmt.SQL, stmt.Args...)
		return err
	})
	if err != nil {
		return nil, newQueryError(op, table, stmt.SQL, err)
	}
	return res, nil
}

// idClause matches a single row by its integer primary key.
func (e *Executor) idClause(id int32) sqlgen.Clause {
	return e.compiler.Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(id)}))
}
