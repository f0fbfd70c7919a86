package executor

import (
	"context"
	"fmt"
	"math"

	"github.com/satishbabariya/pgql/query/sqlgen"
)

// RowScanner is implemented by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanFunc maps the current row into a T.
type ScanFunc[T any] func(row RowScanner) (T, error)

// Pagination bounds the page size of list queries.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPagination returns 10 rows per page and never more than 200.
var DefaultPagination = Pagination{DefaultLimit: 10, MaxLimit: 200}

func (p Pagination) normalize() Pagination {
	if p.MaxLimit <= 0 {
		p.MaxLimit = DefaultPagination.MaxLimit
	}
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = DefaultPagination.DefaultLimit
	}
	if p.DefaultLimit > p.MaxLimit {
		p.DefaultLimit = p.MaxLimit
	}
	return p
}

// Clamp resolves optional client supplied limit and offset. The limit falls back
// to DefaultLimit and is kept within [1, MaxLimit]; negative offsets become 0.
func (p Pagination) Clamp(limit, offset *int) (int, int) {
	p = p.normalize()

	l := p.DefaultLimit
	if limit != nil {
		l = min(max(*limit, 1), p.MaxLimit)
	}

	o := 0
	if offset != nil && *offset > 0 {
		o = *offset
	}
	return l, o
}

// Page is one page of a list query together with the total number of matches.
type Page[T any] struct {
	Data       []T
	TotalCount int64
}

// PageQuery describes a paginated list query over one table.
type PageQuery struct {
	Table   string
	Columns []string
	Where   sqlgen.Clause
	OrderBy []sqlgen.OrderBy
	Limit   *int
	Offset  *int
}

// FindMany runs sel and scans every row.
func FindMany[T any](ctx context.Context, e *Executor, sel sqlgen.Select, scan ScanFunc[T]) ([]T, error) {
	stmt := sel.Build(e.dialect)

	var out []T
	event := &QueryEvent{Operation: "findMany", Table: sel.Table, Query: stmt.SQL, Args: stmt.Args}
	err := e.run(ctx, event, func() error {
		rows, err := e.q.QueryContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			out = append(out, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, newQueryError("findMany", sel.Table, stmt.SQL, err)
	}
	return out, nil
}

// FindOne runs sel with LIMIT 1 and scans the row. It returns ErrNotFound when
// nothing matches.
func FindOne[T any](ctx context.Context, e *Executor, sel sqlgen.Select, scan ScanFunc[T]) (T, error) {
	sel.Limit = 1
	sel.Offset = 0
	stmt := sel.Build(e.dialect)

	var out T
	event := &QueryEvent{Operation: "findOne", Table: sel.Table, Query: stmt.SQL, Args: stmt.Args}
	err := e.run(ctx, event, func() error {
		var err error
		out, err = scan(e.q.QueryRowContext(ctx, stmt.SQL, stmt.Args...))
		return err
	})
	if err != nil {
		return out, newQueryError("findOne", sel.Table, stmt.SQL, err)
	}
	return out, nil
}

// FindPage runs the COUNT and the paginated SELECT for q. Both statements use
// the same compiled clause, each bound from its own copy of the parameters, so
// TotalCount and Data always agree on the filter.
func FindPage[T any](ctx context.Context, e *Executor, q PageQuery, scan ScanFunc[T]) (Page[T], error) {
	limit, offset := e.pagination.Clamp(q.Limit, q.Offset)

	total, err := e.Count(ctx, q.Table, q.Where)
	if err != nil {
		return Page[T]{}, err
	}

	data, err := FindMany(ctx, e, sqlgen.Select{
		Table:   q.Table,
		Columns: q.Columns,
		Where:   q.Where,
		OrderBy: q.OrderBy,
		Limit:   limit,
		Offset:  offset,
	}, scan)
	if err != nil {
		return Page[T]{}, err
	}
	if data == nil {
		data = []T{}
	}

	return Page[T]{Data: data, TotalCount: total}, nil
}

// Insert creates one row and returns it. Dialects without RETURNING insert and
// read the row back by its generated id inside a transaction.
func Insert[T any](ctx context.Context, e *Executor, table string, values []sqlgen.Assignment, returning []string, scan ScanFunc[T]) (T, error) {
	if e.dialect.SupportsReturning() {
		return queryRow(ctx, e, "insert", table, sqlgen.Insert(e.dialect, table, values, returning), scan)
	}

	var out T
	err := e.WithTx(ctx, func(tx *Executor) error {
		res, err := tx.exec(ctx, "insert", table, sqlgen.Insert(tx.dialect, table, values, nil))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return newQueryError("insert", table, "", err)
		}
		if id > math.MaxInt32 {
			return newQueryError("insert", table, "", fmt.Errorf("generated id %d overflows Int", id))
		}
		out, err = FindOne(ctx, tx, sqlgen.Select{Table: table, Columns: returning, Where: tx.idClause(int32(id))}, scan)
		return err
	})
	return out, err
}

// Update changes the rows matching where and returns the updated row. It returns
// ErrNotFound when nothing matched.
func Update[T any](ctx context.Context, e *Executor, table string, set []sqlgen.Assignment, where sqlgen.Clause, returning []string, scan ScanFunc[T]) (T, error) {
	if e.dialect.SupportsReturning() {
		return queryRow(ctx, e, "update", table, sqlgen.Update(e.dialect, table, set, where, returning), scan)
	}

	var out T
	err := e.WithTx(ctx, func(tx *Executor) error {
		if _, err := tx.exec(ctx, "update", table, sqlgen.Update(tx.dialect, table, set, where, nil)); err != nil {
			return err
		}
		var err error
		out, err = FindOne(ctx, tx, sqlgen.Select{Table: table, Columns: returning, Where: where}, scan)
		return err
	})
	return out, err
}

func queryRow[T any](ctx context.Context, e *Executor, op, table string, stmt sqlgen.Statement, scan ScanFunc[T]) (T, error) {
	var out T
	event := &QueryEvent{Operation: op, Table: table, Query: stmt.SQL, Args: stmt.Args}
	err := e.run(ctx, event, func() error {
		var err error
		out, err = scan(e.q.QueryRowContext(ctx, stmt.SQL, stmt.Args...))
		return err
	})
	if err != nil {
		return out, newQueryError(op, table, stmt.SQL, err)
	}
	return out, nil
}
