package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/pgql/query/bind"
)

// Statement is a rendered SQL statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// OrderBy represents an ORDER BY term
type OrderBy struct {
	Column string
	Desc   bool
}

// Expr is SQL written in place of a bound value, e.g. CURRENT_TIMESTAMP.
type Expr string

// Assignment is one column/value pair of an INSERT or UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// Select describes a SELECT over one table.
type Select struct {
	Table   string
	Columns []string
	Where   Clause
	OrderBy []OrderBy
	// Limit and Offset are written as integer literals; zero omits them.
	Limit  int
	Offset int
}

// Build renders the SELECT. Filter parameters are bound on every call, so
// statements built from the same clause never share an argument slice.
func (s Select) Build(d Dialect) Statement {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if len(s.Columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(s.Columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(d.QuoteIdentifier(s.Table))
	sb.WriteString(whereSQL(s.Where, d, 0))

	if len(s.OrderBy) > 0 {
		terms := make([]string, len(s.OrderBy))
		for i, ob := range s.OrderBy {
			dir := "ASC"
			if ob.Desc {
				dir = "DESC"
			}
			terms[i] = ob.Column + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if s.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", s.Limit)
	}
	if s.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", s.Offset)
	}

	return Statement{SQL: sb.String(), Args: bind.Args(s.Where.Args())}
}

// Count renders SELECT COUNT(*) over table with the given clause.
func Count(d Dialect, table string, where Clause) Statement {
	return Statement{
		SQL:  "SELECT COUNT(*) FROM " + d.QuoteIdentifier(table) + whereSQL(where, d, 0),
		Args: bind.Args(where.Args()),
	}
}

// Insert renders an INSERT of values. Returning columns are only emitted when
// the dialect supports RETURNING.
func Insert(d Dialect, table string, values []Assignment, returning []string) Statement {
	cols := make([]string, 0, len(values))
	marks := make([]string, 0, len(values))
	var args []any

	for _, a := range values {
		cols = append(cols, d.QuoteIdentifier(a.Column))
		if expr, ok := a.Value.(Expr); ok {
			marks = append(marks, string(expr))
			continue
		}
		args = append(args, a.Value)
		marks = append(marks, d.Placeholder(len(args)))
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return Statement{SQL: sql + returningSQL(d, returning), Args: args}
}

// Update renders an UPDATE ... SET ... with the clause placeholders numbered
// after the SET values.
func Update(d Dialect, table string, set []Assignment, where Clause, returning []string) Statement {
	parts := make([]string, 0, len(set))
	var args []any

	for _, a := range set {
		if expr, ok := a.Value.(Expr); ok {
			parts = append(parts, d.QuoteIdentifier(a.Column)+" = "+string(expr))
			continue
		}
		args = append(args, a.Value)
		parts = append(parts, d.QuoteIdentifier(a.Column)+" = "+d.Placeholder(len(args)))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", d.QuoteIdentifier(table), strings.Join(parts, ", "))
	sql += whereSQL(where, d, len(args))
	args = append(args, bind.Args(where.Args())...)

	return Statement{SQL: sql + returningSQL(d, returning), Args: args}
}

// Delete renders a DELETE. An empty clause deletes nothing.
func Delete(d Dialect, table string, where Clause) Statement {
	sql := "DELETE FROM " + d.QuoteIdentifier(table)
	if where.IsEmpty() {
		return Statement{SQL: sql + " WHERE 1=0"}
	}
	return Statement{
		SQL:  sql + whereSQL(where, d, 0),
		Args: bind.Args(where.Args()),
	}
}

func whereSQL(where Clause, d Dialect, offset int) string {
	if where.IsEmpty() {
		return ""
	}
	return " WHERE " + where.Fragment().Shift(offset).Render(d)
}

func returningSQL(d Dialect, columns []string) string {
	if len(columns) == 0 || !d.SupportsReturning() {
		return ""
	}
	return " RETURNING " + strings.Join(columns, ", ")
}
