package sqlgen

// Clause is the result of compiling a filter: top-level condition fragments
// and the parameters they reference. The k-th placeholder in the fragments
// always refers to Params[k-1].
type Clause struct {
	Fragments []Fragment
	Params    []any

	dialect Dialect
}

// IsEmpty reports whether the clause has no conditions (matches all rows).
func (c Clause) IsEmpty() bool {
	return len(c.Fragments) == 0
}

// Fragment returns the top-level fragments joined with AND.
func (c Clause) Fragment() Fragment {
	return JoinFragments(" AND ", c.Fragments...)
}

// SQL renders the condition without the WHERE keyword.
func (c Clause) SQL() string {
	if c.IsEmpty() {
		return ""
	}
	return c.Fragment().Render(c.Dialect())
}

// Where renders " WHERE <condition>", or "" for an empty clause, ready to be
// appended after a FROM clause.
func (c Clause) Where() string {
	if c.IsEmpty() {
		return ""
	}
	return " WHERE " + c.SQL()
}

// Args returns a fresh copy of the parameters. Each statement executed with the
// clause should get its own copy.
func (c Clause) Args() []any {
	out := make([]any, len(c.Params))
	copy(out, c.Params)
	return out
}

// Dialect returns the dialect the clause renders for
func (c Clause) Dialect() Dialect {
	if c.dialect == nil {
		return Postgres
	}
	return c.dialect
}
