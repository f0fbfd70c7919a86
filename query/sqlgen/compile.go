package sqlgen

import (
	"github.com/satishbabariya/pgql/query/filter"
)

// Compiler lowers filter trees into WHERE clauses for one dialect.
// It holds no mutable state and is safe for concurrent use.
type Compiler struct {
	dialect Dialect
}

// NewCompiler creates a compiler for the given dialect (PostgreSQL when nil).
func NewCompiler(d Dialect) *Compiler {
	if d == nil {
		d = Postgres
	}
	return &Compiler{dialect: d}
}

// Dialect returns the dialect the compiler renders for
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// Compile turns a filter node into a clause. A nil or all-empty node yields an
// empty clause that matches every row.
func (c *Compiler) Compile(node *filter.Node) Clause {
	frags, params := c.compileNode(node)
	if len(frags) == 0 {
		return Clause{dialect: c.dialect}
	}
	return Clause{
		Fragments: frags,
		Params:    params,
		dialect:   c.dialect,
	}
}

// compileNode returns the top-level fragments of node and its parameters.
// Placeholders inside the fragments are numbered from 1 in the order the
// parameters were appended.
func (c *Compiler) compileNode(node *filter.Node) ([]Fragment, []any) {
	if node == nil {
		return nil, nil
	}

	var frags []Fragment
	var params []any

	for _, ff := range node.Fields {
		if ff.Predicate == nil {
			continue
		}
		for _, cond := range ff.Predicate.Conditions() {
			frag, ok := c.condition(ff.Column, cond.Op, len(params)+1)
			if !ok {
				continue
			}
			params = append(params, cond.Value)
			frags = append(frags, frag)
		}
	}

	if group := c.compileGroup(node.And, " AND ", &params); !group.IsEmpty() {
		frags = append(frags, group)
	}
	if group := c.compileGroup(node.Or, " OR ", &params); !group.IsEmpty() {
		frags = append(frags, group)
	}

	return frags, params
}

// compileGroup compiles each child on its own, shifts its placeholders past the
// parameters already in params and appends the child's parameters.
func (c *Compiler) compileGroup(children []*filter.Node, sep string, params *[]any) Fragment {
	var parts []Fragment
	for _, child := range children {
		childFrags, childParams := c.compileNode(child)
		clause := JoinFragments(" AND ", childFrags...)
		if clause.IsEmpty() {
			continue
		}
		parts = append(parts, clause.Shift(len(*params)).Wrap())
		*params = append(*params, childParams...)
	}

	group := JoinFragments(sep, parts...)
	if len(parts) > 1 {
		// keep "a AND (b) OR (c)" from regrouping as "(a AND b) OR c"
		group = group.Wrap()
	}
	return group
}

// condition renders one comparison against placeholder k.
func (c *Compiler) condition(column string, op filter.Operator, k int) (Fragment, bool) {
	switch op {
	case filter.OpEquals, filter.OpGt, filter.OpLt, filter.OpGte, filter.OpLte, filter.OpLike:
		return Concat(Text(column+" "+string(op)+" "), Param(k)), true
	case filter.OpILike:
		return c.dialect.ILike(column, Param(k)), true
	default:
		return Fragment{}, false
	}
}
