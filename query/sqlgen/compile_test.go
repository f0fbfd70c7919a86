package sqlgen

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/pgql/query/filter"
)

func TestCompileEmpty(t *testing.T) {
	compiler := NewCompiler(Postgres)

	t.Run("nil node", func(t *testing.T) {
		clause := compiler.Compile(nil)
		assert.True(t, clause.IsEmpty())
		assert.Empty(t, clause.Params)
		assert.Equal(t, "", clause.Where())
		assert.Equal(t, "", clause.SQL())
	})

	t.Run("nested empty nodes", func(t *testing.T) {
		node := &filter.Node{
			And: []*filter.Node{{}, {Or: []*filter.Node{{}, {And: []*filter.Node{{}}}}}},
			Or:  []*filter.Node{{}},
		}
		clause := compiler.Compile(node)
		assert.True(t, clause.IsEmpty())
		assert.Empty(t, clause.Params)
		assert.Equal(t, "", clause.Where())
	})

	t.Run("empty predicates", func(t *testing.T) {
		node := filter.On("age", filter.IntFilter{}).Where("name", filter.StringFilter{})
		clause := compiler.Compile(node)
		assert.True(t, clause.IsEmpty())
	})

	t.Run("empty children are skipped", func(t *testing.T) {
		node := &filter.Node{
			Or: []*filter.Node{{}, filter.On("id", filter.IntFilter{Equals: filter.Int(1)}), {}},
		}
		clause := compiler.Compile(node)
		assert.Equal(t, " WHERE (id = $1)", clause.Where())
		assert.Equal(t, []any{int64(1)}, clause.Params)
	})
}

func TestCompileOperators(t *testing.T) {
	compiler := NewCompiler(Postgres)

	tests := []struct {
		name   string
		node   *filter.Node
		sql    string
		params []any
	}{
		{
			name:   "int equals",
			node:   filter.On("id", filter.IntFilter{Equals: filter.Int(5)}),
			sql:    "id = $1",
			params: []any{int64(5)},
		},
		{
			name:   "gte and lte are independent",
			node:   filter.On("age", filter.IntFilter{Gte: filter.Int(18), Lte: filter.Int(65)}),
			sql:    "age >= $1 AND age <= $2",
			params: []any{int64(18), int64(65)},
		},
		{
			name:   "gt and lt",
			node:   filter.On("age", filter.IntFilter{Gt: filter.Int(1), Lt: filter.Int(9)}),
			sql:    "age > $1 AND age < $2",
			params: []any{int64(1), int64(9)},
		},
		{
			name:   "float",
			node:   filter.On("score", filter.FloatFilter{Gt: filter.Float(1.5)}),
			sql:    "score > $1",
			params: []any{1.5},
		},
		{
			name:   "string equals",
			node:   filter.On("email", filter.StringFilter{Equals: filter.String("a@b.c")}),
			sql:    "email = $1",
			params: []any{"a@b.c"},
		},
		{
			name:   "contains",
			node:   filter.On("title", filter.StringFilter{Contains: filter.String("go")}),
			sql:    "title LIKE $1",
			params: []any{"%go%"},
		},
		{
			name:   "starts with",
			node:   filter.On("title", filter.StringFilter{StartsWith: filter.String("go")}),
			sql:    "title LIKE $1",
			params: []any{"go%"},
		},
		{
			name:   "ends with",
			node:   filter.On("title", filter.StringFilter{EndsWith: filter.String("go")}),
			sql:    "title LIKE $1",
			params: []any{"%go"},
		},
		{
			name:   "contains insensitive",
			node:   filter.On("name", filter.StringFilter{ContainsInsensitive: filter.String("test")}),
			sql:    "name ILIKE $1",
			params: []any{"%test%"},
		},
		{
			name: "all string operators",
			node: filter.On("name", filter.StringFilter{
				Equals:              filter.String("a"),
				Contains:            filter.String("b"),
				StartsWith:          filter.String("c"),
				EndsWith:            filter.String("d"),
				ContainsInsensitive: filter.String("e"),
			}),
			sql:    "name = $1 AND name LIKE $2 AND name LIKE $3 AND name LIKE $4 AND name ILIKE $5",
			params: []any{"a", "%b%", "c%", "%d", "%e%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause := compiler.Compile(tt.node)
			assert.Equal(t, tt.sql, clause.SQL())
			assert.Equal(t, " WHERE "+tt.sql, clause.Where())
			assert.Equal(t, tt.params, clause.Params)
		})
	}
}

func TestCompileNestedOr(t *testing.T) {
	node := filter.On("id", filter.IntFilter{Equals: filter.Int(1)})
	node.Or = []*filter.Node{
		filter.On("id", filter.IntFilter{Equals: filter.Int(2)}),
		filter.On("name", filter.StringFilter{Equals: filter.String("Test")}),
	}

	clause := NewCompiler(Postgres).Compile(node)

	assert.Equal(t, " WHERE id = $1 AND ((id = $2) OR (name = $3))", clause.Where())
	assert.Equal(t, []any{int64(1), int64(2), "Test"}, clause.Params)
}

func TestCompileSingleElementOr(t *testing.T) {
	node := filter.On("age", filter.IntFilter{Gt: filter.Int(20)})
	node.Or = []*filter.Node{filter.On("name", filter.StringFilter{Equals: filter.String("x")})}

	clause := NewCompiler(Postgres).Compile(node)

	assert.Equal(t, "age > $1 AND (name = $2)", clause.SQL())
}

func TestCompileRenumbersPastNine(t *testing.T) {
	node := &filter.Node{}
	for i := int32(1); i <= 10; i++ {
		node.Where("id", filter.IntFilter{Gt: filter.Int(i)})
	}
	// the child's own $1 and $2 must become $11 and $12, leaving $1 untouched
	node.And = []*filter.Node{
		filter.On("age", filter.IntFilter{Gte: filter.Int(11), Lte: filter.Int(12)}),
	}

	clause := NewCompiler(Postgres).Compile(node)

	require.Len(t, clause.Params, 12)
	assert.Contains(t, clause.SQL(), "id > $1 AND")
	assert.Contains(t, clause.SQL(), "id > $10 AND")
	assert.Contains(t, clause.SQL(), "(age >= $11 AND age <= $12)")
	assert.NotContains(t, clause.SQL(), "$13")
	assertCorrespondence(t, clause)
}

func TestCompileCorrespondence(t *testing.T) {
	for name, node := range goldenTrees() {
		t.Run(name, func(t *testing.T) {
			assertCorrespondence(t, NewCompiler(Postgres).Compile(node))
		})
	}
}

// assertCorrespondence checks that the placeholders are exactly 1..len(params)
// and appear in increasing order.
func assertCorrespondence(t *testing.T, clause Clause) {
	t.Helper()
	got := clause.Fragment().Placeholders()
	require.Len(t, got, len(clause.Params))
	for i, k := range got {
		assert.Equal(t, i+1, k)
	}
}

func TestCompileDialects(t *testing.T) {
	node := filter.On("name", filter.StringFilter{ContainsInsensitive: filter.String("test")})
	node.Or = []*filter.Node{
		filter.On("id", filter.IntFilter{Equals: filter.Int(2)}),
		filter.On("id", filter.IntFilter{Equals: filter.Int(3)}),
	}

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Postgres, "name ILIKE $1 AND ((id = $2) OR (id = $3))"},
		{SQLite, "LOWER(name) LIKE LOWER(?1) AND ((id = ?2) OR (id = ?3))"},
		{MySQL, "LOWER(name) LIKE LOWER(?) AND ((id = ?) OR (id = ?))"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			clause := NewCompiler(tt.dialect).Compile(node)
			assert.Equal(t, tt.want, clause.SQL())
			assert.Equal(t, []any{"%test%", int64(2), int64(3)}, clause.Params)
		})
	}
}

func TestCompileDoesNotMutateInput(t *testing.T) {
	node := goldenTrees()["deep_nesting"]
	compiler := NewCompiler(Postgres)

	first := compiler.Compile(node)
	second := compiler.Compile(node)

	assert.Equal(t, first.SQL(), second.SQL())
	assert.Equal(t, first.Params, second.Params)
}

func TestClauseArgsIsACopy(t *testing.T) {
	clause := NewCompiler(Postgres).Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(1)}))

	args := clause.Args()
	args[0] = "changed"

	assert.Equal(t, int64(1), clause.Params[0])
	assert.Equal(t, []any{int64(1)}, clause.Args())
}

func goldenTrees() map[string]*filter.Node {
	nestedOr := filter.On("id", filter.IntFilter{Equals: filter.Int(1)})
	nestedOr.Or = []*filter.Node{
		filter.On("id", filter.IntFilter{Equals: filter.Int(2)}),
		filter.On("name", filter.StringFilter{Equals: filter.String("Test")}),
	}

	rangeAndSearch := filter.On("age", filter.IntFilter{Gte: filter.Int(18), Lte: filter.Int(65)}).
		Where("name", filter.StringFilter{ContainsInsensitive: filter.String("test")})
	rangeAndSearch.And = []*filter.Node{
		filter.On("email", filter.StringFilter{EndsWith: filter.String(".com")}),
	}

	deep := filter.On("id", filter.IntFilter{Gt: filter.Int(0)})
	deep.And = []*filter.Node{
		filter.AnyOf(
			filter.On("name", filter.StringFilter{StartsWith: filter.String("A")}),
			filter.On("name", filter.StringFilter{StartsWith: filter.String("B")}),
		),
		filter.On("age", filter.IntFilter{Lt: filter.Int(30)}),
	}
	deep.Or = []*filter.Node{
		filter.On("email", filter.StringFilter{Contains: filter.String("@example")}),
		{},
	}

	return map[string]*filter.Node{
		"nested_or":        nestedOr,
		"range_and_search": rangeAndSearch,
		"deep_nesting":     deep,
	}
}

func TestCompileGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for name, node := range goldenTrees() {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			for _, d := range []Dialect{Postgres, SQLite, MySQL} {
				clause := NewCompiler(d).Compile(node)
				fmt.Fprintf(&buf, "%s: %s\n", d.Name(), clause.SQL())
			}
			fmt.Fprintf(&buf, "params: %v\n", NewCompiler(Postgres).Compile(node).Params)
			g.Assert(t, name, buf.Bytes())
		})
	}
}
