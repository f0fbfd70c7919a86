package sqlgen

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/pgql/query/filter"
)

func TestSelectBuild(t *testing.T) {
	clause := NewCompiler(Postgres).Compile(filter.On("age", filter.IntFilter{Gte: filter.Int(18)}))

	stmt := Select{
		Table:   "users",
		Columns: []string{"id", "name"},
		Where:   clause,
		OrderBy: []OrderBy{{Column: "id"}},
		Limit:   10,
		Offset:  20,
	}.Build(Postgres)

	assert.Equal(t, `SELECT id, name FROM "users" WHERE age >= $1 ORDER BY id ASC LIMIT 10 OFFSET 20`, stmt.SQL)
	assert.Equal(t, []any{int32(18)}, stmt.Args)
}

func TestSelectBuildWithoutFilter(t *testing.T) {
	stmt := Select{
		Table:   "posts",
		OrderBy: []OrderBy{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
		Limit:   5,
	}.Build(MySQL)

	assert.Equal(t, "SELECT * FROM `posts` ORDER BY created_at DESC, id DESC LIMIT 5", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestCountAndSelectShareClause(t *testing.T) {
	node := filter.On("name", filter.StringFilter{Equals: filter.String("2024-01-01T00:00:00Z")})
	node.Or = []*filter.Node{filter.On("id", filter.IntFilter{Equals: filter.Int(1)})}
	clause := NewCompiler(Postgres).Compile(node)

	count := Count(Postgres, "users", clause)
	sel := Select{Table: "users", Where: clause, Limit: 10}.Build(Postgres)

	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE name = $1 AND (id = $2)`, count.SQL)
	assert.Equal(t, `SELECT * FROM "users" WHERE name = $1 AND (id = $2) LIMIT 10`, sel.SQL)
	assert.Equal(t, count.Args, sel.Args)

	// each statement is bound from its own copy
	count.Args[1] = "changed"
	assert.Equal(t, int32(1), sel.Args[1])
	assert.Equal(t, int64(1), clause.Params[1])
}

func TestInsert(t *testing.T) {
	values := []Assignment{
		{Column: "user_id", Value: int32(1)},
		{Column: "title", Value: "Hello"},
		{Column: "content", Value: sql.NullString{}},
		{Column: "created_at", Value: Expr("CURRENT_TIMESTAMP")},
	}
	returning := []string{"id", "title"}

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Postgres, `INSERT INTO "posts" ("user_id", "title", "content", "created_at") VALUES ($1, $2, $3, CURRENT_TIMESTAMP) RETURNING id, title`},
		{SQLite, `INSERT INTO "posts" ("user_id", "title", "content", "created_at") VALUES (?1, ?2, ?3, CURRENT_TIMESTAMP) RETURNING id, title`},
		{MySQL, "INSERT INTO `posts` (`user_id`, `title`, `content`, `created_at`) VALUES (?, ?, ?, CURRENT_TIMESTAMP)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			stmt := Insert(tt.dialect, "posts", values, returning)
			assert.Equal(t, tt.want, stmt.SQL)
			assert.Equal(t, []any{int32(1), "Hello", sql.NullString{}}, stmt.Args)
		})
	}
}

func TestUpdateNumbersClauseAfterSet(t *testing.T) {
	clause := NewCompiler(Postgres).Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(7)}))
	set := []Assignment{
		{Column: "title", Value: "New"},
		{Column: "content", Value: "Body"},
		{Column: "updated_at", Value: Expr("CURRENT_TIMESTAMP")},
	}

	stmt := Update(Postgres, "posts", set, clause, []string{"id"})

	assert.Equal(t, `UPDATE "posts" SET "title" = $1, "content" = $2, "updated_at" = CURRENT_TIMESTAMP WHERE id = $3 RETURNING id`, stmt.SQL)
	assert.Equal(t, []any{"New", "Body", int32(7)}, stmt.Args)
}

func TestDelete(t *testing.T) {
	clause := NewCompiler(SQLite).Compile(filter.On("id", filter.IntFilter{Equals: filter.Int(3)}))

	stmt := Delete(SQLite, "posts", clause)
	assert.Equal(t, `DELETE FROM "posts" WHERE id = ?1`, stmt.SQL)
	assert.Equal(t, []any{int32(3)}, stmt.Args)

	guarded := Delete(SQLite, "posts", Clause{})
	assert.Equal(t, `DELETE FROM "posts" WHERE 1=0`, guarded.SQL)
	assert.Empty(t, guarded.Args)
}
