package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentShift(t *testing.T) {
	// text that looks like a placeholder is never rewritten
	f := Concat(Text("a = "), Param(1), Text(" AND note = '$1' AND b = "), Param(2))

	shifted := f.Shift(11)

	assert.Equal(t, "a = $12 AND note = '$1' AND b = $13", shifted.String())
	assert.Equal(t, []int{12, 13}, shifted.Placeholders())
	assert.Equal(t, "a = $1 AND note = '$1' AND b = $2", f.String(), "original is unchanged")
}

func TestJoinFragmentsSkipsEmpty(t *testing.T) {
	f := JoinFragments(" OR ", Fragment{}, Text("x"), Text(""), Concat(Text("y = "), Param(1)))
	assert.Equal(t, "x OR y = $1", f.String())
	assert.True(t, JoinFragments(" AND ").IsEmpty())
}

func TestFragmentRender(t *testing.T) {
	f := Concat(Text("id = "), Param(3)).Wrap()

	assert.Equal(t, "(id = $3)", f.Render(Postgres))
	assert.Equal(t, "(id = ?3)", f.Render(SQLite))
	assert.Equal(t, "(id = ?)", f.Render(MySQL))
}

func TestDialectFor(t *testing.T) {
	tests := map[string]Dialect{
		"postgresql": Postgres,
		"postgres":   Postgres,
		"pgx":        Postgres,
		"sqlite":     SQLite,
		"sqlite3":    SQLite,
		"MySQL":      MySQL,
		"oracle":     Postgres,
	}
	for provider, want := range tests {
		t.Run(provider, func(t *testing.T) {
			assert.Equal(t, want.Name(), DialectFor(provider).Name())
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"users"`, Postgres.QuoteIdentifier("users"))
	assert.Equal(t, `"we""ird"`, SQLite.QuoteIdentifier(`we"ird`))
	assert.Equal(t, "`posts`", MySQL.QuoteIdentifier("posts"))
	assert.False(t, MySQL.SupportsReturning())
	assert.True(t, Postgres.SupportsReturning())
}
