package sqlgen

import (
	"fmt"
	"strings"
)

// Dialect captures the per-database differences the compiler and the
// statement builders care about.
type Dialect interface {
	// Name returns the provider name, e.g. "postgres"
	Name() string
	// Placeholder renders the bind marker for the k-th parameter (1-based).
	Placeholder(k int) string
	// ILike builds a case-insensitive pattern match of column against param.
	ILike(column string, param Fragment) Fragment
	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(name string) string
	// SupportsReturning reports whether INSERT/UPDATE ... RETURNING is available.
	SupportsReturning() bool
}

var (
	// Postgres renders $1, $2, ... and native ILIKE.
	Postgres Dialect = postgresDialect{}
	// SQLite renders numbered ?1, ?2, ... markers.
	SQLite Dialect = sqliteDialect{}
	// MySQL renders positional ? markers.
	MySQL Dialect = mysqlDialect{}
)

// DialectFor returns the dialect for a provider name. Unknown providers get
// PostgreSQL.
func DialectFor(provider string) Dialect {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres", "pgx":
		return Postgres
	case "sqlite", "sqlite3":
		return SQLite
	case "mysql":
		return MySQL
	default:
		return Postgres
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(k int) string { return fmt.Sprintf("$%d", k) }

func (postgresDialect) ILike(column string, param Fragment) Fragment {
	return Concat(Text(column+" ILIKE "), param)
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) SupportsReturning() bool { return true }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(k int) string { return fmt.Sprintf("?%d", k) }

// SQLite has no ILIKE; LIKE is only case-insensitive for ASCII.
func (sqliteDialect) ILike(column string, param Fragment) Fragment {
	return Concat(Text("LOWER("+column+") LIKE LOWER("), param, Text(")"))
}

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) SupportsReturning() bool { return true }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

// Positional markers carry no index; ordering is preserved because fragments
// always reference parameters in increasing order.
func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) ILike(column string, param Fragment) Fragment {
	return Concat(Text("LOWER("+column+") LIKE LOWER("), param, Text(")"))
}

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) SupportsReturning() bool { return false }
