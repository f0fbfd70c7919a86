// Package client opens and checks the database connection pool.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/hashicorp/go-version"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/satishbabariya/pgql/internal/debug"
	"github.com/satishbabariya/pgql/query/sqlgen"
)

// MinPostgresVersion is the oldest server version the service is tested against.
var MinPostgresVersion = version.Must(version.NewVersion("12"))

// Options configures the pool
type Options struct {
	// Provider is postgres, pgx, mysql or sqlite. Empty means postgres.
	Provider string
	URL      string

	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// ConnectTimeout bounds the initial ping. Zero means 5s.
	ConnectTimeout time.Duration
}

// Client wraps a database/sql pool with its provider
type Client struct {
	db       *sql.DB
	provider string
}

// getDriverName maps provider names to Go database driver names
func getDriverName(provider string) string {
	switch strings.ToLower(provider) {
	case "", "postgresql", "postgres":
		return "postgres"
	case "pgx":
		return "pgx"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return ""
	}
}

// Open creates the pool and verifies connectivity.
func Open(ctx context.Context, opts Options) (*Client, error) {
	driverName := getDriverName(opts.Provider)
	if driverName == "" {
		return nil, fmt.Errorf("unsupported provider: %s", opts.Provider)
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := sql.Open(driverName, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	c := &Client{db: db, provider: driverName}

	if err := c.Connect(ctx, opts.ConnectTimeout); err != nil {
		db.Close()
		return nil, err
	}

	debug.Info("database connection pool created", "provider", driverName, "max_connections", maxConns)
	return c, nil
}

// FromDB wraps an existing pool
func FromDB(provider string, db *sql.DB) *Client {
	name := getDriverName(provider)
	if name == "" {
		name = provider
	}
	return &Client{db: db, provider: name}
}

// Connect pings the database, bounded by timeout.
func (c *Client) Connect(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// Close closes the pool
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Provider returns the driver name in use
func (c *Client) Provider() string {
	return c.provider
}

// Dialect returns the SQL dialect matching the provider.
func (c *Client) Dialect() sqlgen.Dialect {
	return sqlgen.DialectFor(c.provider)
}

// ServerVersion asks the server for its version.
func (c *Client) ServerVersion(ctx context.Context) (*version.Version, error) {
	var query string
	switch c.provider {
	case "postgres", "pgx":
		query = "SHOW server_version"
	case "mysql":
		query = "SELECT VERSION()"
	case "sqlite3":
		query = "SELECT sqlite_version()"
	default:
		return nil, fmt.Errorf("unsupported provider: %s", c.provider)
	}

	var raw string
	if err := c.db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to query server version: %w", err)
	}
	return ParseServerVersion(raw)
}

// ParseServerVersion parses version strings such as "16.2 (Debian 16.2-1)" or
// "8.0.36-0ubuntu0.22.04.1".
func ParseServerVersion(raw string) (*version.Version, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " ("); i > 0 {
		s = s[:i]
	}
	v, err := version.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("unrecognized server version %q: %w", raw, err)
	}
	return v, nil
}

// CheckServerVersion logs a warning when a PostgreSQL server is older than
// MinPostgresVersion. It never fails the caller for an old server.
func (c *Client) CheckServerVersion(ctx context.Context) (*version.Version, error) {
	v, err := c.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}
	if (c.provider == "postgres" || c.provider == "pgx") && v.LessThan(MinPostgresVersion) {
		debug.Warn("postgres server is older than the supported minimum",
			"server_version", v.String(),
			"minimum", MinPostgresVersion.String(),
		)
	} else {
		debug.Debug("database server version", "provider", c.provider, "version", v.String())
	}
	return v, nil
}
