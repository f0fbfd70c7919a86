package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables the loader reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "MAX_DB_CONNECTIONS", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
		"PGQL_DATABASE_URL", "PGQL_DATABASE_PROVIDER", "PGQL_DATABASE_MAX_CONNECTIONS",
		"PGQL_SERVER_ADDR", "PGQL_SERVER_CORS_ALLOWED_ORIGINS", "PGQL_QUERY_MAX_LIMIT",
		"PGQL_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewLoader(afero.NewMemMapFs(), "/work").Load("")
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/.pgql.yaml", []byte(`
database:
  provider: mysql
  max_connections: 4
query:
  max_limit: 50
log:
  format: json
`), 0o644))

	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/app")
	t.Setenv("PGQL_SERVER_ADDR", ":9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com")

	l := NewLoader(fs, "/work")
	cfg, err := l.Load("")
	require.NoError(t, err)

	assert.Equal(t, "/work/.pgql.yaml", l.ConfigFileUsed())
	assert.Equal(t, "mysql", cfg.Database.Provider)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/app", cfg.Database.URL)
	assert.Equal(t, 4, cfg.Database.MaxConnections)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "https://a.example.com", cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.Query.DefaultLimit)
	assert.Equal(t, 50, cfg.Query.MaxLimit)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("DATABASE_URL=postgres://env/app\nMAX_DB_CONNECTIONS=3\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/.env.local", []byte("MAX_DB_CONNECTIONS=7\n"), 0o644))

	cfg, err := NewLoader(fs, "/work").Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/app", cfg.Database.URL)
	assert.Equal(t, 7, cfg.Database.MaxConnections)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://shell/app")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("DATABASE_URL=postgres://env/app\n"), 0o644))

	cfg, err := NewLoader(fs, "/work").Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://shell/app", cfg.Database.URL)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	clearEnv(t)
	_, err := NewLoader(afero.NewMemMapFs(), "/work").Load("/work/missing.yaml")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()

	cfg := Default()
	cfg.Database.URL = "postgres://localhost/app"
	cfg.Query.MaxLimit = 100
	require.NoError(t, NewLoader(fs, "/work").Save(cfg, "/work/conf/.pgql.yaml"))

	got, err := NewLoader(fs, "/work").Load("/work/conf/.pgql.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.URL = "postgres://localhost/app"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"provider", func(c *Config) { c.Database.Provider = "oracle" }},
		{"url", func(c *Config) { c.Database.URL = "" }},
		{"pool", func(c *Config) { c.Database.MaxConnections = 0 }},
		{"limits", func(c *Config) { c.Query.DefaultLimit = 500 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWatch(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	l := NewLoader(afero.NewOsFs(), dir)
	_, err := l.Load(path)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		level string
	)
	l.Watch(func(cfg *Config, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		level = cfg.Log.Level
		mu.Unlock()
	})

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return level == "debug"
	}, 5*time.Second, 50*time.Millisecond)
}
