// Package config loads pgql settings from config files, .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem used by the CLI.
var AppFs = afero.NewOsFs()

// FileName is the config file written by `pgql init`.
const FileName = ".pgql.yaml"

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Query    QueryConfig    `mapstructure:"query"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig selects and sizes the connection pool.
type DatabaseConfig struct {
	Provider       string `mapstructure:"provider"`
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
}

// QueryConfig bounds list queries.
type QueryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// LogConfig configures internal/debug.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"database.provider":           "postgres",
	"database.max_connections":    10,
	"server.addr":                 ":8000",
	"server.cors_allowed_origins": "*",
	"query.default_limit":         10,
	"query.max_limit":             200,
	"log.level":                   "info",
	"log.format":                  "text",
}

// Well-known variables accepted next to the PGQL_ prefixed ones.
var envAliases = map[string]string{
	"database.url":                "DATABASE_URL",
	"database.max_connections":    "MAX_DB_CONNECTIONS",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
	"log.level":                   "LOG_LEVEL",
}

// Loader reads configuration through one viper instance so that it can be
// watched and saved later.
type Loader struct {
	fs  afero.Fs
	dir string
	v   *viper.Viper
}

// NewLoader creates a loader over fs that looks for files in dir, the home
// directory and $HOME/.config/pgql.
func NewLoader(fs afero.Fs, dir string) *Loader {
	if fs == nil {
		fs = AppFs
	}
	if dir == "" {
		dir = "."
	}
	v := viper.New()
	v.SetFs(fs)
	return &Loader{fs: fs, dir: dir, v: v}
}

// Load reads configFile, or searches for .pgql.yaml when it is empty. A
// missing searched file is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}

	l.v.SetEnvPrefix("PGQL")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
	for key, alias := range envAliases {
		envKey := "PGQL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := l.v.BindEnv(key, envKey, alias); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(l.dir)
		if home, err := homedir.Dir(); err == nil {
			l.v.AddConfigPath(home)
			l.v.AddConfigPath(filepath.Join(home, ".config", "pgql"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv applies .env without overriding set variables, then .env.local
// with override.
func (l *Loader) loadDotEnv() error {
	for _, f := range []struct {
		name     string
		override bool
	}{
		{".env", false},
		{".env.local", true},
	} {
		path := filepath.Join(l.dir, f.name)
		data, err := afero.ReadFile(l.fs, path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		vars, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for k, v := range vars {
			if !f.override && os.Getenv(k) != "" {
				continue
			}
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration every time the config
// file changes. It does nothing when no file was read.
func (l *Loader) Watch(onChange func(*Config, error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

// Save writes cfg as YAML to path.
func (l *Loader) Save(cfg *Config, path string) error {
	l.v.Set("database.provider", cfg.Database.Provider)
	l.v.Set("database.url", cfg.Database.URL)
	l.v.Set("database.max_connections", cfg.Database.MaxConnections)
	l.v.Set("server.addr", cfg.Server.Addr)
	l.v.Set("server.cors_allowed_origins", cfg.Server.CORSAllowedOrigins)
	l.v.Set("query.default_limit", cfg.Query.DefaultLimit)
	l.v.Set("query.max_limit", cfg.Query.MaxLimit)
	l.v.Set("log.level", cfg.Log.Level)
	l.v.Set("log.format", cfg.Log.Format)

	if dir := filepath.Dir(path); dir != "." {
		if err := l.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return l.v.WriteConfigAs(path)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Provider: "postgres", MaxConnections: 10},
		Server:   ServerConfig{Addr: ":8000", CORSAllowedOrigins: "*"},
		Query:    QueryConfig{DefaultLimit: 10, MaxLimit: 200},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the values a server needs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Provider) {
	case "postgres", "postgresql", "pgx", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database provider %q", c.Database.Provider)
	}
	if c.Database.URL == "" {
		return errors.New("database url is not set (DATABASE_URL)")
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("database.max_connections must be positive, got %d", c.Database.MaxConnections)
	}
	if c.Query.DefaultLimit <= 0 || c.Query.MaxLimit <= 0 || c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("invalid query limits: default %d, max %d", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	return nil
}
