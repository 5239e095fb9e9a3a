package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jbweber/homelab/ludoteca/internal/datastore"
	"github.com/jbweber/homelab/ludoteca/internal/logging"
	"github.com/jbweber/homelab/ludoteca/internal/migrations"
)

// EnvPrefix prefixes every environment variable read by the service,
// e.g. LUDOTECA_DATABASE_DSN or LUDOTECA_SERVER_PORT.
const EnvPrefix = "LUDOTECA"

// Config keys shared by viper, env vars and command-line flags
const (
	KeyDSN            = "database.dsn"
	KeyPort           = "server.port"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyLogFile        = "log.file"
	KeyLogMaxSize     = "log.max_size"
	KeyLogMaxBackups  = "log.max_backups"
	KeyLogMaxAge      = "log.max_age"
	KeyLogCompress    = "log.compress"
	KeyMetricsEnabled = "metrics.enabled"
)

// Config holds all configuration for the ludoteca service
type Config struct {
	DSN     string
	Port    string
	Log     logging.Options
	Metrics MetricsConfig
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		DSN:  "~/ludoteca/data/ludoteca.db",
		Port: "8080",
		Log: logging.Options{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// NewViper returns a viper instance with defaults, environment binding and,
// when configFile is not empty, the values of that file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// SetDefaults registers the NewConfig values as viper defaults
func SetDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault(KeyDSN, d.DSN)
	v.SetDefault(KeyPort, d.Port)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyLogFile, d.Log.File)
	v.SetDefault(KeyLogMaxSize, d.Log.MaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, d.Log.MaxBackups)
	v.SetDefault(KeyLogMaxAge, d.Log.MaxAgeDays)
	v.SetDefault(KeyLogCompress, d.Log.Compress)
	v.SetDefault(KeyMetricsEnabled, d.Metrics.Enabled)
}

// FromViper builds a Config from the resolved viper values
func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		DSN:  strings.TrimSpace(v.GetString(KeyDSN)),
		Port: strings.TrimSpace(v.GetString(KeyPort)),
		Log: logging.Options{
			Level:      v.GetString(KeyLogLevel),
			Format:     v.GetString(KeyLogFormat),
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSize),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAgeDays: v.GetInt(KeyLogMaxAge),
			Compress:   v.GetBool(KeyLogCompress),
		},
		Metrics: MetricsConfig{Enabled: v.GetBool(KeyMetricsEnabled)},
	}
	if c.DSN == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyDSN)
	}
	if c.Port == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyPort)
	}
	c.Log.File = c.expandPath(c.Log.File)
	return c, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// InitializeDatabase opens the datastore, tunes the connection and applies
// pending migrations
func (c *Config) InitializeDatabase(ctx context.Context) (*datastore.Datastore, error) {
	dsn := c.DSN
	postgres := datastore.IsPostgres(dsn)

	if !postgres {
		dsn = c.expandSQLiteDSN(dsn)

		// Ensure database directory exists
		if path := sqliteFilePath(dsn); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = WithConnectionPragmas(dsn)
	}

	ds, err := datastore.New(dsn)
	if err != nil {
		return nil, err
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	OptimizeDatabaseConnection(sqlDB)
	if !postgres && sqliteFilePath(dsn) == "" {
		PinInMemoryDatabase(sqlDB)
	}

	if !postgres {
		if err := ApplyPragmaOptimizations(ctx, sqlDB); err != nil {
			_ = ds.Close()
			return nil, fmt.Errorf("failed to apply performance optimizations: %w", err)
		}
	}

	if _, err := c.runMigrations(ctx, ds); err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return ds, nil
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Return original path if we can't get home dir
		return path
	}

	return filepath.Join(homeDir, path[2:])
}

// expandSQLiteDSN expands ~ in plain, file: and sqlite:// SQLite DSNs
func (c *Config) expandSQLiteDSN(dsn string) string {
	for _, prefix := range []string{"sqlite://", "file:"} {
		if strings.HasPrefix(dsn, prefix) {
			return prefix + c.expandPath(strings.TrimPrefix(dsn, prefix))
		}
	}
	return c.expandPath(dsn)
}

// sqliteFilePath returns the on-disk path of a SQLite DSN, or "" for in-memory databases
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "file:")
	query := ""
	if idx := strings.Index(path, "?"); idx != -1 {
		path, query = path[:idx], path[idx+1:]
	}
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return ""
	}
	return path
}

// runMigrations runs all database migrations and returns the resulting version
func (c *Config) runMigrations(ctx context.Context, ds *datastore.Datastore) (int64, error) {
	return migrations.Run(ctx, ds.DB)
}
