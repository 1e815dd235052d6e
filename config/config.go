// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DriverSQLite selects the embedded SQLite store.
	DriverSQLite = "sqlite"
	// DriverPostgres selects a PostgreSQL store.
	DriverPostgres = "postgres"
)

// Config holds all runtime settings. It is loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	HTTPAddr    string   `env:"TASKS_HTTP_ADDR" envDefault:":3000"`
	CORSOrigins []string `env:"TASKS_CORS_ORIGINS" envDefault:"*" envSeparator:","`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"task-tracker"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`

	BcryptCost int `env:"TASKS_BCRYPT_COST" envDefault:"12"`

	Database Database

	RedisAddr       string        `env:"TASKS_REDIS_ADDR"`
	ProfileCacheTTL time.Duration `env:"TASKS_PROFILE_CACHE_TTL" envDefault:"5m"`

	ShutdownTimeout time.Duration `env:"TASKS_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Database holds store connection settings.
type Database struct {
	Driver          string        `env:"TASKS_DB_DRIVER" envDefault:"sqlite"`
	DSN             string        `env:"TASKS_DB_DSN" envDefault:"tasks.db?_busy_timeout=5000&_txlock=immediate"`
	Debug           bool          `env:"TASKS_DB_DEBUG" envDefault:"false"`
	MaxOpenConns    int           `env:"TASKS_DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"TASKS_DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxIdleTime time.Duration `env:"TASKS_DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the env tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be blank"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("TASKS_BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("TASKS_DB_DRIVER must be %q or %q, got %q",
			DriverSQLite, DriverPostgres, c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("TASKS_DB_DSN must not be empty"))
	}
	if c.RedisAddr != "" && c.ProfileCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("TASKS_PROFILE_CACHE_TTL must be positive, got %s", c.ProfileCacheTTL))
	}

	return errors.Join(errs...)
}
