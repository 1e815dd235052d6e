package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "task-tracker", cfg.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "_txlock=immediate")
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"JWT_SECRET":         "s3cret",
		"JWT_TTL":            "1h",
		"TASKS_DB_DRIVER":    "postgres",
		"TASKS_DB_DSN":       "postgres://localhost/tasks",
		"TASKS_CORS_ORIGINS": "http://a.test,http://b.test",
		"TASKS_REDIS_ADDR":   "localhost:6379",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "missing secret", vars: map[string]string{}},
		{name: "empty secret", vars: map[string]string{"JWT_SECRET": ""}},
		{name: "blank secret", vars: map[string]string{"JWT_SECRET": "   "}},
		{name: "zero ttl", vars: map[string]string{"JWT_SECRET": "x", "JWT_TTL": "0s"}},
		{name: "bcrypt cost too low", vars: map[string]string{"JWT_SECRET": "x", "TASKS_BCRYPT_COST": "1"}},
		{name: "unknown driver", vars: map[string]string{"JWT_SECRET": "x", "TASKS_DB_DRIVER": "mysql"}},
		{name: "bad duration", vars: map[string]string{"JWT_SECRET": "x", "JWT_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}
