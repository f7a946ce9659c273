package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "database", cfg.DataDir)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, filepath.Join("database", "bank.db"), cfg.SQLitePath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	limit, err := cfg.Limit()
	require.NoError(t, err)
	assert.Equal(t, "50000.00", bank.FormatAmount(limit))
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BANK_STORE", " SQLite ")
	t.Setenv("BANK_DATA_DIR", "/var/lib/bank")
	t.Setenv("BANK_DEPOSIT_LIMIT", "1000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, filepath.Join("/var/lib/bank", "bank.db"), cfg.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	limit, err := cfg.Limit()
	require.NoError(t, err)
	assert.Equal(t, "1000.00", bank.FormatAmount(limit))
}

func TestLoad_ExplicitSQLitePath(t *testing.T) {
	clearEnv(t)
	t.Setenv("BANK_STORE", "sqlite")
	t.Setenv("BANK_SQLITE_PATH", "/tmp/other.db")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.SQLitePath)
}

func TestValidate(t *testing.T) {
	base := Config{DataDir: "database", Store: StoreFile, DepositLimit: "50000.00"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "redis" }},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }},
		{"file store without dir", func(c *Config) { c.DataDir = "" }},
		{"limit not a number", func(c *Config) { c.DepositLimit = "lots" }},
		{"limit zero", func(c *Config) { c.DepositLimit = "0" }},
		{"limit negative", func(c *Config) { c.DepositLimit = "-5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.edit(&c)
			assert.ErrorIs(t, c.Validate(), errs.ErrInvalid)
		})
	}

	pg := base
	pg.Store, pg.DatabaseURL = StorePostgres, "postgres://localhost/bank"
	assert.NoError(t, pg.Validate())
	mem := base
	mem.Store, mem.DataDir = StoreMemory, ""
	assert.NoError(t, mem.Validate())
}
