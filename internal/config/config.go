// Package config reads the session settings from the environment (and an
// optional .env file loaded beforehand) through viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/govalues/money"
	"github.com/spf13/viper"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
)

// Store kinds.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config stores all configuration for a session.
type Config struct {
	DataDir      string `mapstructure:"BANK_DATA_DIR"`
	Store        string `mapstructure:"BANK_STORE"`
	SQLitePath   string `mapstructure:"BANK_SQLITE_PATH"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DepositLimit string `mapstructure:"BANK_DEPOSIT_LIMIT"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogFormat    string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"BANK_DATA_DIR", "BANK_STORE", "BANK_SQLITE_PATH", "DATABASE_URL",
	"BANK_DEPOSIT_LIMIT", "LOG_LEVEL", "LOG_FORMAT",
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("BANK_DATA_DIR", "database")
	v.SetDefault("BANK_STORE", StoreFile)
	v.SetDefault("BANK_SQLITE_PATH", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BANK_DEPOSIT_LIMIT", "50000.00")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "text")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "bank.db")
	}
	return cfg, cfg.Validate()
}

// Validate checks the store kind and the deposit limit.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errs.Invalid("DATABASE_URL is required for the postgres store")
		}
	default:
		return errs.Invalid(fmt.Sprintf("unknown BANK_STORE %q (want file, memory, sqlite or postgres)", c.Store))
	}
	if c.DataDir == "" && c.Store == StoreFile {
		return errs.Invalid("BANK_DATA_DIR cannot be empty")
	}
	if _, err := c.Limit(); err != nil {
		return err
	}
	return nil
}

// Limit parses the deposit limit.
func (c Config) Limit() (money.Amount, error) {
	a, err := bank.ParseAmount(c.DepositLimit)
	if err != nil {
		return money.Amount{}, errs.Invalid(fmt.Sprintf("BANK_DEPOSIT_LIMIT %q: %v", c.DepositLimit, err))
	}
	if !a.IsPos() {
		return money.Amount{}, errs.Invalid("BANK_DEPOSIT_LIMIT must be positive")
	}
	return a, nil
}
