// Package config loads the settings of the command line tools.
//
// Values come, by decreasing priority, from FINVAULT_ environment
// variables (FINVAULT_DATABASE_PATH for database.path), a .env file in the
// working directory, an optional finvault.yaml config file and the
// defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/etnz/finvault"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LegacyConfig struct {
	// Dir is a directory of <key>.json blobs or a key-value dump file.
	Dir string `mapstructure:"dir"`
}

type MigrationConfig struct {
	Flag string `mapstructure:"flag"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	QuoteTTL time.Duration `mapstructure:"quote_ttl"`
	FxTTL    time.Duration `mapstructure:"fx_ttl"`
}

type ReportingConfig struct {
	Currency  string `mapstructure:"currency"`
	CostBasis string `mapstructure:"cost_basis"`
}

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Legacy    LegacyConfig    `mapstructure:"legacy"`
	Migration MigrationConfig `mapstructure:"migration"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Reporting ReportingConfig `mapstructure:"reporting"`
}

var defaults = map[string]any{
	"database.path":        "finvault.db",
	"legacy.dir":           "legacy",
	"migration.flag":       ".finvault/migrated",
	"log.level":            "info",
	"log.format":           "console",
	"cache.quote_ttl":      "15m",
	"cache.fx_ttl":         "12h",
	"reporting.currency":   "USD",
	"reporting.cost_basis": "fifo",
}

// Load reads the configuration. path is an explicit config file; when empty
// finvault.yaml is looked up in the working directory and may be missing.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if path == "" {
		v.SetConfigName("finvault")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. FINVAULT_LOG_LEVEL=debug
	v.SetEnvPrefix("FINVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Reporting.Currency = strings.ToUpper(c.Reporting.Currency)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the values that cannot be checked when they are used.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if err := finvault.ValidateCurrency(c.Reporting.Currency); err != nil {
		errs = append(errs, fmt.Errorf("reporting.currency: %w", err))
	}
	if _, err := c.CostBasis(); err != nil {
		errs = append(errs, fmt.Errorf("reporting.cost_basis: %w", err))
	}
	if c.Cache.QuoteTTL < 0 || c.Cache.FxTTL < 0 {
		errs = append(errs, errors.New("cache ttls must not be negative"))
	}
	return errors.Join(errs...)
}

// CostBasis returns the configured cost basis method.
func (c *Config) CostBasis() (finvault.CostBasisMethod, error) {
	return finvault.ParseCostBasisMethod(strings.ToLower(c.Reporting.CostBasis))
}
