package config

import (
	"time"

	"github.com/rickgao/igtrades/internal/normalize"
)

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "https://api.ig.com/gateway/deal"
	DemoBaseURL              = "https://demo-api.ig.com/gateway/deal"
	DefaultAPITimeout        = 30 * time.Second
	DefaultPaginationTimeout = 10 * time.Minute
	DefaultLogLevel          = "info"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.PaginationTimeout == 0 {
		c.API.PaginationTimeout = DefaultPaginationTimeout
	}

	if c.Normalize.CurrencyGlyph == "" {
		c.Normalize.CurrencyGlyph = normalize.DefaultCurrencyGlyph
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	applyDBDefaults(&c.Mirror.Database)
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
}
