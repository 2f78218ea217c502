package config

import (
	"time"

	"github.com/rickgao/igtrades/internal/normalize"
)

// Config is the root configuration for the exporter.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Log       LogConfig       `yaml:"log"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Mirror    MirrorConfig    `yaml:"mirror"`
}

// APIConfig holds IG REST API settings.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	APIKey            string        `yaml:"api_key"` // X-IG-API-KEY header
	Timeout           time.Duration `yaml:"timeout"`
	PaginationTimeout time.Duration `yaml:"pagination_timeout"`  // Upper bound on a whole history fetch
	RequestsPerSecond float64       `yaml:"requests_per_second"` // 0 disables pacing
}

// LedgerConfig locates the CSV ledger.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// NormalizeConfig tunes transaction cleanup.
type NormalizeConfig struct {
	CurrencyGlyph string            `yaml:"currency_glyph"`
	Aliases       []normalize.Alias `yaml:"aliases"` // Appended to the built-in aliases
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ScheduleConfig enables repeated runs. An empty Cron runs once.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// MirrorConfig holds the optional Postgres mirror of appended rows.
type MirrorConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Database DBConfig `yaml:"database"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
