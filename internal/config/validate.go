package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rickgao/igtrades/internal/normalize"
)

// ConfigError lists every problem found by Validate.
type ConfigError struct {
	Fields   []string // Missing required fields, e.g. "api.username"
	Problems []string // Invalid values
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Fields) > 0 {
		missing := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			missing[i] = f
			if env, ok := EnvVarFor(f); ok {
				missing[i] = fmt.Sprintf("%s (%s)", f, env)
			}
		}
		parts = append(parts, "missing required config: "+strings.Join(missing, ", "))
	}
	if len(e.Problems) > 0 {
		parts = append(parts, "invalid config: "+strings.Join(e.Problems, "; "))
	}
	return strings.Join(parts, "; ")
}

// EnvVarFor returns the environment variable that supplies a required field.
func EnvVarFor(field string) (string, bool) {
	env, ok := envFields[field]
	return env, ok
}

// EnvVars returns the environment variables that would supply the missing fields.
func (e *ConfigError) EnvVars() []string {
	var vars []string
	for _, f := range e.Fields {
		if env, ok := EnvVarFor(f); ok {
			vars = append(vars, env)
		}
	}
	return vars
}

func (e *ConfigError) missing(field string) {
	e.Fields = append(e.Fields, field)
}

func (e *ConfigError) invalid(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks that all required fields are set and values are valid.
// It returns a *ConfigError describing every problem, or nil.
func (c *Config) Validate() error {
	e := &ConfigError{}

	if c.API.Username == "" {
		e.missing("api.username")
	}
	if c.API.Password == "" {
		e.missing("api.password")
	}
	if c.API.APIKey == "" {
		e.missing("api.api_key")
	}
	if c.Ledger.Path == "" {
		e.missing("ledger.path")
	}

	if c.API.Timeout < 0 {
		e.invalid("api.timeout must be >= 0, got %s", c.API.Timeout)
	}
	if c.API.PaginationTimeout < 0 {
		e.invalid("api.pagination_timeout must be >= 0, got %s", c.API.PaginationTimeout)
	}
	if c.API.RequestsPerSecond < 0 {
		e.invalid("api.requests_per_second must be >= 0, got %g", c.API.RequestsPerSecond)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		e.invalid("log.level: %v", err)
	}

	if err := normalize.DefaultAliasTable(c.Normalize.Aliases...).Validate(); err != nil {
		e.invalid("normalize.aliases: %v", err)
	}

	if c.Mirror.Enabled {
		c.Mirror.Database.validate("mirror.database", e)
	}

	if len(e.Fields) == 0 && len(e.Problems) == 0 {
		return nil
	}
	return e
}

func (db *DBConfig) validate(prefix string, e *ConfigError) {
	if db.Host == "" {
		e.missing(prefix + ".host")
	}
	if db.Name == "" {
		e.missing(prefix + ".name")
	}
	if db.User == "" {
		e.missing(prefix + ".user")
	}
	if db.Password == "" {
		e.missing(prefix + ".password")
	}
	if db.Port < 1 || db.Port > 65535 {
		e.invalid("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	if db.MaxConns < 1 {
		e.invalid("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		e.invalid("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		e.invalid("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
}

// SlogLevel parses Level. An empty level is info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
