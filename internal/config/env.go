package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ApplyEnv.
const (
	EnvUsername      = "IG_USERNAME"
	EnvPassword      = "IG_PASSWORD"
	EnvAPIKey        = "IG_API_KEY"
	EnvLedgerPath    = "TRADES_FILE_PATH"
	EnvBaseURL       = "IG_BASE_URL"
	EnvLogLevel      = "LOG_LEVEL"
	EnvSchedule      = "IG_SCHEDULE"
	EnvMirrorEnabled = "IG_MIRROR_ENABLED"
	EnvDBHost        = "IG_DB_HOST"
	EnvDBPort        = "IG_DB_PORT"
	EnvDBName        = "IG_DB_NAME"
	EnvDBUser        = "IG_DB_USER"
	EnvDBPassword    = "IG_DB_PASSWORD"
	EnvDBSSLMode     = "IG_DB_SSLMODE"
)

// envFields maps required config fields to the variable that supplies them.
var envFields = map[string]string{
	"api.username": EnvUsername,
	"api.password": EnvPassword,
	"api.api_key":  EnvAPIKey,
	"ledger.path":  EnvLedgerPath,

	"mirror.database.host":     EnvDBHost,
	"mirror.database.name":     EnvDBName,
	"mirror.database.user":     EnvDBUser,
	"mirror.database.password": EnvDBPassword,
}

// ApplyEnv overrides config values with any non-empty environment variables.
func (c *Config) ApplyEnv() error {
	setString(&c.API.Username, EnvUsername)
	setString(&c.API.Password, EnvPassword)
	setString(&c.API.APIKey, EnvAPIKey)
	setString(&c.API.BaseURL, EnvBaseURL)
	setString(&c.Ledger.Path, EnvLedgerPath)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Schedule.Cron, EnvSchedule)

	if v := os.Getenv(EnvMirrorEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMirrorEnabled, err)
		}
		c.Mirror.Enabled = enabled
	}

	db := &c.Mirror.Database
	setString(&db.Host, EnvDBHost)
	setString(&db.Name, EnvDBName)
	setString(&db.User, EnvDBUser)
	setString(&db.Password, EnvDBPassword)
	setString(&db.SSLMode, EnvDBSSLMode)
	if v := os.Getenv(EnvDBPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDBPort, err)
		}
		db.Port = port
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
