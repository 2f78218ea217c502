// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The exporter can also run from the environment alone: IG_USERNAME, IG_PASSWORD,
// IG_API_KEY and TRADES_FILE_PATH are enough for a one-shot run. Environment
// values override file values.
package config
