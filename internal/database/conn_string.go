package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/rickgao/igtrades/internal/config"
)

// BuildConnString builds a PostgreSQL connection string from config.
// A zero port or empty ssl mode falls back to the config defaults.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultDBPort
	}

	// url.UserPassword escapes '@', ':' and '/' in credentials
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}
