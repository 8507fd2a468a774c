package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Config represents the main application configuration
type Config struct {
	Database Database `json:"database" mapstructure:"database"`
	HTTP     HTTP     `json:"http" mapstructure:"http"`
	Server   Server   `json:"server" mapstructure:"server"`
}

// Database represents database configuration. Two connection strings are
// carried: URL goes through the platform's connection pooler and serves
// application traffic; DirectURL bypasses the pooler and is used only while
// applying migrations (poolers reject some DDL and advisory locks).
type Database struct {
	URL             string        `json:"url" mapstructure:"url"`
	DirectURL       string        `json:"direct_url" mapstructure:"direct_url"`
	MaxConnections  int           `json:"max_connections" mapstructure:"max_connections"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	LogLevel        string        `json:"log_level" mapstructure:"log_level"`
}

// Server represents server configuration
type Server struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	Debug    bool   `json:"debug" mapstructure:"debug"`
}

// HTTP represents HTTP server configuration
type HTTP struct {
	Port         int      `json:"port" mapstructure:"port"`
	AllowOrigins []string `json:"allow_origins" mapstructure:"allow_origins"`
}

// NewDefault returns a Config instance with default values
func NewDefault() *Config {
	return &Config{
		Database: Database{
			URL:             "postgres://postgres@localhost:5432/blogstack?sslmode=disable",
			DirectURL:       "",
			MaxConnections:  25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 1 * time.Minute,
			LogLevel:        "error",
		},
		Server: Server{
			LogLevel: "info",
			Debug:    false,
		},
		HTTP: HTTP{
			Port:         8080,
			AllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxConnections {
		return fmt.Errorf("max idle connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	return nil
}

// MigrationURL returns the connection string the migration runner should
// use: the direct URL when configured, otherwise the pooled URL.
func (d *Database) MigrationURL() string {
	if d.DirectURL != "" {
		return d.DirectURL
	}
	return d.URL
}

// DSN converts a postgres:// URL into the keyword/value form the driver
// accepts. Non-URL strings are assumed to already be in keyword form and
// pass through unchanged.
func DSN(connString string) (string, error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		dsn, err := pq.ParseURL(connString)
		if err != nil {
			return "", fmt.Errorf("invalid connection URL: %w", err)
		}
		return dsn, nil
	}
	return connString, nil
}

// Redacted returns a loggable form of a connection string: host and database
// name only, credentials stripped. Connection strings are secrets and must
// never reach the logs whole.
func Redacted(connString string) string {
	u, err := url.Parse(connString)
	if err != nil || u.Host == "" {
		return "(redacted)"
	}
	return fmt.Sprintf("%s/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
}
