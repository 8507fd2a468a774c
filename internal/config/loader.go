package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigName("config")

	if configPath != "" {
		// Use explicit path if provided
		v.SetConfigFile(configPath)
	} else {
		// Search in multiple locations
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/blogstack")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".blogstack"))
		}
	}

	// Set defaults (these will be overridden by config file and env vars)
	setDefaults(v)

	// Configure environment variable handling
	v.SetEnvPrefix("BLOGSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	// Read configuration file (if exists)
	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file doesn't exist, we have defaults and env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Bare DATABASE_URL / DIRECT_DATABASE_URL are how hosted platforms and
	// the CI workflow hand us credentials; they win over everything else.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}
	if directURL := os.Getenv("DIRECT_DATABASE_URL"); directURL != "" {
		v.Set("database.direct_url", directURL)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadConfigOrDefault loads configuration, falling back to defaults if the
// file cannot be read. Environment variables are still applied.
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = NewDefault()
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			cfg.Database.URL = dbURL
		}
		if directURL := os.Getenv("DIRECT_DATABASE_URL"); directURL != "" {
			cfg.Database.DirectURL = directURL
		}
	}
	return cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	defaults := NewDefault()

	v.SetDefault("database.url", defaults.Database.URL)
	v.SetDefault("database.direct_url", defaults.Database.DirectURL)
	v.SetDefault("database.max_connections", defaults.Database.MaxConnections)
	v.SetDefault("database.max_idle_conns", defaults.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", defaults.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", defaults.Database.ConnMaxIdleTime)
	v.SetDefault("database.log_level", defaults.Database.LogLevel)

	v.SetDefault("server.log_level", defaults.Server.LogLevel)
	v.SetDefault("server.debug", defaults.Server.Debug)

	v.SetDefault("http.port", defaults.HTTP.Port)
	v.SetDefault("http.allow_origins", defaults.HTTP.AllowOrigins)
}

// bindEnvVars binds specific environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.url", "BLOGSTACK_DATABASE_URL")
	_ = v.BindEnv("database.direct_url", "BLOGSTACK_DATABASE_DIRECT_URL")
	_ = v.BindEnv("database.max_connections", "BLOGSTACK_DATABASE_MAX_CONNECTIONS")
	_ = v.BindEnv("server.log_level", "BLOGSTACK_SERVER_LOG_LEVEL")
	_ = v.BindEnv("server.debug", "BLOGSTACK_SERVER_DEBUG")
	_ = v.BindEnv("http.port", "BLOGSTACK_HTTP_PORT")
}
