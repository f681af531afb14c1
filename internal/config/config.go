// Package config provides configuration management for the tracker server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thyrotrack-server/internal/domain"
)

// Manager loads and validates application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/thyrotrack/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("THYROTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8480)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Storage defaults
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.data_dir", defaultDataDir())
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", 5432)
	viper.SetDefault("storage.postgres.database", "thyrotrack")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "")
	viper.SetDefault("storage.postgres.ssl_mode", "disable")
	viper.SetDefault("storage.postgres.max_conns", 5)
	viper.SetDefault("storage.postgres.min_conns", 1)
	viper.SetDefault("storage.postgres.max_conn_lifetime", "5m")
	viper.SetDefault("storage.postgres.max_conn_idle", "1m")
	viper.SetDefault("storage.postgres.migrations_path", "migrations")

	// Generative-AI API defaults
	viper.SetDefault("genai.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("genai.summary_model", "gemini-3-pro-preview")
	viper.SetDefault("genai.extract_model", "gemini-3-flash-preview")
	viper.SetDefault("genai.timeout", "60s")
	viper.SetDefault("genai.rate_limit", 2)

	// View cache defaults
	viper.SetDefault("cache.max_items", 256)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// defaultDataDir returns the per-user data directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thyrotrack"
	}
	return filepath.Join(home, ".thyrotrack")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetStorageConfig returns storage configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// GetGenAIConfig returns the generative-AI API configuration
func (m *Manager) GetGenAIConfig() *domain.GenAIConfig {
	return &m.config.GenAI
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate storage configuration
	switch config.Storage.Backend {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}
	if config.Storage.Backend == "sqlite" && config.Storage.DataDir == "" {
		return fmt.Errorf("storage data directory is required for the sqlite backend")
	}
	if config.Storage.Backend == "postgres" {
		if config.Storage.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Storage.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if config.Storage.Postgres.Username == "" {
			return fmt.Errorf("postgres username is required")
		}
	}

	// Validate generative-AI configuration
	if config.GenAI.BaseURL == "" {
		return fmt.Errorf("genai base URL is required")
	}
	if config.GenAI.SummaryModel == "" || config.GenAI.ExtractModel == "" {
		return fmt.Errorf("genai model names are required")
	}

	// Validate cache configuration
	if config.Cache.MaxItems <= 0 {
		return fmt.Errorf("cache max_items must be positive")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// SQLitePath returns the path of the SQLite database file.
func (m *Manager) SQLitePath() string {
	return filepath.Join(m.config.Storage.DataDir, "thyrotrack.db")
}

// PostgresURL returns a connection URL for the PostgreSQL backend.
func (m *Manager) PostgresURL() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pg.Username, pg.Password, pg.Host, pg.Port, pg.Database, pg.SSLMode)
}
