// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	ServerPort     string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"router.db"`
	CompanionURL   string `env:"COMPANION_URL" envDefault:"http://127.0.0.1:8721"`
	DownloadsDir   string `env:"DOWNLOADS_DIR" envDefault:"/downloads"`
	WatchDownloads bool   `env:"WATCH_DOWNLOADS" envDefault:"true"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.CompanionURL != "" {
		u, err := url.Parse(c.CompanionURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("COMPANION_URL must be a valid URL, got: %s", c.CompanionURL)
		}
	}

	if c.DownloadsDir == "" {
		return fmt.Errorf("DOWNLOADS_DIR cannot be empty")
	}

	cleanPath := filepath.Clean(c.DownloadsDir)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("DOWNLOADS_DIR must be an absolute path, got: %s", c.DownloadsDir)
	}

	// Check if path exists and is a directory (only if it exists)
	if info, err := os.Stat(cleanPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("DOWNLOADS_DIR must be a directory, got file: %s", cleanPath)
		}
	}

	c.DownloadsDir = cleanPath

	return nil
}
