package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"invoicesync/internal/logger"
)

type Config struct {
	// Retail site configuration
	RetailDomain string

	// Google Drive Configuration
	DriveFolderID   string
	DriveFolderName string

	// Synchronization Configuration
	AutoSync     bool
	SyncInterval time.Duration

	// Invoice store
	StorePath string

	// Page extractor ingress
	ExtractorListenAddr string
	AcquireTimeout      time.Duration

	// Optional: Google Sheets export
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		RetailDomain:         getEnv("RETAIL_DOMAIN", "amazon.fr"),
		DriveFolderID:        getEnv("DRIVE_FOLDER_ID", ""),
		DriveFolderName:      getEnv("DRIVE_FOLDER_NAME", "Amazon Invoices"),
		AutoSync:             getEnvBool("AUTO_SYNC", true),
		SyncInterval:         getEnvDuration("SYNC_INTERVAL", 24*time.Hour),
		StorePath:            getEnv("INVOICE_STORE_PATH", defaultStorePath()),
		ExtractorListenAddr:  getEnv("EXTRACTOR_LISTEN_ADDR", "127.0.0.1:8745"),
		AcquireTimeout:       getEnvDuration("ACQUIRE_TIMEOUT", 2*time.Minute),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.RetailDomain == "" {
		return fmt.Errorf("RETAIL_DOMAIN is required")
	}
	if c.StorePath == "" {
		return fmt.Errorf("INVOICE_STORE_PATH is required")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive")
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("ACQUIRE_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "invoices.json"
	}
	return filepath.Join(home, ".invoicesync", "invoices.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
