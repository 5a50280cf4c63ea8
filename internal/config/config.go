package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Database configuration
	DatabasePath string

	// Performance API configuration
	PageSpeedAPIKey  string
	PageSpeedBaseURL string

	// Generative-text API configuration
	CompletionAPIKey  string
	CompletionBaseURL string
	CompletionModel   string

	// Notification configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromAddress  string
	ContactEmail string

	// Outbox delivery
	OutboxSchedule    string
	OutboxMaxAttempts int

	// Azure Storage configuration (optional report archive)
	StorageAccount   string
	StorageContainer string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabasePath: getEnv("DATABASE_PATH", "sitescope.db"),

		PageSpeedAPIKey:  getEnv("PAGESPEED_API_KEY", ""),
		PageSpeedBaseURL: getEnv("PAGESPEED_BASE_URL", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"),

		CompletionAPIKey:  getEnv("COMPLETION_API_KEY", ""),
		CompletionBaseURL: getEnv("COMPLETION_BASE_URL", "https://api.openai.com/v1/completions"),
		CompletionModel:   getEnv("COMPLETION_MODEL", "gpt-4o-mini"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getIntEnv("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromAddress:  getEnv("FROM_ADDRESS", ""),
		ContactEmail: getEnv("CONTACT_EMAIL", "hello@growthlab.agency"),

		// Once per minute; the cron expression includes a seconds field.
		OutboxSchedule:    getEnv("OUTBOX_SCHEDULE", "0 * * * * *"),
		OutboxMaxAttempts: getIntEnv("OUTBOX_MAX_ATTEMPTS", 5),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "reports"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SMTPHost != "" {
		if c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD are required when SMTP_HOST is set")
		}
	}

	if c.FromAddress == "" {
		c.FromAddress = c.SMTPUsername
	}

	if c.OutboxMaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
