// Package config loads runtime settings from the environment, with a
// local .env file honored for development.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	// Notion store credentials.
	NotionToken      string
	NotionDatabaseID string

	// Brevo transactional email and contact list.
	BrevoAPIKey string

	// Optional passphrase sealing subscriber contact fields at rest.
	EncryptionKey string

	// Directory holding the catalog snapshot and subscriber file.
	DataDir string

	// Geocoding context appended to venue queries.
	City   string
	Region string

	LogLevel string
}

// Load reads configuration, applying defaults where unset. A .env file in
// the working directory is merged in first when present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		BrevoAPIKey:      os.Getenv("BREVO_API_KEY"),
		EncryptionKey:    os.Getenv("MEHFIL_ENCRYPTION_KEY"),
		DataDir:          envOrDefault("MEHFIL_DATA_DIR", "dashboard"),
		City:             envOrDefault("MEHFIL_CITY", "Boston"),
		Region:           envOrDefault("MEHFIL_REGION", "MA"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// RequireNotion validates the store credentials. Commands touching the
// event store call this before doing any work.
func (c *Config) RequireNotion() error {
	if c.NotionToken == "" {
		return errors.New("NOTION_TOKEN is required")
	}
	if c.NotionDatabaseID == "" {
		return errors.New("NOTION_DATABASE_ID is required")
	}
	return nil
}

// RequireBrevo validates the email credentials, needed only when sending.
func (c *Config) RequireBrevo() error {
	if c.BrevoAPIKey == "" {
		return errors.New("BREVO_API_KEY is required")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
