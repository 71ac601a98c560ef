package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("NOTION_DATABASE_ID", "")
	t.Setenv("BREVO_API_KEY", "")
	t.Setenv("MEHFIL_DATA_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dashboard", cfg.DataDir)
	assert.Equal(t, "Boston", cfg.City)
	assert.Equal(t, "MA", cfg.Region)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.NotionToken)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "secret_token")
	t.Setenv("NOTION_DATABASE_ID", "db123")
	t.Setenv("BREVO_API_KEY", "brevo-key")
	t.Setenv("MEHFIL_ENCRYPTION_KEY", "passphrase")
	t.Setenv("MEHFIL_DATA_DIR", "/tmp/mehfil")
	t.Setenv("MEHFIL_CITY", "Cambridge")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret_token", cfg.NotionToken)
	assert.Equal(t, "db123", cfg.NotionDatabaseID)
	assert.Equal(t, "brevo-key", cfg.BrevoAPIKey)
	assert.Equal(t, "passphrase", cfg.EncryptionKey)
	assert.Equal(t, "/tmp/mehfil", cfg.DataDir)
	assert.Equal(t, "Cambridge", cfg.City)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestRequireNotion(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireNotion())

	cfg.NotionToken = "tok"
	require.Error(t, cfg.RequireNotion())

	cfg.NotionDatabaseID = "db"
	require.NoError(t, cfg.RequireNotion())
}

func TestRequireBrevo(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireBrevo())

	cfg.BrevoAPIKey = "key"
	require.NoError(t, cfg.RequireBrevo())
}
