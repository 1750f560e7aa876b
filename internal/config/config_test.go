package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Dropdown.Max)
	assert.True(t, cfg.HasLanguage("fr_FR"))
	assert.False(t, cfg.HasLanguage("xx_XX"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dropdown.db", cfg.Database.DSN)
	assert.Equal(t, 15, cfg.Dropdown.ListLimit)
	assert.Equal(t, 2*time.Hour, cfg.Session.IDORTokenTTL)
	assert.Equal(t, time.Minute, cfg.Dropdown.EntityCacheTTL)
	assert.Len(t, cfg.Languages, len(Default().Languages))
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dropdown.yaml")
	content := `
database:
  dsn: /tmp/glpi.db
dropdown:
  max: 25
  translate: true
session:
  default_language: fr_FR
  idor_token_ttl: 30m
languages:
  - code: fr_FR
    name: Français
  - code: en_GB
    name: English
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DROPDOWN_MAX", "40")
	t.Setenv("DROPDOWN_LOG_LEVEL", "debug")
	t.Setenv("DROPDOWN_ENTITY_CACHE_TTL", "0s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/glpi.db", cfg.Database.DSN)
	assert.Equal(t, 40, cfg.Dropdown.Max)
	assert.True(t, cfg.Dropdown.Translate)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Zero(t, cfg.Dropdown.EntityCacheTTL)
	assert.Equal(t, "fr_FR", cfg.Session.DefaultLanguage)
	assert.Equal(t, 30*time.Minute, cfg.Session.IDORTokenTTL)
	require.Len(t, cfg.Languages, 2)
	assert.Equal(t, "fr_FR", cfg.Languages[0].Code)
}

func TestLoad_LegacyEnvName(t *testing.T) {
	t.Setenv("DROPDOWN_DB", ":memory:")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
}

func TestValidate_Errors(t *testing.T) {
	cfg := Default()
	cfg.Dropdown.Max = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Session.DefaultLanguage = "xx_XX"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Dropdown.EntityCacheTTL = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Dropdown.NumberFormat = 7
	assert.Error(t, cfg.Validate())
}
