package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	require.Equal(t, 80*time.Millisecond, cfg.Upload.TickInterval)
	require.Equal(t, 10, cfg.Upload.ProgressStep)
	require.Equal(t, 1200*time.Millisecond, cfg.Upload.ExtractionDelay)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://api.example.com/api
logging:
  level: debug
upload:
  progress_step: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 25, cfg.Upload.ProgressStep)
	// Untouched keys keep their defaults.
	require.Equal(t, 80*time.Millisecond, cfg.Upload.TickInterval)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WHIZ_API_BASE_URL", "http://envhost:9000/api")
	t.Setenv("WHIZ_LOGGING_LEVEL", "warn")

	cfg, err := LoadDefault()
	require.NoError(t, err)

	require.Equal(t, "http://envhost:9000/api", cfg.API.BaseURL)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Upload.ProgressStep = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.API.BaseURL = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())
}
