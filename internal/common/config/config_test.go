package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "ENV_FILE", "PORT", "CANVAS_WIDTH", "CANVAS_HEIGHT", "FILTER_DIM_OPACITY", "SESSION_TTL")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 1200, cfg.CanvasWidth)
	assert.Equal(t, 800, cfg.CanvasHeight)
	assert.InDelta(t, 0.25, cfg.FilterDimOpacity, 1e-9)
	assert.Equal(t, 60, cfg.SessionTTL)
}

func TestDefaultsMatchEnvDefaults(t *testing.T) {
	unsetenv(t, "ENV_FILE", "PORT", "ENV", "READ_TIMEOUT", "WRITE_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "LOG_DIR",
		"MAPPER_DB_PATH", "ASSETS_DIR", "ASSETS_BASE_URL", "SEED_SAMPLE_DATA", "CANVAS_WIDTH", "CANVAS_HEIGHT",
		"FILTER_DIM_OPACITY", "LOGO_FETCH_TIMEOUT", "SESSION_TTL", "BODY_LIMIT_MB", "MAPPER_URL")

	assert.Equal(t, Defaults(), Load())
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CANVAS_WIDTH=640\nFILTER_DIM_OPACITY=0.4\n"), 0o644))

	t.Setenv("ENV_FILE", path)
	unsetenv(t, "CANVAS_WIDTH", "FILTER_DIM_OPACITY")

	cfg := Load()
	assert.Equal(t, 640, cfg.CanvasWidth)
	assert.InDelta(t, 0.4, cfg.FilterDimOpacity, 1e-9)
}

// unsetenv убирает переменные на время теста и восстанавливает их после.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
