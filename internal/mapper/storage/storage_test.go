package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveBackgroundAndResolve(t *testing.T) {
	root := t.TempDir()
	s := NewFileStorage(root, "/assets/")

	url, err := s.SaveBackground("map-1", "../../Planta Baixa.png", []byte("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/assets/map-1/backgrounds/"), url)
	assert.True(t, strings.HasSuffix(url, "-Planta_Baixa.png"), url)

	path, err := s.Resolve(url)
	require.NoError(t, err)
	assert.Equal(t, s.BackgroundsDir("map-1"), filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestSaveExport(t *testing.T) {
	s := NewFileStorage(t.TempDir(), "/assets")
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	url, err := s.SaveExport("map-1", []byte("{}"), now)
	require.NoError(t, err)
	assert.Equal(t, "/assets/map-1/exports/mapa-20240501-123000.json", url)

	_, err = s.SaveExport("../x", []byte("{}"), now)
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestResolveRejectsEscapes(t *testing.T) {
	s := NewFileStorage("/data", "/assets")
	for _, url := range []string{
		"/assets/../secret",
		"/assets/map/../../etc/passwd",
		"/assets/",
		"/assetsX/map/a.png",
		"/other/map/a.png",
		"map//a.png",
		`map\..\a.png`,
	} {
		_, err := s.Resolve(url)
		assert.ErrorIs(t, err, ErrBadPath, url)
	}

	path, err := s.Resolve("map/backgrounds/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "map", "backgrounds", "a.png"), path)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "background", sanitize("..", "background"))
	assert.Equal(t, "logo.png", sanitize(`C:\tmp\logo.png`, "x"))
	assert.Equal(t, "a_b.jpg", sanitize("a b.jpg", "x"))
}
