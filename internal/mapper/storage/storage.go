package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// путь или URL выходит за пределы хранилища
	ErrBadPath = errors.New("bad asset path")

	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

const (
	backgroundsDir = "backgrounds"
	exportsDir     = "exports"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage раскладывает файлы карт по каталогам <root>/<mapID>/...
// и отдает их под baseURL.
type FileStorage struct {
	root    string
	baseURL string
}

func NewFileStorage(root, baseURL string) *FileStorage {
	baseURL = "/" + strings.Trim(baseURL, "/")
	return &FileStorage{root: root, baseURL: baseURL}
}

func (s *FileStorage) Root() string    { return s.root }
func (s *FileStorage) BaseURL() string { return s.baseURL }

func (s *FileStorage) MapDir(mapID string) string {
	return filepath.Join(s.root, mapID)
}

func (s *FileStorage) BackgroundsDir(mapID string) string {
	return filepath.Join(s.MapDir(mapID), backgroundsDir)
}

func (s *FileStorage) ExportsDir(mapID string) string {
	return filepath.Join(s.MapDir(mapID), exportsDir)
}

func (s *FileStorage) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// SaveBackground сохраняет файл подложки и возвращает его URL.
func (s *FileStorage) SaveBackground(mapID, filename string, data []byte) (string, error) {
	name := uuid.NewString()[:8] + "-" + sanitize(filename, "background")
	return s.save(mapID, backgroundsDir, name, data)
}

// SaveExport сохраняет документ экспорта и возвращает его URL.
func (s *FileStorage) SaveExport(mapID string, data []byte, now time.Time) (string, error) {
	name := fmt.Sprintf("mapa-%s.json", now.UTC().Format("20060102-150405"))
	return s.save(mapID, exportsDir, name, data)
}

func (s *FileStorage) save(mapID, kind, name string, data []byte) (string, error) {
	if !validSegment(mapID) {
		return "", fmt.Errorf("map id %q: %w", mapID, ErrBadPath)
	}
	dir := filepath.Join(s.MapDir(mapID), kind)
	if err := s.EnsureDir(dir); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path.Join(s.baseURL, mapID, kind, name), nil
}

// Resolve переводит URL ассета (или путь относительно baseURL) в путь
// к файлу внутри хранилища.
func (s *FileStorage) Resolve(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, strings.TrimSuffix(s.baseURL, "/")+"/")
	if !ok {
		if strings.HasPrefix(url, "/") {
			return "", fmt.Errorf("%q: %w", url, ErrBadPath)
		}
		rel = url
	}
	for _, part := range strings.Split(rel, "/") {
		if !validSegment(part) {
			return "", fmt.Errorf("%q: %w", url, ErrBadPath)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func validSegment(part string) bool {
	return part != "" && part != "." && part != ".." && !strings.ContainsAny(part, `/\`)
}

func sanitize(filename, fallback string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		return fallback
	}
	return base
}
