package photos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes photos to a directory served statically by the
// API under the configured base URL.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalStorage{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStorage) Save(_ context.Context, filename, _ string, data []byte) error {
	if filename == "" || len(data) == 0 {
		return ErrValidation
	}

	// The filename is server-generated, but never trust it as a path.
	if filepath.Base(filename) != filename {
		return ErrValidation
	}

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write photo file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Delete(_ context.Context, filename string) error {
	if filename == "" || filepath.Base(filename) != filename {
		return ErrValidation
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete photo file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(filename string) string {
	return s.baseURL + "/" + filename
}

// Dir is the directory photos are written to, for static file serving.
func (s *LocalStorage) Dir() string {
	return s.dir
}
