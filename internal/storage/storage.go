// Package storage persists uploaded document bytes under a
// caller-independent name.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type Storage interface {
	// Save writes data under name and returns a local path the
	// extractor can open.
	Save(ctx context.Context, name string, data io.Reader) (string, error)
	// Remove deletes a stored file; removing an unknown name is not an
	// error.
	Remove(ctx context.Context, name string) error
}

// LocalStorage keeps uploads on the local filesystem.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	if dir == "" {
		dir = "data"
	}
	return &LocalStorage{dir: dir}
}

func (s *LocalStorage) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

func (s *LocalStorage) Remove(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
