package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
)

// File implements KeyValue with one file per key inside a directory,
// the server-side counterpart of browser local storage.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a store rooted at it.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", sferrors.ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get reads the file holding key.
func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes to a temporary file and renames it over the old value, so readers never see a partial write.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for key %s: %w", key, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for key %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace key %s: %w", key, err)
	}
	return nil
}
