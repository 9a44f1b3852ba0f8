// Package fsxlocal implements fsx.Storage on local disk, for development.
package fsxlocal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage resolves locators relative to a base directory. Absolute
// locators are rejected so a probe can never escape the base path.
type LocalStorage struct {
	basePath string
}

// New creates the base directory if needed and returns the storage.
func New(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

// BasePath returns the resolved base directory.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// Exists reports whether the locator resolves to a file or directory under
// the base path.
func (s *LocalStorage) Exists(ctx context.Context, locator string) (bool, error) {
	full := filepath.Join(s.basePath, filepath.Clean("/"+locator))
	if !strings.HasPrefix(full, s.basePath) {
		return false, fmt.Errorf("locator %q escapes storage root", locator)
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
