package fsutil

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotAbsolute is returned by Resolve for paths that are not absolute.
var ErrNotAbsolute = errors.New("expected absolute path")

// Resolve returns the directory containing path. Relative paths are
// rejected, never joined with the working directory.
func Resolve(path string) (string, error) {
	if path == "" || !filepath.IsAbs(path) {
		return "", fmt.Errorf("%q: %w", path, ErrNotAbsolute)
	}
	return filepath.Dir(filepath.Clean(path)), nil
}

// SamePath reports whether a and b name the same location after lexical
// normalization.
func SamePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
