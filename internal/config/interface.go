package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Loader is the interface for a format-specific project file loader.
type Loader interface {
	// Load reads the project file at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}

// ByExtension dispatches to a Loader chosen by the file extension of the
// path, e.g. ".hcl".
type ByExtension map[string]Loader

// Load implements Loader.
func (b ByExtension) Load(ctx context.Context, path string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := b[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported config file extension %q for %s", ext, path)
	}
	return loader.Load(ctx, path)
}

// RelativeTo returns path unchanged when absolute, otherwise joined to base.
func RelativeTo(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
