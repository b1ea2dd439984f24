package datapath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// ErrNotFound is returned by Find when no directory contains the file.
var ErrNotFound = errors.New("file not found in data directories")

// Visibility is the directory-visibility contract consumed by Stack.
type Visibility interface {
	AddDataDirectory(dir string, highPriority bool)
	RemoveDataDirectory(dir string)
}

// Directories is the ordered list of data directories. The first entry has
// the highest priority. It is safe for concurrent use.
//
// Pinned directories are always visible. They follow the other directories
// in pin order unless added with high priority, and removing them only
// returns them to that position.
type Directories struct {
	mu     sync.RWMutex
	dirs   []string
	pinned []string
	stat   func(string) (os.FileInfo, error)
}

// NewDirectories creates a list seeded with the given directories in
// priority order. Relative seeds are a programmer error.
func NewDirectories(seed ...string) *Directories {
	d := &Directories{stat: os.Stat}
	for _, dir := range seed {
		d.AddDataDirectory(dir, false)
	}
	return d
}

// Pin makes dirs permanently visible, after every directory already pinned.
func (d *Directories) Pin(dirs ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			panic(fmt.Sprintf("data directory %q must be absolute", dir))
		}
		dir = filepath.Clean(dir)
		if !slices.Contains(d.pinned, dir) {
			d.pinned = append(d.pinned, dir)
		}
	}
}

// AddDataDirectory makes dir visible. With highPriority the directory is
// moved (or inserted) to the front unless it is already first; otherwise it
// is appended when absent.
func (d *Directories) AddDataDirectory(dir string, highPriority bool) {
	if !filepath.IsAbs(dir) {
		panic(fmt.Sprintf("data directory %q must be absolute", dir))
	}
	dir = filepath.Clean(dir)

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := slices.Index(d.dirs, dir)
	if !highPriority {
		if idx < 0 && !slices.Contains(d.pinned, dir) {
			d.dirs = append(d.dirs, dir)
		}
		return
	}
	if idx == 0 || (len(d.dirs) == 0 && len(d.pinned) > 0 && d.pinned[0] == dir) {
		return
	}
	if idx > 0 {
		d.dirs = slices.Delete(d.dirs, idx, idx+1)
	}
	d.dirs = slices.Insert(d.dirs, 0, dir)
}

// RemoveDataDirectory removes dir from the lookup order. Removing a
// directory that is not present is a no-op, a pinned one goes back to its
// pinned position.
func (d *Directories) RemoveDataDirectory(dir string) {
	dir = filepath.Clean(dir)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.dirs = slices.DeleteFunc(d.dirs, func(s string) bool { return s == dir })
}

// List returns a copy of the directories in priority order.
func (d *Directories) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := slices.Clone(d.dirs)
	for _, dir := range d.pinned {
		if !slices.Contains(d.dirs, dir) {
			out = append(out, dir)
		}
	}
	return out
}

// Contains reports whether dir is currently visible.
func (d *Directories) Contains(dir string) bool {
	dir = filepath.Clean(dir)

	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Contains(d.dirs, dir) || slices.Contains(d.pinned, dir)
}

// Find resolves a relative path against the directories in priority order
// and returns the first existing match. Absolute paths are returned cleaned
// without consulting the list.
func (d *Directories) Find(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	for _, dir := range d.List() {
		candidate := filepath.Join(dir, path)
		if info, err := d.stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%q: %w", path, ErrNotFound)
}
