package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vk/scenegridgo/internal/app"
	"github.com/vk/scenegridgo/internal/config"
	"github.com/vk/scenegridgo/internal/hcl"
	"github.com/vk/scenegridgo/internal/toml"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an application run.
type HarnessResult struct {
	Root   string
	Output string
	Err    error
	App    *app.App
}

// RunApp writes files to a temporary directory and runs the application
// with cfg. Relative ScenePath, ConfigPath and DataDirs are taken relative
// to that directory. Startup panics are returned as errors.
func RunApp(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	root := WriteFiles(t, files)
	cfg.ScenePath = inRoot(root, cfg.ScenePath)
	if cfg.ConfigPath != "" {
		cfg.ConfigPath = inRoot(root, cfg.ConfigPath)
	}
	dirs := make([]string, 0, len(cfg.DataDirs))
	for _, dir := range cfg.DataDirs {
		dirs = append(dirs, inRoot(root, dir))
	}
	cfg.DataDirs = dirs
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	out := &SafeBuffer{}
	result := &HarnessResult{Root: root}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		result.App = app.NewApp(out, &cfg, config.ByExtension{
			".hcl":  hcl.NewLoader(),
			".toml": toml.NewLoader(),
		})
	}()

	if result.Err == nil {
		result.Err = result.App.Run(context.Background())
	}

	result.Output = out.String()
	if os.Getenv("SCENEGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Output for %s ---\n%s", t.Name(), result.Output)
	}
	return result
}

func inRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
