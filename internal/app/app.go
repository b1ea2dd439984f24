package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/vk/scenegridgo/internal/config"
	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/vk/scenegridgo/internal/scene"
)

// Result is the outcome of one top-level scene import.
type Result struct {
	Path    string
	Builder *scene.Builder
	Err     error
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	model   *config.Model
	dirs    *datapath.Directories
	results []Result
}

// NewApp is the constructor for the main application. It loads the project
// file, if any, and panics when it cannot be used.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model := &config.Model{}
	if appConfig.ConfigPath != "" {
		var err error
		model, err = loader.Load(ctx, appConfig.ConfigPath)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		logger.Debug("Project configuration loaded.", "path", appConfig.ConfigPath)
	}

	var seed []string
	for _, dir := range appConfig.DataDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			panic(fmt.Errorf("failed to resolve data directory %s: %w", dir, err))
		}
		seed = append(seed, abs)
	}
	seed = append(seed, model.DataDirectories...)
	dirs := datapath.NewDirectories()
	dirs.Pin(seed...)
	logger.Debug("Data directories configured.", "directories", dirs.List())

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  model,
		dirs:   dirs,
	}
}

// Directories returns the application's data directories. This is primarily for testing.
func (a *App) Directories() *datapath.Directories {
	return a.dirs
}

// Results returns the outcome of every import of the last Run.
func (a *App) Results() []Result {
	return a.results
}
