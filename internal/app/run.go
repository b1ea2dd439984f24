package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/events"
	"github.com/vk/scenegridgo/internal/events/socketio"
	"github.com/vk/scenegridgo/internal/fsutil"
	"github.com/vk/scenegridgo/internal/hclscript"
	"github.com/vk/scenegridgo/internal/importer"
	"github.com/vk/scenegridgo/internal/scene"
)

// sceneExtension selects the files imported from a scene directory.
const sceneExtension = ".scene"

// Run imports the configured scene file, or every scene file of the
// configured directory, each into its own builder, and prints a summary of
// the successful ones.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	a.results = nil

	settings := a.model.ApplySettings(scene.DefaultSettings())
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid project settings: %w", err)
	}

	paths, err := a.scenePaths()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		a.logger.Warn("No scene files found, nothing to import.", "path", a.config.ScenePath)
		return nil
	}

	publisher, closePublisher, err := a.publisher(ctx)
	if err != nil {
		return err
	}
	defer closePublisher()

	opts := []importer.Option{importer.WithPublisher(publisher)}
	if a.model.Prelude != "" {
		src, err := os.ReadFile(a.model.Prelude)
		if err != nil {
			return fmt.Errorf("failed to read prelude: %w", err)
		}
		opts = append(opts, importer.WithPrelude(src))
	}
	imp := importer.New(hclscript.New(a.dirs), a.dirs, opts...)
	bindings := a.bindings()

	a.logger.Info("Importing scenes.", "count", len(paths))
	var errs []error
	for _, path := range paths {
		builder := scene.NewBuilder(settings)
		err := imp.ImportScene(ctxlog.With(ctx, "scene", filepath.Base(path)), path, builder, bindings)
		a.results = append(a.results, Result{Path: path, Builder: builder, Err: err})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := writeSummary(a.outW, path, builder); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	a.logger.Info("Import finished.", "scenes", len(paths), "failed", len(errs))

	if len(errs) > 0 {
		return fmt.Errorf("import failed: %w", errors.Join(errs...))
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// scenePaths returns the absolute scene files to import.
func (a *App) scenePaths() ([]string, error) {
	abs, err := filepath.Abs(a.config.ScenePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scene path %s: %w", a.config.ScenePath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("error accessing scene path %s: %w", a.config.ScenePath, err)
	}
	if !info.IsDir() {
		return []string{abs}, nil
	}
	return fsutil.FindFilesByExtension(abs, sceneExtension)
}

// bindings merges project bindings with command-line ones, the latter
// taking precedence.
func (a *App) bindings() *importer.Bindings {
	b := importer.NewBindings()
	for name, v := range a.model.Bindings {
		b.Set(name, v)
	}
	for name, v := range a.config.Bindings {
		b.Set(name, v)
	}
	return b
}

// publisher returns the event publisher for the run and a function
// releasing it.
func (a *App) publisher(ctx context.Context) (events.Publisher, func(), error) {
	cfg := socketio.Config{URL: a.config.EventsURL}
	if e := a.model.Events; e != nil {
		cfg.Namespace = e.Namespace
		cfg.Event = e.Event
		cfg.InsecureSkipVerify = e.InsecureSkipVerify
		cfg.ConnectTimeout = e.ConnectTimeout
		if cfg.URL == "" {
			cfg.URL = e.URL
		}
	}
	if cfg.URL == "" {
		return events.Log{}, func() {}, nil
	}

	sio, err := socketio.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start events publisher: %w", err)
	}
	a.logger.Info("Publishing import events.", "url", cfg.URL)
	return events.Multi{events.Log{}, sio}, sio.Close, nil
}
