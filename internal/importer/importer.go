package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/vk/scenegridgo/internal/events"
	"github.com/vk/scenegridgo/internal/scene"
)

// Script is the source of one scene script.
type Script struct {
	Path   string
	Source []byte
	// Prelude marks the shared prelude, which runs once per scope and may
	// only adjust settings or log.
	Prelude bool
}

// SceneImporter is the callback through which an engine imports nested
// scripts.
type SceneImporter interface {
	ImportScene(ctx context.Context, path string, builder *scene.Builder, bindings *Bindings) error
}

// Engine executes the body of one scene script. Import statements inside
// the script are forwarded to imp together with ctx.
type Engine interface {
	Execute(ctx context.Context, imp SceneImporter, script Script, bindings *Bindings) error
}

// Option configures an Importer.
type Option func(*Importer)

// WithReader replaces the function used to read script files.
func WithReader(read func(path string) ([]byte, error)) Option {
	return func(i *Importer) { i.read = read }
}

// WithActiveBuilderHook replaces scene.SetActive as the receiver of
// active-builder changes.
func WithActiveBuilderHook(fn func(*scene.Builder)) Option {
	return func(i *Importer) { i.setActive = fn }
}

// WithPublisher sets the publisher notified of scope and failure events.
func WithPublisher(p events.Publisher) Option {
	return func(i *Importer) { i.publisher = p }
}

// WithPrelude sets a script executed before every imported script, nested
// ones included, inside its scope and with the same bindings. The prelude
// runs once per scope, so it is limited to settings and print blocks;
// engines reject blocks that populate the builder or import.
func WithPrelude(src []byte) Option {
	return func(i *Importer) { i.prelude = src }
}

// Importer is the entry point for importing scene scripts.
type Importer struct {
	engine    Engine
	vis       datapath.Visibility
	read      func(string) ([]byte, error)
	setActive func(*scene.Builder)
	publisher events.Publisher
	prelude   []byte

	// mu serializes top-level imports.
	mu sync.Mutex
}

// New creates an Importer running scripts with engine and publishing
// script directories to vis.
func New(engine Engine, vis datapath.Visibility, opts ...Option) *Importer {
	imp := &Importer{
		engine:    engine,
		vis:       vis,
		read:      os.ReadFile,
		setActive: scene.SetActive,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// NewSession creates an empty session bound to the importer's data
// directories, active-builder hook and publisher.
func (imp *Importer) NewSession() *Session {
	return newSession(imp.vis, imp.setActive, imp.publisher)
}

// ImportScene imports the script at the absolute path into builder. The
// script sees bindings plus builder under BuilderBinding. When ctx carries
// a session with open scopes the call is a nested import of that session.
func (imp *Importer) ImportScene(ctx context.Context, path string, builder *scene.Builder, bindings *Bindings) error {
	if builder == nil {
		panic("importer: ImportScene called with a nil builder")
	}

	sess := SessionFromContext(ctx)
	if sess == nil {
		sess = imp.NewSession()
	}
	if sess.Depth() == 0 {
		imp.mu.Lock()
		defer imp.mu.Unlock()
	}
	ctx = WithSession(ctx, sess)

	depth := sess.Depth() + 1
	logger := ctxlog.FromContext(ctx).With("path", path, "depth", depth)
	logger.Debug("Importing scene script.")
	fail := func(err error) error {
		logger.Warn("Scene import failed.", "error", err)
		imp.publisher.Publish(ctx, events.Event{Kind: events.ImportFailed, Path: path, Depth: depth, Error: err.Error()})
		return err
	}

	if !filepath.IsAbs(path) {
		return fail(&ImportError{Path: path, Kind: ErrInvalidPath})
	}
	path = filepath.Clean(path)
	if sess.Importing(path) {
		return fail(&ImportError{Path: path, Kind: ErrRecursiveImport})
	}

	src, err := imp.read(path)
	if err != nil {
		return fail(&ImportError{Path: path, Kind: ErrReadScript, Cause: err})
	}
	if name, ok := parseLegacyHeader(src); ok {
		return fail(&ImportError{Path: path, Kind: ErrUnsupportedFormat, Detail: "header declares " + name})
	}

	scope, err := sess.Open(ctx, path, builder)
	if err != nil {
		return fail(err)
	}
	defer scope.Close(ctx)

	b := bindings.Clone()
	b.Set(BuilderBinding, builder)

	if len(imp.prelude) > 0 {
		prelude := Script{Path: path + "#prelude", Source: imp.prelude, Prelude: true}
		if err := imp.engine.Execute(ctx, imp, prelude, b); err != nil {
			return fail(&ImportError{Path: path, Kind: ErrScriptExecution, Detail: "prelude", Cause: err})
		}
	}
	if err := imp.engine.Execute(ctx, imp, Script{Path: path, Source: src}, b); err != nil {
		return fail(&ImportError{Path: path, Kind: ErrScriptExecution, Cause: err})
	}

	logger.Debug("Scene script imported.", "nodes", builder.NodeCount(), "materials", builder.MaterialCount())
	return nil
}
