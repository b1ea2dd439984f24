package importer

import (
	"context"
	"path/filepath"

	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/vk/scenegridgo/internal/events"
	"github.com/vk/scenegridgo/internal/fsutil"
	"github.com/vk/scenegridgo/internal/scene"
)

type sessionKey struct{}

// Session holds the state of one import tree: the paths being imported,
// the directories they contributed and the execution context stack. It is
// used by a single goroutine at a time.
type Session struct {
	guard     cycleGuard
	dirs      *datapath.Stack
	contexts  contextStack
	publisher events.Publisher
}

func newSession(vis datapath.Visibility, setActive func(*scene.Builder), pub events.Publisher) *Session {
	return &Session{
		guard:     newCycleGuard(),
		dirs:      datapath.NewStack(vis),
		contexts:  contextStack{setActive: setActive},
		publisher: pub,
	}
}

// WithSession returns a context carrying s. ImportScene uses the session
// found in its context instead of creating a new one.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session carried by ctx, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// Open starts the import scope of the script at path. The cycle check runs
// before anything else, so a rejected path leaves the session untouched.
func (s *Session) Open(ctx context.Context, path string, builder *scene.Builder) (*Scope, error) {
	dir, err := fsutil.Resolve(path)
	if err != nil {
		return nil, &ImportError{Path: path, Kind: ErrInvalidPath}
	}
	path = filepath.Clean(path)

	if err := s.guard.tryEnter(path); err != nil {
		return nil, &ImportError{Path: path, Kind: err}
	}

	scope := &Scope{
		session:  s,
		path:     path,
		dir:      dir,
		builder:  builder,
		settings: builder.Settings(),
	}
	s.dirs.Push(dir)
	s.contexts.push(builder, builder.Settings())

	s.publisher.Publish(ctx, events.Event{Kind: events.ScopeOpened, Path: path, Depth: s.Depth()})
	return scope, nil
}

// Depth returns the number of open scopes.
func (s *Session) Depth() int {
	return len(s.contexts.entries)
}

// Importing reports whether path is currently being imported.
func (s *Session) Importing(path string) bool {
	return s.guard.contains(filepath.Clean(path))
}

// ActivePaths returns the paths currently being imported, sorted.
func (s *Session) ActivePaths() []string {
	return s.guard.paths()
}

// Directories returns the directories contributed by open scopes, oldest
// first.
func (s *Session) Directories() []string {
	return s.dirs.Entries()
}

// Current returns the active builder and the settings it had when its
// scope opened.
func (s *Session) Current() (*scene.Builder, scene.Settings, bool) {
	top, ok := s.contexts.top()
	return top.builder, top.settings, ok
}

// Empty reports whether no scope is open and no state is left behind.
func (s *Session) Empty() bool {
	return len(s.guard.active) == 0 && s.dirs.Len() == 0 && s.Depth() == 0
}
