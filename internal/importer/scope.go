package importer

import (
	"context"

	"github.com/vk/scenegridgo/internal/events"
	"github.com/vk/scenegridgo/internal/scene"
)

// Scope is one open import. It must be closed exactly once.
type Scope struct {
	session  *Session
	path     string
	dir      string
	builder  *scene.Builder
	settings scene.Settings
	closed   bool
}

// Path returns the script path the scope was opened for.
func (sc *Scope) Path() string {
	return sc.path
}

// Close releases everything Open acquired, in reverse order, and restores
// the builder settings observed when the scope opened. Any inconsistency
// panics.
func (sc *Scope) Close(ctx context.Context) {
	if sc.closed {
		panic("importer: scope for " + sc.path + " closed twice")
	}
	sc.closed = true

	s := sc.session
	depth := s.Depth()
	s.contexts.pop()
	s.dirs.Pop(sc.dir)
	sc.builder.SetSettings(sc.settings)
	s.guard.leave(sc.path)

	s.publisher.Publish(ctx, events.Event{Kind: events.ScopeClosed, Path: sc.path, Depth: depth})
}
