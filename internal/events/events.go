// Package events defines the notifications emitted while scenes are
// imported and the publishers that deliver them.
package events

import (
	"context"

	"github.com/vk/scenegridgo/internal/ctxlog"
)

// Kind identifies the type of an Event.
type Kind string

const (
	ScopeOpened  Kind = "scope_opened"
	ScopeClosed  Kind = "scope_closed"
	ImportFailed Kind = "import_failed"
)

// Event describes one step of an import session.
type Event struct {
	Kind  Kind   `json:"kind"`
	Path  string `json:"path"`
	Depth int    `json:"depth"`
	Error string `json:"error,omitempty"`
}

// Publisher delivers events. Implementations must not block the importer
// for long and must not fail it: delivery problems are theirs to report.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) {}

// Log writes every event to the logger carried by the context.
type Log struct{}

// Publish implements Publisher.
func (Log) Publish(ctx context.Context, e Event) {
	logger := ctxlog.FromContext(ctx)
	if e.Error != "" {
		logger.Warn("Import event.", "kind", e.Kind, "path", e.Path, "depth", e.Depth, "error", e.Error)
		return
	}
	logger.Debug("Import event.", "kind", e.Kind, "path", e.Path, "depth", e.Depth)
}

// Multi fans an event out to several publishers in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Event) {
	for _, p := range m {
		p.Publish(ctx, e)
	}
}
